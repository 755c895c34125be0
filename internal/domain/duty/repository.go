package duty

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

type DutyStatusRepository interface {
	// Get returns ErrDutyStatusNotFound when the subject never went on duty.
	Get(ctx context.Context, subjectID string) (DutyStatus, error)
	// Save creates or overwrites the full status record.
	Save(ctx context.Context, status DutyStatus) error
	// UpdateLocation writes currentLocation and lastUpdated only.
	UpdateLocation(ctx context.Context, subjectID string, coord attendance.Coordinate, at time.Time) error
	ListByCompany(ctx context.Context, companyKey string) ([]DutyStatus, error)
}
