package duty

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// DutyService drives the per-subject duty session state machine.
type DutyService interface {
	StartDuty(ctx context.Context, actor user.Principal) (DutyStatusResponse, error)
	EndDuty(ctx context.Context, actor user.Principal) (DutyStatusResponse, error)
	LocationUpdate(ctx context.Context, subjectID string, coord attendance.Coordinate) error
	Status(ctx context.Context, actor user.Principal) (DutyStatusResponse, error)
	// SetLocationPermission records the device permission. Granting it while
	// on duty re-arms a watch that could not be started earlier.
	SetLocationPermission(ctx context.Context, actor user.Principal, granted bool) error
	// ReportLocation feeds a device position through the running watch and
	// returns the resulting status.
	ReportLocation(ctx context.Context, actor user.Principal, coord attendance.Coordinate) (DutyStatusResponse, error)
	// SignOut settles duty before the caller signs the subject out. While on
	// duty it runs EndDuty when confirmed and otherwise fails with
	// ErrSignOutConfirmation without changing anything.
	SignOut(ctx context.Context, actor user.Principal, confirmed bool) error
	// Shutdown cancels every running location watch.
	Shutdown()
}
