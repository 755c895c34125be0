package report

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type ReportService interface {
	// MonthlyStats loads the subject's records and aggregates them for the
	// requested month relative to today.
	MonthlyStats(ctx context.Context, actor user.Principal, req MonthlyStatRequest) (MonthlyStatResponse, error)
}
