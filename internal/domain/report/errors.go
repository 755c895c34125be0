package report

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrInvalidMonth = apperr.InvalidArgument("month must be between 1 and 12")
	ErrInvalidYear  = apperr.InvalidArgument("year must be between 1 and 9999")
)
