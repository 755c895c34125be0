package attendance

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

// Attendance domain errors
var (
	ErrSessionNotFound = apperr.NotFound("attendance session not found")
	ErrSessionClosed   = apperr.PreconditionFailed("attendance session is already closed")
	ErrInvalidLimit    = apperr.InvalidArgument("limit must be between 1 and 100")
)
