package user

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrUserNotFound            = apperr.NotFound("user not found")
	ErrProfileIncomplete       = apperr.PreconditionFailed("user profile is incomplete")
	ErrInsufficientPermissions = apperr.New(apperr.KindPermissionDenied, "insufficient permissions")
	ErrCompanyMismatch         = apperr.NotFound("user not found in this company")
)
