package duty

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrLocationPermissionDenied = apperr.New(apperr.KindPermissionDenied, "location permission not granted")
	ErrPositionUnavailable      = apperr.NotFound("no position reported yet")
	ErrAlreadyOnDuty            = apperr.PreconditionFailed("already on duty")
	ErrSignOutConfirmation      = apperr.PreconditionFailed("currently on duty: confirm to end duty and sign out")
	ErrDutyStatusNotFound       = apperr.NotFound("duty status not found")
)
