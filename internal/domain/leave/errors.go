package leave

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrLeaveRequestNotFound         = apperr.NotFound("leave request not found")
	ErrLeaveRequestAlreadyProcessed = apperr.PreconditionFailed("leave request already processed")
	ErrLeaveAlreadyRequested        = apperr.New(apperr.KindAlreadyExists, "a leave request already exists for this date")
	ErrInvalidStatusTransition      = apperr.InvalidArgument("leave request can only be approved or rejected")
)
