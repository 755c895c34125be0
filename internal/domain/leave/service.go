package leave

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type LeaveRequestService interface {
	Create(ctx context.Context, actor user.Principal, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, actor user.Principal) ([]LeaveRequestResponse, error)
	ListCompany(ctx context.Context, actor user.Principal, filter LeaveRequestFilter) ([]LeaveRequestResponse, error)
	Approve(ctx context.Context, actor user.Principal, req ApproveLeaveRequestRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, actor user.Principal, req RejectLeaveRequestRequest) (LeaveRequestResponse, error)
}
