package leave

import "context"

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	// ListByCompany lists a company's requests, optionally narrowed to one status.
	ListByCompany(ctx context.Context, companyKey string, status *LeaveRequestStatus) ([]LeaveRequest, error)
	// UpdateResolution persists Status, AdminResponse, ResponseDate and
	// RespondedBy. It fails with ErrLeaveRequestAlreadyProcessed when the
	// stored request was resolved in the meantime.
	UpdateResolution(ctx context.Context, req LeaveRequest) error
}
