package employee

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// EmployeeService manages an administrator's employee roster.
type EmployeeService interface {
	Create(ctx context.Context, actor user.Principal, req CreateEmployeeRequest) (EmployeeResponse, error)
	List(ctx context.Context, actor user.Principal) ([]EmployeeResponse, error)
	Get(ctx context.Context, actor user.Principal, id string) (EmployeeDetailResponse, error)
}
