package employee

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrEmployeeNotFound = apperr.NotFound("employee not found")
)
