package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// AttendanceService exposes session history and housekeeping.
type AttendanceService interface {
	// ListSessions returns the newest sessions of employeeID first. Employees
	// may only read their own history.
	ListSessions(ctx context.Context, actor user.Principal, employeeID string, limit int) ([]SessionResponse, error)

	// CloseStaleSessions closes sessions left open on earlier days at the end
	// of their own day and returns how many were closed.
	CloseStaleSessions(ctx context.Context) (int, error)
}
