package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance sessions.
type AttendanceRepository interface {
	// Create stores a new session and returns it with its generated ID.
	Create(ctx context.Context, session Session) (Session, error)

	// Close sets the end time of an open session.
	Close(ctx context.Context, id string, endTime time.Time) error

	// ListByEmployee returns every session of the employee, any month.
	ListByEmployee(ctx context.Context, employeeID string) ([]Session, error)

	// ListOpenByEmployee returns the employee's sessions without an end time.
	ListOpenByEmployee(ctx context.Context, employeeID string) ([]Session, error)

	// ListOpen returns all sessions without an end time.
	ListOpen(ctx context.Context) ([]Session, error)
}
