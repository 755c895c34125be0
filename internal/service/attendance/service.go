package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
)

const (
	defaultSessionLimit = 10
	maxSessionLimit     = 100
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	user.UserRepository
	location *time.Location
	now      func() time.Time
}

func NewAttendanceService(attendanceRepo attendance.AttendanceRepository, userRepo user.UserRepository, loc *time.Location, now func() time.Time) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		UserRepository:       userRepo,
		location:             loc,
		now:                  now,
	}
}

// ListSessions implements attendance.AttendanceService. A zero limit means
// the default of 10.
func (s *AttendanceServiceImpl) ListSessions(ctx context.Context, actor user.Principal, employeeID string, limit int) ([]attendance.SessionResponse, error) {
	if limit == 0 {
		limit = defaultSessionLimit
	}
	if limit < 0 || limit > maxSessionLimit {
		return nil, attendance.ErrInvalidLimit
	}

	if employeeID == "" || employeeID == actor.UserID {
		employeeID = actor.UserID
		if err := actor.Capabilities().Require(user.PermissionAttendanceViewOwn); err != nil {
			return nil, err
		}
	} else {
		if err := actor.Capabilities().Require(user.PermissionAttendanceViewAll); err != nil {
			return nil, err
		}
		subject, err := s.UserRepository.GetByID(ctx, employeeID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return nil, err
			}
			return nil, apperr.Unavailable(err, "failed to load employee")
		}
		if subject.CompanyKey != actor.CompanyKey {
			return nil, user.ErrCompanyMismatch
		}
	}

	sessions, err := s.AttendanceRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to load sessions")
	}
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}

	now := s.now()
	out := make([]attendance.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, attendance.ToResponse(session, now))
	}
	return out, nil
}

// CloseStaleSessions implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CloseStaleSessions(ctx context.Context) (int, error) {
	open, err := s.AttendanceRepository.ListOpen(ctx)
	if err != nil {
		return 0, apperr.Unavailable(err, "failed to load open sessions")
	}

	now := s.now()
	today := attendance.DateOf(now, s.location)
	closed := 0
	for _, session := range open {
		if session.Date >= today {
			continue
		}
		end := attendance.ClosingTime(session, now, s.location)
		if err := s.AttendanceRepository.Close(ctx, session.ID, end); err != nil {
			slog.Error("failed to close stale session", "session_id", session.ID, "employee_id", session.EmployeeID, "error", err)
			continue
		}
		closed++
	}
	return closed, nil
}
