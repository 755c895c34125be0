package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	user.UserRepository
	attendance.AttendanceRepository
	leave.LeaveRequestRepository
	location *time.Location
	now      func() time.Time
}

func NewReportService(
	userRepository user.UserRepository,
	attendanceRepository attendance.AttendanceRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	location *time.Location,
	now func() time.Time,
) report.ReportService {
	return &ReportServiceImpl{
		UserRepository:         userRepository,
		AttendanceRepository:   attendanceRepository,
		LeaveRequestRepository: leaveRequestRepository,
		location:               location,
		now:                    now,
	}
}

// MonthlyStats implements report.ReportService.
func (s *ReportServiceImpl) MonthlyStats(ctx context.Context, actor user.Principal, req report.MonthlyStatRequest) (report.MonthlyStatResponse, error) {
	subjectID := actor.UserID
	permission := user.PermissionReportsViewOwn
	if req.EmployeeID != "" && req.EmployeeID != actor.UserID {
		subjectID = req.EmployeeID
		permission = user.PermissionReportsViewAll
	}
	if err := actor.Capabilities().Require(permission); err != nil {
		return report.MonthlyStatResponse{}, err
	}

	subject, err := s.UserRepository.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return report.MonthlyStatResponse{}, employee.ErrEmployeeNotFound
		}
		return report.MonthlyStatResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if subject.CompanyKey != actor.CompanyKey {
		return report.MonthlyStatResponse{}, employee.ErrEmployeeNotFound
	}

	today := s.now().In(s.location)
	year, month, err := req.Parse(today.Year(), int(today.Month()))
	if err != nil {
		return report.MonthlyStatResponse{}, err
	}

	var (
		sessions []attendance.Session
		leaves   []leave.LeaveRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.AttendanceRepository.ListByEmployee(gctx, subjectID)
		if err != nil {
			return fmt.Errorf("failed to list attendance sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		leaves, err = s.LeaveRequestRepository.ListByEmployee(gctx, subjectID)
		if err != nil {
			return fmt.Errorf("failed to list leave requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.MonthlyStatResponse{}, err
	}

	// Aggregation follows input order for same-date leaves; oldest first
	// lets the most recent request decide.
	sortLeavesByCreatedAt(leaves)

	stat, err := ComputeMonthlyStats(year, time.Month(month), sessions, leaves, today)
	if err != nil {
		return report.MonthlyStatResponse{}, err
	}

	return report.MonthlyStatResponse{
		EmployeeID:   subject.ID,
		EmployeeName: subject.Name,
		Stats:        stat,
	}, nil
}
