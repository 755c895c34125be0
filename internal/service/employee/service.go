package employee

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"golang.org/x/sync/errgroup"
)

const recentSessionLimit = 10

type EmployeeServiceImpl struct {
	user.UserRepository
	attendance.AttendanceRepository
	duty.DutyStatusRepository
	identity auth.IdentityProvider
	now      func() time.Time
}

func NewEmployeeService(
	userRepo user.UserRepository,
	attendanceRepo attendance.AttendanceRepository,
	dutyStatusRepo duty.DutyStatusRepository,
	identity auth.IdentityProvider,
	now func() time.Time,
) employee.EmployeeService {
	if now == nil {
		now = time.Now
	}
	return &EmployeeServiceImpl{
		UserRepository:       userRepo,
		AttendanceRepository: attendanceRepo,
		DutyStatusRepository: dutyStatusRepo,
		identity:             identity,
		now:                  now,
	}
}

// Create implements employee.EmployeeService. The account is created at the
// identity provider and the profile joins the administrator's company.
func (s *EmployeeServiceImpl) Create(ctx context.Context, actor user.Principal, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionEmployeeManage); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	admin, err := s.UserRepository.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return employee.EmployeeResponse{}, user.ErrProfileIncomplete
		}
		return employee.EmployeeResponse{}, apperr.Unavailable(err, "failed to load administrator profile")
	}

	subjectID, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		ID:          subjectID,
		Email:       req.Email,
		Name:        req.Name,
		Mobile:      req.Mobile,
		Department:  req.Department,
		Role:        user.RoleEmployee,
		CompanyName: admin.CompanyName,
		CompanyKey:  admin.CompanyKey,
		CreatedAt:   s.now(),
	})
	if err != nil {
		slog.Error("account created without profile", "subject_id", subjectID, "error", err)
		return employee.EmployeeResponse{}, apperr.Unavailable(err, "failed to create employee profile")
	}

	slog.Info("employee created", "employee_id", created.ID, "company_key", created.CompanyKey, "created_by", actor.UserID)
	return employee.EmployeeResponse{
		UserResponse: user.ToResponse(created),
		Duty:         duty.ToResponse(duty.DutyStatus{SubjectID: created.ID}),
	}, nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, actor user.Principal) ([]employee.EmployeeResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionEmployeeViewAll); err != nil {
		return nil, err
	}

	var (
		employees []user.User
		statuses  []duty.DutyStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.UserRepository.ListByCompany(gctx, actor.CompanyKey, user.RoleEmployee)
		return err
	})
	g.Go(func() error {
		var err error
		statuses, err = s.DutyStatusRepository.ListByCompany(gctx, actor.CompanyKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Unavailable(err, "failed to load employees")
	}

	bySubject := make(map[string]duty.DutyStatus, len(statuses))
	for _, st := range statuses {
		bySubject[st.SubjectID] = st
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		st, ok := bySubject[e.ID]
		if !ok {
			st = duty.DutyStatus{SubjectID: e.ID}
		}
		out = append(out, employee.EmployeeResponse{
			UserResponse: user.ToResponse(e),
			Duty:         duty.ToResponse(st),
		})
	}
	return out, nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, actor user.Principal, id string) (employee.EmployeeDetailResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionEmployeeViewAll); err != nil {
		return employee.EmployeeDetailResponse{}, err
	}

	e, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return employee.EmployeeDetailResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeDetailResponse{}, apperr.Unavailable(err, "failed to load employee")
	}
	if e.CompanyKey != actor.CompanyKey || e.Role != user.RoleEmployee {
		return employee.EmployeeDetailResponse{}, employee.ErrEmployeeNotFound
	}

	var (
		status   duty.DutyStatus
		sessions []attendance.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = s.DutyStatusRepository.Get(gctx, id)
		if errors.Is(err, duty.ErrDutyStatusNotFound) {
			status = duty.DutyStatus{SubjectID: id}
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.AttendanceRepository.ListByEmployee(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return employee.EmployeeDetailResponse{}, apperr.Unavailable(err, "failed to load employee activity")
	}

	if len(sessions) > recentSessionLimit {
		sessions = sessions[:recentSessionLimit]
	}
	now := s.now()
	recent := make([]attendance.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		recent = append(recent, attendance.ToResponse(session, now))
	}

	return employee.EmployeeDetailResponse{
		EmployeeResponse: employee.EmployeeResponse{
			UserResponse: user.ToResponse(e),
			Duty:         duty.ToResponse(status),
		},
		RecentSessions: recent,
	}, nil
}
