package leave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

// EventPublisher receives leave events. *sse.Hub implements it.
type EventPublisher interface {
	Publish(channel string, event sse.Event)
}

type LeaveRequestServiceImpl struct {
	leave.LeaveRequestRepository
	user.UserRepository
	events EventPublisher
	now    func() time.Time
}

func NewLeaveRequestService(leaveRepo leave.LeaveRequestRepository, userRepo user.UserRepository, events EventPublisher, now func() time.Time) leave.LeaveRequestService {
	if now == nil {
		now = time.Now
	}
	return &LeaveRequestServiceImpl{
		LeaveRequestRepository: leaveRepo,
		UserRepository:         userRepo,
		events:                 events,
		now:                    now,
	}
}

// Create implements leave.LeaveRequestService.
func (s *LeaveRequestServiceImpl) Create(ctx context.Context, actor user.Principal, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionLeaveCreate); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	profile, err := s.UserRepository.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return leave.LeaveRequestResponse{}, user.ErrProfileIncomplete
		}
		return leave.LeaveRequestResponse{}, apperr.Unavailable(err, "failed to load profile")
	}
	if !profile.HasDutyProfile() {
		return leave.LeaveRequestResponse{}, user.ErrProfileIncomplete
	}

	existing, err := s.LeaveRequestRepository.ListByEmployee(ctx, actor.UserID)
	if err != nil {
		return leave.LeaveRequestResponse{}, apperr.Unavailable(err, "failed to load leave requests")
	}
	for _, l := range existing {
		if l.LeaveDate == req.LeaveDate && l.EffectiveStatus() != leave.LeaveRequestStatusRejected {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveAlreadyRequested
		}
	}

	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID:   profile.ID,
		EmployeeName: profile.Name,
		CompanyKey:   profile.CompanyKey,
		LeaveDate:    req.LeaveDate,
		Reason:       req.Reason,
		LeaveType:    leave.LeaveType(req.LeaveType),
		Status:       leave.LeaveRequestStatusPending,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, apperr.Unavailable(err, "failed to create leave request")
	}

	resp := leave.ToResponse(created)
	s.publish(sse.CompanyChannel(created.CompanyKey), "leave.requested", resp)
	slog.Info("leave requested", "employee_id", created.EmployeeID, "leave_id", created.ID, "leave_date", created.LeaveDate)
	return resp, nil
}

// ListMine implements leave.LeaveRequestService.
func (s *LeaveRequestServiceImpl) ListMine(ctx context.Context, actor user.Principal) ([]leave.LeaveRequestResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionLeaveViewOwn); err != nil {
		return nil, err
	}
	reqs, err := s.LeaveRequestRepository.ListByEmployee(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to load leave requests")
	}
	return toResponses(reqs), nil
}

// ListCompany implements leave.LeaveRequestService.
func (s *LeaveRequestServiceImpl) ListCompany(ctx context.Context, actor user.Principal, filter leave.LeaveRequestFilter) ([]leave.LeaveRequestResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionLeaveViewAll); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var status *leave.LeaveRequestStatus
	if filter.Status != nil {
		st := leave.LeaveRequestStatus(*filter.Status)
		status = &st
	}
	reqs, err := s.LeaveRequestRepository.ListByCompany(ctx, actor.CompanyKey, status)
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to load leave requests")
	}
	return toResponses(reqs), nil
}

// Approve implements leave.LeaveRequestService.
func (s *LeaveRequestServiceImpl) Approve(ctx context.Context, actor user.Principal, req leave.ApproveLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return s.resolve(ctx, actor, req.ID, leave.LeaveRequestStatusApproved, req.Response)
}

// Reject implements leave.LeaveRequestService.
func (s *LeaveRequestServiceImpl) Reject(ctx context.Context, actor user.Principal, req leave.RejectLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return s.resolve(ctx, actor, req.ID, leave.LeaveRequestStatusRejected, &req.Response)
}

func (s *LeaveRequestServiceImpl) resolve(ctx context.Context, actor user.Principal, id string, to leave.LeaveRequestStatus, response *string) (leave.LeaveRequestResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionLeaveApprove); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, apperr.Unavailable(err, "failed to load leave request")
	}
	if request.CompanyKey != actor.CompanyKey {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	if err := request.Resolve(to, response, actor.UserID, s.now()); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := s.LeaveRequestRepository.UpdateResolution(ctx, request); err != nil {
		if errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed) || errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, apperr.Unavailable(err, "failed to update leave request")
	}

	resp := leave.ToResponse(request)
	s.publish(sse.UserChannel(request.EmployeeID), "leave."+string(to), resp)
	slog.Info("leave request resolved", "leave_id", request.ID, "status", to, "responded_by", actor.UserID)
	return resp, nil
}

func (s *LeaveRequestServiceImpl) publish(channel, event string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(channel, sse.Event{Event: event, Data: data})
}

func toResponses(reqs []leave.LeaveRequest) []leave.LeaveRequestResponse {
	out := make([]leave.LeaveRequestResponse, 0, len(reqs))
	for _, l := range reqs {
		out = append(out, leave.ToResponse(l))
	}
	return out
}
