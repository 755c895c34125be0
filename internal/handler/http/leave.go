package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveRequestService
}

func NewLeaveHandler(leaveService leave.LeaveRequestService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req leave.CreateLeaveRequestRequest
	if !decodeJSON(w, r, "CreateRequest", &req, false) {
		return
	}

	created, err := l.leaveService.Create(r.Context(), principal, req)
	if err != nil {
		slog.Error("CreateRequest service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request submitted successfully", created)
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	requests, err := l.leaveService.ListMine(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessList(w, requests)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var filter leave.LeaveRequestFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	requests, err := l.leaveService.ListCompany(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessList(w, requests)
}

// ApproveRequest implements LeaveHandler. The body is optional.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req leave.ApproveLeaveRequestRequest
	if !decodeJSON(w, r, "ApproveRequest", &req, true) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	approved, err := l.leaveService.Approve(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request approved successfully", approved)
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req leave.RejectLeaveRequestRequest
	if !decodeJSON(w, r, "RejectRequest", &req, true) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	rejected, err := l.leaveService.Reject(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request rejected successfully", rejected)
}
