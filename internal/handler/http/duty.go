package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type DutyHandler interface {
	Permission(w http.ResponseWriter, r *http.Request)
	Location(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type DutyHandlerImpl struct {
	dutyService duty.DutyService
}

func NewDutyHandler(dutyService duty.DutyService) DutyHandler {
	return &DutyHandlerImpl{dutyService: dutyService}
}

// Permission records whether the device granted location access.
func (h *DutyHandlerImpl) Permission(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	if err := principal.Capabilities().Require(user.PermissionDutySelf); err != nil {
		response.HandleError(w, err)
		return
	}
	var req duty.PermissionRequest
	if !decodeJSON(w, r, "Permission", &req, false) {
		return
	}

	if err := h.dutyService.SetLocationPermission(r.Context(), principal, req.Granted); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Location permission recorded", req)
}

// Location accepts a position fix from the device.
func (h *DutyHandlerImpl) Location(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	if err := principal.Capabilities().Require(user.PermissionDutySelf); err != nil {
		response.HandleError(w, err)
		return
	}
	var req duty.LocationRequest
	if !decodeJSON(w, r, "Location", &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.dutyService.ReportLocation(r.Context(), principal, req.Coordinate())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func (h *DutyHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	status, err := h.dutyService.StartDuty(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Duty started", status)
}

func (h *DutyHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	status, err := h.dutyService.EndDuty(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Duty ended", status)
}

func (h *DutyHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	status, err := h.dutyService.Status(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}
