package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ListSessions(w http.ResponseWriter, r *http.Request)
	MonthlyStats(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	reportService     report.ReportService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, reportService report.ReportService) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService: attendanceService,
		reportService:     reportService,
	}
}

// ListSessions returns the caller's sessions, or another employee's when
// employee_id is given and the caller may view the roster.
func (h *AttendanceHandlerImpl) ListSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be a number", nil)
			return
		}
		limit = v
	}
	employeeID := query.Get("employee_id")
	if employeeID == "" {
		employeeID = principal.UserID
	}

	sessions, err := h.attendanceService.ListSessions(r.Context(), principal, employeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessList(w, sessions)
}

// MonthlyStats aggregates one month of attendance. Month is one-based.
func (h *AttendanceHandlerImpl) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	stats, err := h.reportService.MonthlyStats(r.Context(), principal, report.MonthlyStatRequest{
		EmployeeID: query.Get("employee_id"),
		Year:       query.Get("year"),
		Month:      query.Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}
