package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateLeaveRequestRequest struct {
	LeaveDate string `json:"leave_date"`
	Reason    string `json:"reason"`
	LeaveType string `json:"leave_type,omitempty"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Reason = strings.TrimSpace(r.Reason)
	r.LeaveType = strings.TrimSpace(strings.ToLower(r.LeaveType))

	if validator.IsEmpty(r.LeaveDate) {
		errs.Add("leave_date", "leave_date is required")
	} else if _, ok := validator.IsValidDate(r.LeaveDate); !ok {
		errs.Add("leave_date", "invalid date format, expected YYYY-MM-DD")
	}

	if r.Reason == "" {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 500 {
		errs.Add("reason", "reason must be at most 500 characters")
	}

	if !LeaveType(r.LeaveType).IsValid() {
		errs.Add("leave_type", "leave_type must be one of sick, personal, holiday, other")
	}

	return errs.Err()
}

type ApproveLeaveRequestRequest struct {
	ID       string  `json:"-"`
	Response *string `json:"response,omitempty"`
}

func (r *ApproveLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Response != nil {
		trimmed := strings.TrimSpace(*r.Response)
		if trimmed == "" {
			r.Response = nil
		} else {
			r.Response = &trimmed
		}
	}
	return errs.Err()
}

type RejectLeaveRequestRequest struct {
	ID       string `json:"-"`
	Response string `json:"response"`
}

func (r *RejectLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	r.Response = strings.TrimSpace(r.Response)
	if r.Response == "" {
		errs.Add("response", "response is required when rejecting")
	}
	return errs.Err()
}

type LeaveRequestFilter struct {
	Status *string
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !LeaveRequestStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	return errs.Err()
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	LeaveDate      string  `json:"leave_date"`
	Reason         string  `json:"reason"`
	LeaveType      string  `json:"leave_type,omitempty"`
	LeaveTypeLabel string  `json:"leave_type_label"`
	Status         string  `json:"status"`
	AdminResponse  *string `json:"admin_response,omitempty"`
	ResponseDate   *string `json:"response_date,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func ToResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             l.ID,
		EmployeeID:     l.EmployeeID,
		EmployeeName:   l.EmployeeName,
		LeaveDate:      l.LeaveDate,
		Reason:         l.Reason,
		LeaveType:      string(l.LeaveType),
		LeaveTypeLabel: l.LeaveType.Label(),
		Status:         string(l.EffectiveStatus()),
		AdminResponse:  l.AdminResponse,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.ResponseDate != nil {
		s := l.ResponseDate.Format(time.RFC3339)
		resp.ResponseDate = &s
	}
	return resp
}
