package employee

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const MinPasswordLength = 6

type CreateEmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Mobile     string `json:"mobile"`
	Department string `json:"department"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Department = strings.TrimSpace(r.Department)

	if r.Name == "" {
		errs.Add("name", "name is required")
	}
	if r.Email == "" {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if len(r.Password) < MinPasswordLength {
		errs.Add("password", "password must be at least 6 characters long")
	}
	if !validator.IsEmpty(r.Mobile) && !validator.IsValidPhoneNumber(r.Mobile) {
		errs.Add("mobile", "mobile must be a valid phone number")
	}

	return errs.Err()
}

type EmployeeResponse struct {
	user.UserResponse
	Duty duty.DutyStatusResponse `json:"duty"`
}

type EmployeeDetailResponse struct {
	EmployeeResponse
	RecentSessions []attendance.SessionResponse `json:"recent_sessions"`
}
