package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

type LeaveType string

const (
	LeaveTypeUnspecified LeaveType = ""
	LeaveTypeSick        LeaveType = "sick"
	LeaveTypePersonal    LeaveType = "personal"
	LeaveTypeHoliday     LeaveType = "holiday"
	LeaveTypeOther       LeaveType = "other"
)

var leaveTypeLabels = map[LeaveType]string{
	LeaveTypeUnspecified: "Unspecified",
	LeaveTypeSick:        "Sick Leave",
	LeaveTypePersonal:    "Personal Leave",
	LeaveTypeHoliday:     "Government Holiday",
	LeaveTypeOther:       "Other",
}

func (t LeaveType) IsValid() bool {
	_, ok := leaveTypeLabels[t]
	return ok
}

func (t LeaveType) Label() string {
	if label, ok := leaveTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// LeaveRequest entity. LeaveDate is YYYY-MM-DD.
type LeaveRequest struct {
	ID           string    `json:"-" firestore:"-"`
	EmployeeID   string    `json:"employeeId" firestore:"employeeId"`
	EmployeeName string    `json:"employeeName" firestore:"employeeName"`
	CompanyKey   string    `json:"companyKey" firestore:"companyKey"`
	LeaveDate    string    `json:"leaveDate" firestore:"leaveDate"`
	Reason       string    `json:"reason" firestore:"reason"`
	LeaveType    LeaveType `json:"leaveType" firestore:"leaveType"`

	Status        LeaveRequestStatus `json:"status" firestore:"status"`
	AdminResponse *string            `json:"adminResponse" firestore:"adminResponse"`
	ResponseDate  *time.Time         `json:"responseDate" firestore:"responseDate"`
	RespondedBy   *string            `json:"respondedBy" firestore:"respondedBy"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// EffectiveStatus treats a missing status as pending.
func (l *LeaveRequest) EffectiveStatus() LeaveRequestStatus {
	if l.Status == "" {
		return LeaveRequestStatusPending
	}
	return l.Status
}

func (l *LeaveRequest) IsPending() bool {
	return l.EffectiveStatus() == LeaveRequestStatusPending
}

// Resolve moves a pending request to approved or rejected. The response
// fields are written exactly once here.
func (l *LeaveRequest) Resolve(to LeaveRequestStatus, response *string, by string, at time.Time) error {
	if to != LeaveRequestStatusApproved && to != LeaveRequestStatusRejected {
		return ErrInvalidStatusTransition
	}
	if !l.IsPending() {
		return ErrLeaveRequestAlreadyProcessed
	}
	l.Status = to
	l.AdminResponse = response
	l.ResponseDate = &at
	l.RespondedBy = &by
	return nil
}
