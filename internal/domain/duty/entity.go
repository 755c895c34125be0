package duty

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// State of the duty session state machine.
type State string

const (
	StateOffDuty State = "OFF_DUTY"
	StateOnDuty  State = "ON_DUTY"
)

type StatusValue string

const (
	StatusOnDuty  StatusValue = "on_duty"
	StatusOffDuty StatusValue = "off_duty"
)

// DutyStatus is the durable current status of one subject, keyed by subject ID.
type DutyStatus struct {
	SubjectID       string                 `json:"-" firestore:"-"`
	EmployeeName    string                 `json:"employeeName" firestore:"employeeName"`
	CompanyKey      string                 `json:"companyKey" firestore:"companyKey"`
	IsActive        bool                   `json:"isActive" firestore:"isActive"`
	Status          StatusValue            `json:"status" firestore:"status"`
	CurrentLocation *attendance.Coordinate `json:"currentLocation" firestore:"currentLocation"`
	LastUpdated     time.Time              `json:"lastUpdated" firestore:"lastUpdated"`
}

func (s DutyStatus) State() State {
	if s.IsActive && s.Status == StatusOnDuty {
		return StateOnDuty
	}
	return StateOffDuty
}
