package report

// DayClassification is the bucket a calendar day falls into.
type DayClassification string

const (
	DayWorked        DayClassification = "worked"
	DayApprovedLeave DayClassification = "approved_leave"
	DayPendingLeave  DayClassification = "pending_leave"
	DayAbsent        DayClassification = "absent"
	DayWeekend       DayClassification = "weekend"
	DayUpcoming      DayClassification = "upcoming"
	DayNoData        DayClassification = "no_data"
)

type DayStat struct {
	Date           string            `json:"date"`
	Weekday        string            `json:"weekday"`
	Classification DayClassification `json:"classification"`
}

// MonthlyStat summarizes one subject's month. Counts other than
// BusinessDays and WeekendDays cover elapsed business days only, and
// percentages are relative to PastBusinessDays.
type MonthlyStat struct {
	Year                   int       `json:"year"`
	Month                  int       `json:"month"`
	WorkDays               int       `json:"work_days"`
	LeaveDays              int       `json:"leave_days"`
	PendingLeaveDays       int       `json:"pending_leave_days"`
	AbsentDays             int       `json:"absent_days"`
	BusinessDays           int       `json:"business_days"`
	WeekendDays            int       `json:"weekend_days"`
	PastBusinessDays       int       `json:"past_business_days"`
	DaysInMonth            int       `json:"days_in_month"`
	IsCurrentMonth         bool      `json:"is_current_month"`
	WorkPercentage         float64   `json:"work_percentage"`
	LeavePercentage        float64   `json:"leave_percentage"`
	PendingLeavePercentage float64   `json:"pending_leave_percentage"`
	AbsentPercentage       float64   `json:"absent_percentage"`
	Days                   []DayStat `json:"days"`
}
