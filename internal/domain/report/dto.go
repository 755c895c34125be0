package report

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// MonthlyStatRequest selects a subject and a one-based month from raw query
// values. An empty EmployeeID means the caller; empty Year or Month mean the
// current one.
type MonthlyStatRequest struct {
	EmployeeID string
	Year       string
	Month      string
}

// Parse converts Year and Month, falling back to the given defaults.
func (r *MonthlyStatRequest) Parse(defaultYear, defaultMonth int) (year, month int, err error) {
	var errs validator.ValidationErrors

	year, month = defaultYear, defaultMonth
	if s := strings.TrimSpace(r.Year); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			errs.Add("year", "year must be a number")
		}
		year = v
	}
	if s := strings.TrimSpace(r.Month); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			errs.Add("month", "month must be a number between 1 and 12")
		}
		month = v
	}
	return year, month, errs.Err()
}

type MonthlyStatResponse struct {
	EmployeeID   string      `json:"employee_id"`
	EmployeeName string      `json:"employee_name"`
	Stats        MonthlyStat `json:"stats"`
}
