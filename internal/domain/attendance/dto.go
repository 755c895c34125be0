package attendance

import "time"

type SessionResponse struct {
	ID              string      `json:"id"`
	EmployeeID      string      `json:"employee_id"`
	EmployeeName    string      `json:"employee_name"`
	Date            string      `json:"date"`
	StartTime       string      `json:"start_time"`
	EndTime         *string     `json:"end_time,omitempty"`
	Ongoing         bool        `json:"ongoing"`
	DurationMinutes int         `json:"duration_minutes"`
	Duration        string      `json:"duration"`
	Location        *Coordinate `json:"location,omitempty"`
}

// ToResponse renders s for API output, measuring open sessions up to now.
func ToResponse(s Session, now time.Time) SessionResponse {
	worked := s.WorkedDuration(now)
	resp := SessionResponse{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		EmployeeName:    s.EmployeeName,
		Date:            s.Date,
		StartTime:       s.StartTime.Format(time.RFC3339),
		Ongoing:         s.IsOpen(),
		DurationMinutes: int(worked.Minutes()),
		Duration:        FormatDuration(worked),
		Location:        s.Location,
	}
	if s.EndTime != nil {
		end := s.EndTime.Format(time.RFC3339)
		resp.EndTime = &end
	} else {
		resp.Duration = "Ongoing"
	}
	return resp
}
