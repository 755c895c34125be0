package attendance

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// Session is one on-duty stretch of a subject. Date is the business day the
// session belongs to, in YYYY-MM-DD form. A nil EndTime means still open.
type Session struct {
	ID           string      `json:"-" firestore:"-"`
	EmployeeID   string      `json:"employeeId" firestore:"employeeId"`
	EmployeeName string      `json:"employeeName" firestore:"employeeName"`
	CompanyKey   string      `json:"companyKey" firestore:"companyKey"`
	Date         string      `json:"date" firestore:"date"`
	StartTime    time.Time   `json:"startTime" firestore:"startTime"`
	EndTime      *time.Time  `json:"endTime" firestore:"endTime"`
	Location     *Coordinate `json:"location" firestore:"location"`
}

func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// WorkedDuration is EndTime-StartTime for closed sessions and now-StartTime
// for open ones. It never goes negative.
func (s *Session) WorkedDuration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

// DateOf returns the business day of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// EndOfDay returns 23:59:59 of the given YYYY-MM-DD date in loc.
func EndOfDay(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc), nil
}

// FormatDuration renders d as "3h 25m" or "25m".
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ClosingTime picks the end time for an open session found at now: now for
// today's sessions, the end of the session's own day for older ones, never
// earlier than StartTime.
func ClosingTime(s Session, now time.Time, loc *time.Location) time.Time {
	end := now
	if s.Date != DateOf(now, loc) {
		if eod, err := EndOfDay(s.Date, loc); err == nil && eod.Before(now) {
			end = eod
		}
	}
	if end.Before(s.StartTime) {
		return s.StartTime
	}
	return end
}
