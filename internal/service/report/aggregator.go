package report

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
)

// ComputeMonthlyStats classifies every day of a one-based month for a single
// subject. sessions and leaves may span any period; records whose date does
// not parse are ignored. Only the calendar date of today is used.
//
// When several leaves share a date, the last one in leaves decides that
// date's status. Callers are expected to supply at most one leave per date.
//
// A subject without a single usable record in any month carries no
// information about absence: elapsed business days are then classified
// no_data and every count and percentage stays zero. Records outside the
// target month are enough to classify its elapsed days as absent.
func ComputeMonthlyStats(year int, month time.Month, sessions []attendance.Session, leaves []leave.LeaveRequest, today time.Time) (report.MonthlyStat, error) {
	if month < time.January || month > time.December {
		return report.MonthlyStat{}, report.ErrInvalidMonth
	}
	if year < 1 || year > 9999 {
		return report.MonthlyStat{}, report.ErrInvalidYear
	}

	worked := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		if key, ok := dateKey(s.Date); ok {
			worked[key] = struct{}{}
		}
	}

	onLeave := make(map[string]leave.LeaveRequestStatus, len(leaves))
	for _, l := range leaves {
		if key, ok := dateKey(l.LeaveDate); ok {
			onLeave[key] = l.EffectiveStatus()
		}
	}

	hasData := len(worked) > 0 || len(onLeave) > 0

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	isCurrentMonth := today.Year() == year && today.Month() == month

	stat := report.MonthlyStat{
		Year:           year,
		Month:          int(month),
		DaysInMonth:    daysInMonth,
		IsCurrentMonth: isCurrentMonth,
		Days:           make([]report.DayStat, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		key := d.Format(attendance.DateLayout)

		var class report.DayClassification
		switch {
		case d.Weekday() == time.Saturday || d.Weekday() == time.Sunday:
			stat.WeekendDays++
			class = report.DayWeekend
		case isCurrentMonth && d.After(todayDate):
			stat.BusinessDays++
			class = report.DayUpcoming
		case !hasData:
			stat.BusinessDays++
			stat.PastBusinessDays++
			class = report.DayNoData
		default:
			stat.BusinessDays++
			stat.PastBusinessDays++
			class = classify(key, worked, onLeave)
			switch class {
			case report.DayWorked:
				stat.WorkDays++
			case report.DayApprovedLeave:
				stat.LeaveDays++
			case report.DayPendingLeave:
				stat.PendingLeaveDays++
			default:
				stat.AbsentDays++
			}
		}

		stat.Days = append(stat.Days, report.DayStat{
			Date:           key,
			Weekday:        d.Weekday().String(),
			Classification: class,
		})
	}

	stat.WorkPercentage = percentage(stat.WorkDays, stat.PastBusinessDays)
	stat.LeavePercentage = percentage(stat.LeaveDays, stat.PastBusinessDays)
	stat.PendingLeavePercentage = percentage(stat.PendingLeaveDays, stat.PastBusinessDays)
	stat.AbsentPercentage = percentage(stat.AbsentDays, stat.PastBusinessDays)

	return stat, nil
}

// classify applies worked > approved leave > pending leave > absent.
func classify(key string, worked map[string]struct{}, onLeave map[string]leave.LeaveRequestStatus) report.DayClassification {
	if _, ok := worked[key]; ok {
		return report.DayWorked
	}
	switch onLeave[key] {
	case leave.LeaveRequestStatusApproved:
		return report.DayApprovedLeave
	case leave.LeaveRequestStatusPending:
		return report.DayPendingLeave
	}
	return report.DayAbsent
}

// dateKey accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// YYYY-MM-DD it denotes in its own offset.
func dateKey(raw string) (string, bool) {
	if t, err := time.Parse(attendance.DateLayout, raw); err == nil {
		return t.Format(attendance.DateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(attendance.DateLayout), true
	}
	return "", false
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func sortLeavesByCreatedAt(leaves []leave.LeaveRequest) {
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].CreatedAt.Before(leaves[j].CreatedAt)
	})
}
