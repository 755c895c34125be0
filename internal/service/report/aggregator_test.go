package report

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func session(date string) attendance.Session {
	start, _ := time.Parse(attendance.DateLayout, date)
	start = start.Add(8 * time.Hour)
	end := start.Add(8 * time.Hour)
	return attendance.Session{EmployeeID: "e1", Date: date, StartTime: start, EndTime: &end}
}

func leaveOn(date string, status leave.LeaveRequestStatus) leave.LeaveRequest {
	return leave.LeaveRequest{EmployeeID: "e1", LeaveDate: date, Status: status}
}

func TestComputeMonthlyStats_February2024Scenario(t *testing.T) {
	stat, err := ComputeMonthlyStats(2024, time.February,
		[]attendance.Session{session("2024-02-05")},
		[]leave.LeaveRequest{leaveOn("2024-02-08", leave.LeaveRequestStatusApproved)},
		day(2024, time.February, 15),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, stat.WorkDays)
	assert.Equal(t, 1, stat.LeaveDays)
	assert.Equal(t, 0, stat.PendingLeaveDays)
	assert.Equal(t, 9, stat.AbsentDays)
	assert.Equal(t, 11, stat.PastBusinessDays)
	assert.Equal(t, 21, stat.BusinessDays)
	assert.Equal(t, 8, stat.WeekendDays)
	assert.Equal(t, 29, stat.DaysInMonth)
	assert.True(t, stat.IsCurrentMonth)
	assert.InDelta(t, 9.09, stat.WorkPercentage, 0.01)
	assert.InDelta(t, 9.09, stat.LeavePercentage, 0.01)
	assert.InDelta(t, 81.82, stat.AbsentPercentage, 0.01)
	assert.Equal(t, 0.0, stat.PendingLeavePercentage)

	require.Len(t, stat.Days, 29)
	assert.Equal(t, report.DayStat{Date: "2024-02-03", Weekday: "Saturday", Classification: report.DayWeekend}, stat.Days[2])
	assert.Equal(t, report.DayWorked, stat.Days[4].Classification)
	assert.Equal(t, report.DayApprovedLeave, stat.Days[7].Classification)
	assert.Equal(t, report.DayAbsent, stat.Days[14].Classification)
	assert.Equal(t, report.DayUpcoming, stat.Days[15].Classification)
}

func TestComputeMonthlyStats_EmptyMonths(t *testing.T) {
	today := day(2024, time.February, 15)

	for _, tc := range []struct {
		year  int
		month time.Month
	}{
		{2023, time.February},
		{2024, time.January},
		{2024, time.February},
		{2024, time.June},
		{2100, time.December},
	} {
		stat, err := ComputeMonthlyStats(tc.year, tc.month, nil, nil, today)
		require.NoError(t, err)

		assert.Equal(t, stat.DaysInMonth, stat.BusinessDays+stat.WeekendDays, "%d-%02d", tc.year, tc.month)
		assert.Zero(t, stat.AbsentDays)
		assert.Zero(t, stat.AbsentPercentage)
		assert.Zero(t, stat.WorkDays)
		assert.Zero(t, stat.LeaveDays)
		assert.Zero(t, stat.PendingLeaveDays)
		assert.Zero(t, stat.WorkPercentage)
		assert.Zero(t, stat.LeavePercentage)
		assert.Zero(t, stat.PendingLeavePercentage)
	}
}

func TestComputeMonthlyStats_NoBusinessDaysElapsed(t *testing.T) {
	// 2024-06-01 is a Saturday: nothing has elapsed yet.
	stat, err := ComputeMonthlyStats(2024, time.June, nil, nil, day(2024, time.June, 1))
	require.NoError(t, err)

	assert.Equal(t, 0, stat.PastBusinessDays)
	assert.Equal(t, 0, stat.AbsentDays)
	assert.Equal(t, 0.0, stat.AbsentPercentage)
	assert.Equal(t, 20, stat.BusinessDays)
}

func TestComputeMonthlyStats_ElapsedHorizon(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		today     time.Time
		wantPast  int
		wantTotal int
	}{
		{"mid current month", 2024, time.February, day(2024, time.February, 15), 11, 21},
		{"last day of current month", 2024, time.February, day(2024, time.February, 29), 21, 21},
		{"past month", 2024, time.January, day(2024, time.February, 15), 23, 23},
		{"first day of current month", 2024, time.February, day(2024, time.February, 1), 1, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat, err := ComputeMonthlyStats(tt.year, tt.month, nil, nil, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPast, stat.PastBusinessDays)
			assert.Equal(t, tt.wantTotal, stat.BusinessDays)
			assert.LessOrEqual(t, stat.PastBusinessDays, stat.BusinessDays)
			if tt.wantPast < tt.wantTotal {
				assert.True(t, stat.IsCurrentMonth)
			}
		})
	}
}

func TestComputeMonthlyStats_OnlyMalformedRecordsMeansNoData(t *testing.T) {
	sessions := []attendance.Session{{EmployeeID: "e1", Date: "yesterday"}}

	stat, err := ComputeMonthlyStats(2024, time.February, sessions, nil, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.Equal(t, 11, stat.PastBusinessDays)
	assert.Zero(t, stat.AbsentDays)
	assert.Equal(t, report.DayNoData, stat.Days[0].Classification)
}

func TestComputeMonthlyStats_PastMonthCountsEveryBusinessDay(t *testing.T) {
	stat, err := ComputeMonthlyStats(2024, time.January, []attendance.Session{session("2024-01-02")}, nil, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.False(t, stat.IsCurrentMonth)
	assert.Equal(t, 23, stat.PastBusinessDays)
	assert.Equal(t, 1, stat.WorkDays)
	assert.Equal(t, 22, stat.AbsentDays)
}

func TestComputeMonthlyStats_FutureDaysNeverAbsent(t *testing.T) {
	sessions := []attendance.Session{session("2024-02-20")}
	leaves := []leave.LeaveRequest{leaveOn("2024-02-21", leave.LeaveRequestStatusApproved)}

	stat, err := ComputeMonthlyStats(2024, time.February, sessions, leaves, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.Equal(t, 0, stat.WorkDays)
	assert.Equal(t, 0, stat.LeaveDays)
	assert.Equal(t, 11, stat.AbsentDays)
	assert.Equal(t, report.DayUpcoming, stat.Days[19].Classification)
}

func TestComputeMonthlyStats_Precedence(t *testing.T) {
	sessions := []attendance.Session{session("2024-02-05")}
	leaves := []leave.LeaveRequest{leaveOn("2024-02-05", leave.LeaveRequestStatusApproved)}

	stat, err := ComputeMonthlyStats(2024, time.February, sessions, leaves, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.Equal(t, 1, stat.WorkDays)
	assert.Equal(t, 0, stat.LeaveDays)
	assert.Equal(t, report.DayWorked, stat.Days[4].Classification)
}

func TestComputeMonthlyStats_LeaveStatuses(t *testing.T) {
	leaves := []leave.LeaveRequest{
		leaveOn("2024-02-05", leave.LeaveRequestStatusPending),
		leaveOn("2024-02-06", leave.LeaveRequestStatusRejected),
		{EmployeeID: "e1", LeaveDate: "2024-02-07"}, // no status: pending
		leaveOn("2024-02-08", leave.LeaveRequestStatusRejected),
		leaveOn("2024-02-08", leave.LeaveRequestStatusApproved), // last one wins
	}

	stat, err := ComputeMonthlyStats(2024, time.February, nil, leaves, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.Equal(t, 2, stat.PendingLeaveDays)
	assert.Equal(t, 1, stat.LeaveDays)
	assert.Equal(t, 8, stat.AbsentDays)
	assert.Equal(t, report.DayAbsent, stat.Days[5].Classification)
}

func TestComputeMonthlyStats_DuplicateAndMalformedRecords(t *testing.T) {
	sessions := []attendance.Session{
		session("2024-02-05"),
		session("2024-02-05"),
		{EmployeeID: "e1", Date: "2024-02-06T09:00:00+07:00"},
		{EmployeeID: "e1", Date: "not a date"},
		{EmployeeID: "e1", Date: ""},
	}
	leaves := []leave.LeaveRequest{
		leaveOn("08/02/2024", leave.LeaveRequestStatusApproved),
	}

	stat, err := ComputeMonthlyStats(2024, time.February, sessions, leaves, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.Equal(t, 2, stat.WorkDays)
	assert.Equal(t, 0, stat.LeaveDays)
	assert.Equal(t, 9, stat.AbsentDays)
}

func TestComputeMonthlyStats_IgnoresOtherMonths(t *testing.T) {
	sessions := []attendance.Session{session("2024-01-31"), session("2024-03-01")}
	leaves := []leave.LeaveRequest{leaveOn("2023-02-05", leave.LeaveRequestStatusApproved)}

	stat, err := ComputeMonthlyStats(2024, time.February, sessions, leaves, day(2024, time.February, 15))
	require.NoError(t, err)

	assert.Equal(t, 0, stat.WorkDays)
	assert.Equal(t, 0, stat.LeaveDays)
	assert.Equal(t, 11, stat.AbsentDays)

	// Records in other months still mark the subject as known, so elapsed
	// days are absences rather than no_data.
	for _, d := range stat.Days {
		assert.NotEqual(t, report.DayNoData, d.Classification, d.Date)
	}
	assert.Equal(t, report.DayAbsent, stat.Days[0].Classification)
}

func TestComputeMonthlyStats_Idempotent(t *testing.T) {
	sessions := []attendance.Session{session("2024-02-05"), session("2024-02-12")}
	leaves := []leave.LeaveRequest{leaveOn("2024-02-08", leave.LeaveRequestStatusPending)}
	sessionsBefore := append([]attendance.Session(nil), sessions...)
	leavesBefore := append([]leave.LeaveRequest(nil), leaves...)
	today := day(2024, time.February, 15)

	first, err := ComputeMonthlyStats(2024, time.February, sessions, leaves, today)
	require.NoError(t, err)
	second, err := ComputeMonthlyStats(2024, time.February, sessions, leaves, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, sessionsBefore, sessions)
	assert.Equal(t, leavesBefore, leaves)
}

func TestComputeMonthlyStats_InvalidArguments(t *testing.T) {
	today := day(2024, time.February, 15)

	for _, m := range []time.Month{0, 13, -1} {
		_, err := ComputeMonthlyStats(2024, m, nil, nil, today)
		assert.ErrorIs(t, err, report.ErrInvalidMonth)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	}

	_, err := ComputeMonthlyStats(0, time.January, nil, nil, today)
	assert.ErrorIs(t, err, report.ErrInvalidYear)
}

func TestComputeMonthlyStats_TodayLocationDoesNotShiftDate(t *testing.T) {
	// 23:30 on Feb 15 in UTC+7 is still the 15th for the caller.
	wib := time.FixedZone("WIB", 7*3600)
	today := time.Date(2024, time.February, 15, 23, 30, 0, 0, wib)

	stat, err := ComputeMonthlyStats(2024, time.February, nil, nil, today)
	require.NoError(t, err)
	assert.Equal(t, 11, stat.PastBusinessDays)
}
