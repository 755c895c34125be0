package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddJob("broken", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, []string{"ok", "broken"}, s.JobNames())
}

func TestScheduler_TimeoutBoundsRun(t *testing.T) {
	s := NewScheduler()
	s.AddJob("slow", time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout(10*time.Millisecond))

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	s.Stop()
}

type stubAttendanceService struct {
	closed int
	err    error
}

func (s *stubAttendanceService) ListSessions(ctx context.Context, actor user.Principal, employeeID string, limit int) ([]attendance.SessionResponse, error) {
	return nil, nil
}

func (s *stubAttendanceService) CloseStaleSessions(ctx context.Context) (int, error) {
	return s.closed, s.err
}

func TestAttendanceJobs(t *testing.T) {
	s := NewScheduler()
	NewAttendanceJobs(&stubAttendanceService{closed: 2}, 0).RegisterJobs(s)
	assert.Equal(t, []string{"close_stale_sessions"}, s.JobNames())
	assert.NoError(t, s.RunOnce(context.Background()))

	failing := NewAttendanceJobs(&stubAttendanceService{err: errors.New("store offline")}, time.Minute)
	assert.Error(t, failing.CloseStaleSessions(context.Background()))
}
