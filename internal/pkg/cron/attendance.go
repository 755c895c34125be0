package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AttendanceJobs{attendanceService: attendanceService, interval: interval}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_stale_sessions", j.interval, j.CloseStaleSessions, WithTimeout(5*time.Minute))
}

// CloseStaleSessions closes sessions left open on earlier days.
func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	closed, err := j.attendanceService.CloseStaleSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to close stale sessions: %w", err)
	}
	if closed > 0 {
		slog.Info("Cron: closed stale sessions", "count", closed)
	}
	return nil
}

type AuthJobs struct {
	jwtService jwt.Service
}

func NewAuthJobs(jwtService jwt.Service) *AuthJobs {
	return &AuthJobs{jwtService: jwtService}
}

func (j *AuthJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("prune_revoked_tokens", time.Hour, j.PruneRevokedTokens)
}

func (j *AuthJobs) PruneRevokedTokens(ctx context.Context) error {
	if pruned := j.jwtService.PruneRevoked(); pruned > 0 {
		slog.Info("Cron: pruned revoked tokens", "count", pruned)
	}
	return nil
}
