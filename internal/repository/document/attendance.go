package document

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
)

type attendanceRepositoryImpl struct {
	store docstore.Store
}

func NewAttendanceRepository(store docstore.Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{store: store}
}

func setSessionID(s *attendance.Session, id string) { s.ID = id }

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	id, err := r.store.Add(ctx, CollectionAttendance, session)
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}
	session.ID = id
	return session, nil
}

// Close implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Close(ctx context.Context, id string, endTime time.Time) error {
	err := r.store.Update(ctx, CollectionAttendance, id, map[string]any{"endTime": endTime})
	if err != nil {
		return fmt.Errorf("failed to close attendance session %s: %w", id, notFoundAs(err, attendance.ErrSessionNotFound))
	}
	return nil
}

// ListByEmployee implements attendance.AttendanceRepository. Newest first.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]attendance.Session, error) {
	return r.query(ctx, docstore.Eq("employeeId", employeeID))
}

// ListOpenByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListOpenByEmployee(ctx context.Context, employeeID string) ([]attendance.Session, error) {
	return r.query(ctx, docstore.Eq("employeeId", employeeID), docstore.Eq("endTime", nil))
}

// ListOpen implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListOpen(ctx context.Context) ([]attendance.Session, error) {
	return r.query(ctx, docstore.Eq("endTime", nil))
}

func (r *attendanceRepositoryImpl) query(ctx context.Context, filters ...docstore.Filter) ([]attendance.Session, error) {
	docs, err := r.store.Query(ctx, CollectionAttendance, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance sessions: %w", err)
	}
	sessions, err := decodeAll(docs, setSessionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
	return sessions, nil
}
