package document

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
)

type dutyStatusRepositoryImpl struct {
	store docstore.Store
}

func NewDutyStatusRepository(store docstore.Store) duty.DutyStatusRepository {
	return &dutyStatusRepositoryImpl{store: store}
}

func setSubjectID(s *duty.DutyStatus, id string) { s.SubjectID = id }

// Get implements duty.DutyStatusRepository.
func (r *dutyStatusRepositoryImpl) Get(ctx context.Context, subjectID string) (duty.DutyStatus, error) {
	doc, err := r.store.Get(ctx, CollectionDutyStatus, subjectID)
	if err != nil {
		return duty.DutyStatus{}, notFoundAs(err, duty.ErrDutyStatusNotFound)
	}
	var status duty.DutyStatus
	if err := doc.DataTo(&status); err != nil {
		return duty.DutyStatus{}, fmt.Errorf("failed to decode duty status %s: %w", subjectID, err)
	}
	status.SubjectID = doc.ID()
	return status, nil
}

// Save implements duty.DutyStatusRepository.
func (r *dutyStatusRepositoryImpl) Save(ctx context.Context, status duty.DutyStatus) error {
	if err := r.store.Set(ctx, CollectionDutyStatus, status.SubjectID, status, false); err != nil {
		return fmt.Errorf("failed to save duty status: %w", err)
	}
	return nil
}

// UpdateLocation implements duty.DutyStatusRepository.
func (r *dutyStatusRepositoryImpl) UpdateLocation(ctx context.Context, subjectID string, coord attendance.Coordinate, at time.Time) error {
	fields := map[string]any{
		"currentLocation": coord,
		"lastUpdated":     at,
	}
	if err := r.store.Update(ctx, CollectionDutyStatus, subjectID, fields); err != nil {
		return fmt.Errorf("failed to update location: %w", notFoundAs(err, duty.ErrDutyStatusNotFound))
	}
	return nil
}

// ListByCompany implements duty.DutyStatusRepository.
func (r *dutyStatusRepositoryImpl) ListByCompany(ctx context.Context, companyKey string) ([]duty.DutyStatus, error) {
	docs, err := r.store.Query(ctx, CollectionDutyStatus, docstore.Eq("companyKey", companyKey))
	if err != nil {
		return nil, fmt.Errorf("failed to query duty status: %w", err)
	}
	return decodeAll(docs, setSubjectID)
}
