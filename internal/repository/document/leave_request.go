package document

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
)

type leaveRequestRepositoryImpl struct {
	store docstore.Store
}

func NewLeaveRequestRepository(store docstore.Store) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{store: store}
}

func setLeaveID(l *leave.LeaveRequest, id string) { l.ID = id }

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	id, err := r.store.Add(ctx, CollectionLeaves, req)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	req.ID = id
	return req, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	doc, err := r.store.Get(ctx, CollectionLeaves, id)
	if err != nil {
		return leave.LeaveRequest{}, notFoundAs(err, leave.ErrLeaveRequestNotFound)
	}
	var req leave.LeaveRequest
	if err := doc.DataTo(&req); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to decode leave request %s: %w", id, err)
	}
	req.ID = doc.ID()
	return req, nil
}

// ListByEmployee implements leave.LeaveRequestRepository. Newest first.
func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.query(ctx, docstore.Eq("employeeId", employeeID))
}

// ListByCompany implements leave.LeaveRequestRepository. Newest first.
func (r *leaveRequestRepositoryImpl) ListByCompany(ctx context.Context, companyKey string, status *leave.LeaveRequestStatus) ([]leave.LeaveRequest, error) {
	filters := []docstore.Filter{docstore.Eq("companyKey", companyKey)}
	if status != nil {
		filters = append(filters, docstore.Eq("status", string(*status)))
	}
	return r.query(ctx, filters...)
}

// UpdateResolution implements leave.LeaveRequestRepository. The write only
// lands while the stored request is still pending.
func (r *leaveRequestRepositoryImpl) UpdateResolution(ctx context.Context, req leave.LeaveRequest) error {
	fields := map[string]any{
		"status":        string(req.Status),
		"adminResponse": req.AdminResponse,
		"responseDate":  req.ResponseDate,
		"respondedBy":   req.RespondedBy,
	}
	stillPending := func(doc docstore.Document) error {
		var current leave.LeaveRequest
		if err := doc.DataTo(&current); err != nil {
			return fmt.Errorf("failed to decode leave request %s: %w", req.ID, err)
		}
		if !current.IsPending() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}
		return nil
	}
	err := r.store.UpdateWhere(ctx, CollectionLeaves, req.ID, stillPending, fields)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		return err
	default:
		return fmt.Errorf("failed to update leave request %s: %w", req.ID, notFoundAs(err, leave.ErrLeaveRequestNotFound))
	}
}

func (r *leaveRequestRepositoryImpl) query(ctx context.Context, filters ...docstore.Filter) ([]leave.LeaveRequest, error) {
	docs, err := r.store.Query(ctx, CollectionLeaves, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	reqs, err := decodeAll(docs, setLeaveID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	return reqs, nil
}
