package duty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

// EventPublisher receives duty board events. *sse.Hub implements it.
type EventPublisher interface {
	Publish(channel string, event sse.Event)
}

// machine is the in-memory state of one subject. All fields are guarded by mu.
type machine struct {
	mu         sync.Mutex
	hydrated   bool
	state      duty.State
	companyKey string
	sub        duty.Subscription
	// writeErr holds the failure of the last location write made by the
	// watch callback, for the reporting caller to pick up.
	writeErr error
	// generation is bumped whenever sampling starts or stops so callbacks of
	// an old watch can be told apart.
	generation uint64
}

type DutyServiceImpl struct {
	attendance.AttendanceRepository
	duty.DutyStatusRepository
	user.UserRepository
	locations duty.DeviceLocationProvider
	events    EventPublisher
	watchOpts duty.WatchOptions
	location  *time.Location
	now       func() time.Time

	mu       sync.Mutex
	machines map[string]*machine
}

func NewDutyService(
	userRepo user.UserRepository,
	attendanceRepo attendance.AttendanceRepository,
	dutyStatusRepo duty.DutyStatusRepository,
	locations duty.DeviceLocationProvider,
	events EventPublisher,
	watchOpts duty.WatchOptions,
	loc *time.Location,
	now func() time.Time,
) *DutyServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DutyServiceImpl{
		AttendanceRepository: attendanceRepo,
		DutyStatusRepository: dutyStatusRepo,
		UserRepository:       userRepo,
		locations:            locations,
		events:               events,
		watchOpts:            watchOpts,
		location:             loc,
		now:                  now,
		machines:             make(map[string]*machine),
	}
}

var _ duty.DutyService = (*DutyServiceImpl)(nil)

func (s *DutyServiceImpl) machineFor(subjectID string) *machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.machines[subjectID]
	if !ok {
		m = &machine{state: duty.StateOffDuty}
		s.machines[subjectID] = m
	}
	return m
}

// hydrate restores the state of a subject seen for the first time since
// process start. An open session dated today means the subject is on duty.
// Must be called with m.mu held.
func (s *DutyServiceImpl) hydrate(ctx context.Context, m *machine, subjectID string) error {
	if m.hydrated {
		return nil
	}
	open, err := s.AttendanceRepository.ListOpenByEmployee(ctx, subjectID)
	if err != nil {
		return apperr.Unavailable(err, "failed to load open sessions")
	}

	today := attendance.DateOf(s.now(), s.location)
	m.state = duty.StateOffDuty
	for _, session := range open {
		if session.Date == today {
			m.state = duty.StateOnDuty
			m.companyKey = session.CompanyKey
			break
		}
	}
	m.hydrated = true

	if m.state == duty.StateOnDuty {
		slog.Info("resumed duty session", "subject_id", subjectID)
		_ = s.startSampling(m, subjectID)
	}
	return nil
}

// startSampling begins the location watch. A watch that cannot be started
// leaves the subject on duty without live positions until resumeSampling
// succeeds. Must be called with m.mu held.
func (s *DutyServiceImpl) startSampling(m *machine, subjectID string) error {
	m.generation++
	gen := m.generation
	sub, err := s.locations.Watch(context.Background(), subjectID, s.watchOpts, func(coord attendance.Coordinate) {
		s.onPosition(subjectID, gen, coord)
	})
	if err != nil {
		slog.Warn("failed to start location watch", "subject_id", subjectID, "error", err)
		return err
	}
	m.sub = sub
	return nil
}

// resumeSampling starts the watch for an on-duty subject that has none, as
// after a restart where the device permission was not yet known. Must be
// called with m.mu held.
func (s *DutyServiceImpl) resumeSampling(m *machine, subjectID string) {
	if m.state != duty.StateOnDuty || m.sub != nil {
		return
	}
	if err := s.startSampling(m, subjectID); err == nil {
		slog.Info("location watch resumed", "subject_id", subjectID)
	}
}

// stopSampling cancels the watch. Must be called with m.mu held.
func (s *DutyServiceImpl) stopSampling(m *machine) {
	m.generation++
	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
}

func (s *DutyServiceImpl) onPosition(subjectID string, gen uint64, coord attendance.Coordinate) {
	m := s.machineFor(subjectID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return
	}
	err := s.applyLocation(context.Background(), m, subjectID, coord)
	if err != nil {
		slog.Error("failed to record location update", "subject_id", subjectID, "error", err)
	}
	m.writeErr = err
}

// applyLocation must be called with m.mu held.
func (s *DutyServiceImpl) applyLocation(ctx context.Context, m *machine, subjectID string, coord attendance.Coordinate) error {
	if m.state != duty.StateOnDuty {
		return nil
	}
	now := s.now()
	if err := s.DutyStatusRepository.UpdateLocation(ctx, subjectID, coord, now); err != nil {
		return apperr.Unavailable(err, "failed to update location")
	}
	s.publish(m.companyKey, "duty.location", map[string]any{
		"subject_id":   subjectID,
		"location":     coord,
		"last_updated": now.Format(time.RFC3339),
	})
	return nil
}

func (s *DutyServiceImpl) publish(companyKey, event string, data any) {
	if s.events == nil || companyKey == "" {
		return
	}
	s.events.Publish(sse.CompanyChannel(companyKey), sse.Event{Event: event, Data: data})
}

// StartDuty implements duty.DutyService.
func (s *DutyServiceImpl) StartDuty(ctx context.Context, actor user.Principal) (duty.DutyStatusResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionDutySelf); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	m := s.machineFor(actor.UserID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.hydrate(ctx, m, actor.UserID); err != nil {
		return duty.DutyStatusResponse{}, err
	}
	if m.state == duty.StateOnDuty {
		return duty.DutyStatusResponse{}, duty.ErrAlreadyOnDuty
	}

	granted, err := s.locations.RequestPermission(ctx, actor.UserID)
	if err != nil {
		return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to request location permission")
	}
	if !granted {
		return duty.DutyStatusResponse{}, duty.ErrLocationPermissionDenied
	}

	profile, err := s.UserRepository.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return duty.DutyStatusResponse{}, user.ErrProfileIncomplete
		}
		return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to load profile")
	}
	if !profile.HasDutyProfile() {
		return duty.DutyStatusResponse{}, user.ErrProfileIncomplete
	}

	now := s.now()
	if err := s.closeOpenSessions(ctx, actor.UserID, now, false); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	var position *attendance.Coordinate
	if coord, err := s.locations.CurrentPosition(ctx, actor.UserID); err == nil {
		position = &coord
	}

	status := duty.DutyStatus{
		SubjectID:       actor.UserID,
		EmployeeName:    profile.Name,
		CompanyKey:      profile.CompanyKey,
		IsActive:        true,
		Status:          duty.StatusOnDuty,
		CurrentLocation: position,
		LastUpdated:     now,
	}
	if err := s.DutyStatusRepository.Save(ctx, status); err != nil {
		return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to save duty status")
	}

	session, err := s.AttendanceRepository.Create(ctx, attendance.Session{
		EmployeeID:   actor.UserID,
		EmployeeName: profile.Name,
		CompanyKey:   profile.CompanyKey,
		Date:         attendance.DateOf(now, s.location),
		StartTime:    now,
		Location:     position,
	})
	if err != nil {
		s.revertStatus(ctx, status, now)
		return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to open attendance session")
	}

	m.state = duty.StateOnDuty
	m.companyKey = profile.CompanyKey
	_ = s.startSampling(m, actor.UserID)

	resp := duty.ToResponse(status)
	open := attendance.ToResponse(session, now)
	resp.OpenSession = &open

	s.publish(m.companyKey, "duty.started", resp)
	slog.Info("duty started", "subject_id", actor.UserID, "session_id", session.ID, "company_key", profile.CompanyKey)
	return resp, nil
}

// revertStatus puts the status record back to off duty after a failed start.
func (s *DutyServiceImpl) revertStatus(ctx context.Context, status duty.DutyStatus, now time.Time) {
	status.IsActive = false
	status.Status = duty.StatusOffDuty
	status.LastUpdated = now
	if err := s.DutyStatusRepository.Save(ctx, status); err != nil {
		slog.Error("failed to revert duty status", "subject_id", status.SubjectID, "error", err)
	}
}

// closeOpenSessions closes the subject's open sessions. With todayOnly set,
// sessions of earlier days are left for the stale session job.
func (s *DutyServiceImpl) closeOpenSessions(ctx context.Context, subjectID string, now time.Time, todayOnly bool) error {
	open, err := s.AttendanceRepository.ListOpenByEmployee(ctx, subjectID)
	if err != nil {
		return apperr.Unavailable(err, "failed to load open sessions")
	}
	today := attendance.DateOf(now, s.location)
	for _, session := range open {
		if todayOnly && session.Date != today {
			continue
		}
		end := attendance.ClosingTime(session, now, s.location)
		if err := s.AttendanceRepository.Close(ctx, session.ID, end); err != nil {
			return apperr.Unavailable(err, fmt.Sprintf("failed to close session %s", session.ID))
		}
		if session.Date != today {
			slog.Info("closed stale session", "subject_id", subjectID, "session_id", session.ID, "date", session.Date)
		}
	}
	return nil
}

// EndDuty implements duty.DutyService.
func (s *DutyServiceImpl) EndDuty(ctx context.Context, actor user.Principal) (duty.DutyStatusResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionDutySelf); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	m := s.machineFor(actor.UserID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.hydrate(ctx, m, actor.UserID); err != nil {
		return duty.DutyStatusResponse{}, err
	}
	return s.endDuty(ctx, m, actor.UserID)
}

// endDuty must be called with m.mu held. Off duty it only makes sure nothing
// is left running or open.
func (s *DutyServiceImpl) endDuty(ctx context.Context, m *machine, subjectID string) (duty.DutyStatusResponse, error) {
	wasOnDuty := m.state == duty.StateOnDuty
	s.stopSampling(m)

	now := s.now()
	status, err := s.DutyStatusRepository.Get(ctx, subjectID)
	switch {
	case errors.Is(err, duty.ErrDutyStatusNotFound):
		status = duty.DutyStatus{SubjectID: subjectID, Status: duty.StatusOffDuty}
	case err != nil:
		if wasOnDuty {
			_ = s.startSampling(m, subjectID)
		}
		return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to load duty status")
	}

	if wasOnDuty || status.IsActive {
		status.IsActive = false
		status.Status = duty.StatusOffDuty
		status.LastUpdated = now
		if err := s.DutyStatusRepository.Save(ctx, status); err != nil {
			if wasOnDuty {
				_ = s.startSampling(m, subjectID)
			}
			return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to save duty status")
		}
	}
	m.state = duty.StateOffDuty

	if err := s.closeOpenSessions(ctx, subjectID, now, true); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	resp := duty.ToResponse(status)
	if wasOnDuty {
		s.publish(status.CompanyKey, "duty.ended", resp)
		slog.Info("duty ended", "subject_id", subjectID)
	}
	return resp, nil
}

// LocationUpdate implements duty.DutyService. Updates for subjects that are
// not on duty are ignored.
func (s *DutyServiceImpl) LocationUpdate(ctx context.Context, subjectID string, coord attendance.Coordinate) error {
	m := s.machineFor(subjectID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.hydrate(ctx, m, subjectID); err != nil {
		return err
	}
	return s.applyLocation(ctx, m, subjectID, coord)
}

// SetLocationPermission implements duty.DutyService.
func (s *DutyServiceImpl) SetLocationPermission(ctx context.Context, actor user.Principal, granted bool) error {
	if err := actor.Capabilities().Require(user.PermissionDutySelf); err != nil {
		return err
	}
	s.locations.SetPermission(actor.UserID, granted)

	m := s.machineFor(actor.UserID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.hydrate(ctx, m, actor.UserID); err != nil {
		return err
	}
	if granted {
		s.resumeSampling(m, actor.UserID)
	}
	return nil
}

// ReportLocation implements duty.DutyService. The position reaches the duty
// status through the watch callback, which runs before Report returns.
func (s *DutyServiceImpl) ReportLocation(ctx context.Context, actor user.Principal, coord attendance.Coordinate) (duty.DutyStatusResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionDutySelf); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	m := s.machineFor(actor.UserID)
	m.mu.Lock()
	if err := s.hydrate(ctx, m, actor.UserID); err != nil {
		m.mu.Unlock()
		return duty.DutyStatusResponse{}, err
	}
	s.resumeSampling(m, actor.UserID)
	m.writeErr = nil
	m.mu.Unlock()

	if !s.locations.Report(actor.UserID, coord) {
		return duty.DutyStatusResponse{}, duty.ErrLocationPermissionDenied
	}

	m.mu.Lock()
	writeErr := m.writeErr
	m.writeErr = nil
	m.mu.Unlock()
	if writeErr != nil {
		return duty.DutyStatusResponse{}, writeErr
	}
	return s.Status(ctx, actor)
}

// Status implements duty.DutyService.
func (s *DutyServiceImpl) Status(ctx context.Context, actor user.Principal) (duty.DutyStatusResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionDutySelf); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	m := s.machineFor(actor.UserID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.hydrate(ctx, m, actor.UserID); err != nil {
		return duty.DutyStatusResponse{}, err
	}

	status, err := s.DutyStatusRepository.Get(ctx, actor.UserID)
	if err != nil {
		if !errors.Is(err, duty.ErrDutyStatusNotFound) {
			return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to load duty status")
		}
		status = duty.DutyStatus{SubjectID: actor.UserID, Status: duty.StatusOffDuty}
	}

	resp := duty.ToResponse(status)
	resp.State = m.state
	if m.state != duty.StateOnDuty {
		return resp, nil
	}

	open, err := s.AttendanceRepository.ListOpenByEmployee(ctx, actor.UserID)
	if err != nil {
		return duty.DutyStatusResponse{}, apperr.Unavailable(err, "failed to load open sessions")
	}
	now := s.now()
	today := attendance.DateOf(now, s.location)
	for _, session := range open {
		if session.Date == today {
			r := attendance.ToResponse(session, now)
			resp.OpenSession = &r
			break
		}
	}
	return resp, nil
}

// SignOut implements duty.DutyService.
func (s *DutyServiceImpl) SignOut(ctx context.Context, actor user.Principal, confirmed bool) error {
	if !actor.Capabilities().Can(user.PermissionDutySelf) {
		return nil
	}

	m := s.machineFor(actor.UserID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.hydrate(ctx, m, actor.UserID); err != nil {
		return err
	}
	if m.state != duty.StateOnDuty {
		return nil
	}
	if !confirmed {
		return duty.ErrSignOutConfirmation
	}
	_, err := s.endDuty(ctx, m, actor.UserID)
	return err
}

// Shutdown implements duty.DutyService.
func (s *DutyServiceImpl) Shutdown() {
	s.mu.Lock()
	machines := make([]*machine, 0, len(s.machines))
	for _, m := range s.machines {
		machines = append(machines, m)
	}
	s.mu.Unlock()

	for _, m := range machines {
		m.mu.Lock()
		s.stopSampling(m)
		m.mu.Unlock()
	}
}
