// Package location implements duty.LocationProvider for devices that push
// their permission state and positions over the API.
package location

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
)

type watcher struct {
	opts     duty.WatchOptions
	onUpdate func(attendance.Coordinate)
	last     *attendance.Coordinate
	lastAt   time.Time
}

// Provider keeps the latest permission and position reported by each
// subject's device and fans positions out to watchers.
type Provider struct {
	mu          sync.Mutex
	now         func() time.Time
	permissions map[string]bool
	positions   map[string]attendance.Coordinate
	watchers    map[string]map[int]*watcher
	nextID      int
}

func NewProvider(now func() time.Time) *Provider {
	return &Provider{
		now:         now,
		permissions: make(map[string]bool),
		positions:   make(map[string]attendance.Coordinate),
		watchers:    make(map[string]map[int]*watcher),
	}
}

// SetPermission records the device's location permission. Subjects start
// out denied.
func (p *Provider) SetPermission(subjectID string, granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissions[subjectID] = granted
}

// Report records a position and delivers it to the subject's watchers whose
// throttle allows it. Callbacks run on the caller's goroutine. Positions
// reported without permission are dropped.
func (p *Provider) Report(subjectID string, coord attendance.Coordinate) bool {
	p.mu.Lock()
	if !p.permissions[subjectID] {
		p.mu.Unlock()
		return false
	}
	p.positions[subjectID] = coord

	now := p.now()
	var deliver []func(attendance.Coordinate)
	for _, w := range p.watchers[subjectID] {
		if !w.due(coord, now) {
			continue
		}
		c := coord
		w.last = &c
		w.lastAt = now
		deliver = append(deliver, w.onUpdate)
	}
	p.mu.Unlock()

	for _, fn := range deliver {
		fn(coord)
	}
	return true
}

func (w *watcher) due(coord attendance.Coordinate, now time.Time) bool {
	if w.last == nil {
		return true
	}
	if now.Sub(w.lastAt) < w.opts.TimeInterval {
		return false
	}
	moved := geo.HaversineMeters(w.last.Latitude, w.last.Longitude, coord.Latitude, coord.Longitude)
	return moved >= w.opts.DistanceInterval
}

// RequestPermission implements duty.LocationProvider.
func (p *Provider) RequestPermission(ctx context.Context, subjectID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permissions[subjectID], nil
}

// CurrentPosition implements duty.LocationProvider.
func (p *Provider) CurrentPosition(ctx context.Context, subjectID string) (attendance.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Coordinate{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	coord, ok := p.positions[subjectID]
	if !ok {
		return attendance.Coordinate{}, duty.ErrPositionUnavailable
	}
	return coord, nil
}

// Watch implements duty.LocationProvider. ctx only bounds the registration;
// the watch lives until Cancel.
func (p *Provider) Watch(ctx context.Context, subjectID string, opts duty.WatchOptions, onUpdate func(attendance.Coordinate)) (duty.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.permissions[subjectID] {
		return nil, duty.ErrLocationPermissionDenied
	}
	if p.watchers[subjectID] == nil {
		p.watchers[subjectID] = make(map[int]*watcher)
	}
	id := p.nextID
	p.nextID++
	p.watchers[subjectID][id] = &watcher{opts: opts, onUpdate: onUpdate}

	return &subscription{cancel: func() { p.remove(subjectID, id) }}, nil
}

// WatcherCount returns the number of active watches for a subject.
func (p *Provider) WatcherCount(subjectID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watchers[subjectID])
}

func (p *Provider) remove(subjectID string, id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.watchers[subjectID], id)
	if len(p.watchers[subjectID]) == 0 {
		delete(p.watchers, subjectID)
	}
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Cancel() {
	s.once.Do(s.cancel)
}
