package location

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProvider_PermissionAndPosition(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)}
	p := NewProvider(clock.Now)

	granted, err := p.RequestPermission(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, granted)

	assert.False(t, p.Report("e1", attendance.Coordinate{Latitude: 1, Longitude: 1}))
	_, err = p.CurrentPosition(ctx, "e1")
	assert.ErrorIs(t, err, duty.ErrPositionUnavailable)

	_, err = p.Watch(ctx, "e1", duty.WatchOptions{}, func(attendance.Coordinate) {})
	assert.ErrorIs(t, err, duty.ErrLocationPermissionDenied)

	p.SetPermission("e1", true)
	assert.True(t, p.Report("e1", attendance.Coordinate{Latitude: 1, Longitude: 1}))

	pos, err := p.CurrentPosition(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, attendance.Coordinate{Latitude: 1, Longitude: 1}, pos)
}

func TestProvider_WatchThrottleAndCancel(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)}
	p := NewProvider(clock.Now)
	p.SetPermission("e1", true)

	var got []attendance.Coordinate
	sub, err := p.Watch(ctx, "e1", duty.WatchOptions{DistanceInterval: 10, TimeInterval: 5 * time.Second}, func(c attendance.Coordinate) {
		got = append(got, c)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.WatcherCount("e1"))

	base := attendance.Coordinate{Latitude: -6.2, Longitude: 106.8}
	p.Report("e1", base) // first update always delivered

	clock.Advance(time.Second)
	p.Report("e1", attendance.Coordinate{Latitude: -6.201, Longitude: 106.8}) // too soon

	clock.Advance(10 * time.Second)
	p.Report("e1", attendance.Coordinate{Latitude: -6.20001, Longitude: 106.8}) // ~1m from last delivery

	p.Report("e1", attendance.Coordinate{Latitude: -6.201, Longitude: 106.8}) // ~111m
	require.Len(t, got, 2)
	assert.Equal(t, base, got[0])

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, p.WatcherCount("e1"))

	clock.Advance(time.Minute)
	p.Report("e1", attendance.Coordinate{Latitude: -6.3, Longitude: 106.8})
	assert.Len(t, got, 2)
}

func TestProvider_WatchersAreScopedPerSubject(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(time.Now)
	p.SetPermission("e1", true)
	p.SetPermission("e2", true)

	calls := 0
	sub, err := p.Watch(ctx, "e1", duty.WatchOptions{}, func(attendance.Coordinate) { calls++ })
	require.NoError(t, err)
	defer sub.Cancel()

	p.Report("e2", attendance.Coordinate{Latitude: 1, Longitude: 1})
	assert.Equal(t, 0, calls)
	p.Report("e1", attendance.Coordinate{Latitude: 1, Longitude: 1})
	assert.Equal(t, 1, calls)
}
