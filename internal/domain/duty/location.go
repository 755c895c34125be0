package duty

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// WatchOptions throttle a position watch. Zero values deliver every update.
type WatchOptions struct {
	// DistanceInterval is the minimum movement in meters between deliveries.
	DistanceInterval float64
	// TimeInterval is the minimum time between deliveries.
	TimeInterval time.Duration
}

// Subscription is a running position watch.
type Subscription interface {
	// Cancel stops delivery. Calling it more than once is a no-op.
	Cancel()
}

// LocationProvider supplies device positions for a subject.
type LocationProvider interface {
	RequestPermission(ctx context.Context, subjectID string) (bool, error)
	CurrentPosition(ctx context.Context, subjectID string) (attendance.Coordinate, error)
	Watch(ctx context.Context, subjectID string, opts WatchOptions, onUpdate func(attendance.Coordinate)) (Subscription, error)
}

// DeviceLocationProvider is a LocationProvider fed by the subject's device
// over the API rather than by a local sensor.
type DeviceLocationProvider interface {
	LocationProvider
	SetPermission(subjectID string, granted bool)
	// Report records a position and delivers it to running watches on the
	// caller's goroutine. It returns false when permission is not granted.
	Report(subjectID string, coord attendance.Coordinate) bool
}
