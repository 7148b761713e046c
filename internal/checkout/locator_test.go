package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
)

type scriptedProvider struct {
	permission PermissionState

	fastFix Fix
	fastErr error

	highFix Fix
	highErr error

	// When set, high accuracy calls block until released so tests can
	// interleave a manual pin with an in-flight refinement.
	highRelease chan struct{}

	mu    sync.Mutex
	calls []FixOptions
}

func (p *scriptedProvider) GetFix(ctx context.Context, opts FixOptions) (Fix, error) {
	p.mu.Lock()
	p.calls = append(p.calls, opts)
	p.mu.Unlock()
	if !opts.HighAccuracy {
		return p.fastFix, p.fastErr
	}
	if p.highRelease != nil {
		<-p.highRelease
	}
	return p.highFix, p.highErr
}

func (p *scriptedProvider) Permission(ctx context.Context) (PermissionState, error) {
	if p.permission == "" {
		return PermissionPrompt, nil
	}
	return p.permission, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *scriptedProvider) lastOpts() FixOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[len(p.calls)-1]
}

func TestAcquireFastFixThenRefines(t *testing.T) {
	p := &scriptedProvider{
		fastFix: Fix{Point: geo.Point{Lat: 1, Lng: 1}},
		highFix: Fix{Point: geo.Point{Lat: 2, Lng: 2}},
	}
	l := NewLocator(p, slog.Default())

	fix, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1.0, fix.Point.Lat, "the fast fix is returned immediately")

	require.Eventually(t, func() bool {
		cur, ok := l.Current()
		return ok && cur.Point.Lat == 2
	}, time.Second, 5*time.Millisecond, "the background refinement must land")
}

func TestStaleRefinementDiscardedAfterManualPin(t *testing.T) {
	p := &scriptedProvider{
		fastFix:     Fix{Point: geo.Point{Lat: 1, Lng: 1}},
		highFix:     Fix{Point: geo.Point{Lat: 2, Lng: 2}},
		highRelease: make(chan struct{}),
	}
	l := NewLocator(p, slog.Default())

	_, err := l.Acquire(context.Background())
	require.NoError(t, err)

	// Pin manually while the high accuracy request is still in flight.
	l.SetManual(geo.Point{Lat: 9, Lng: 9})
	close(p.highRelease)

	require.Eventually(t, func() bool { return p.callCount() == 2 },
		time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	cur, ok := l.Current()
	require.True(t, ok)
	require.Equal(t, 9.0, cur.Point.Lat, "the late refinement must not overwrite the pin")
	require.True(t, l.Manual())
}

func TestAcquireAfterManualClearsFlag(t *testing.T) {
	p := &scriptedProvider{fastFix: Fix{Point: geo.Point{Lat: 1, Lng: 1}}}
	l := NewLocator(p, slog.Default())

	l.SetManual(geo.Point{Lat: 9, Lng: 9})
	require.True(t, l.Manual())

	_, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.False(t, l.Manual())
}

func TestFallbackTimeoutByPermission(t *testing.T) {
	p := &scriptedProvider{
		fastErr:    errors.New("no cached position"),
		highFix:    Fix{Point: geo.Point{Lat: 3, Lng: 3}},
		permission: PermissionGranted,
	}
	l := NewLocator(p, slog.Default())

	fix, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3.0, fix.Point.Lat)
	require.Equal(t, fallbackTimeout, p.lastOpts().Timeout)

	p2 := &scriptedProvider{
		fastErr:    errors.New("no cached position"),
		highFix:    Fix{Point: geo.Point{Lat: 3, Lng: 3}},
		permission: PermissionPrompt,
	}
	l2 := NewLocator(p2, slog.Default())

	_, err = l2.Acquire(context.Background())
	require.NoError(t, err)
	// The user may still be reading the permission dialog, so wait longer.
	require.Equal(t, promptFixTimeout, p2.lastOpts().Timeout)
}

func TestAcquireDeniedPermission(t *testing.T) {
	p := &scriptedProvider{
		fastErr:    errors.New("denied"),
		permission: PermissionDenied,
	}
	l := NewLocator(p, slog.Default())

	_, err := l.Acquire(context.Background())
	require.ErrorIs(t, err, ErrLocationDenied)
	require.Equal(t, 1, p.callCount(), "no fallback attempt after a denial")
}

func TestAcquireErrorClassification(t *testing.T) {
	p := &scriptedProvider{
		fastErr:    errors.New("nope"),
		highErr:    context.DeadlineExceeded,
		permission: PermissionGranted,
	}
	l := NewLocator(p, slog.Default())
	_, err := l.Acquire(context.Background())
	require.ErrorIs(t, err, ErrLocationTimeout)

	p2 := &scriptedProvider{
		fastErr:    errors.New("nope"),
		highErr:    errors.New("no signal"),
		permission: PermissionGranted,
	}
	l2 := NewLocator(p2, slog.Default())
	_, err = l2.Acquire(context.Background())
	require.ErrorIs(t, err, ErrLocationUnavailable)
}
