package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
)

// PermissionState mirrors the states a location permission can be in.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionPrompt  PermissionState = "prompt"
	PermissionDenied  PermissionState = "denied"
)

// Location acquisition failures, classified for localized messaging.
var (
	ErrLocationDenied      = errors.New("checkout: location permission denied")
	ErrLocationTimeout     = errors.New("checkout: location request timed out")
	ErrLocationUnavailable = errors.New("checkout: location unavailable")
)

// Fix is a single position reading.
type Fix struct {
	Point     geo.Point
	Accuracy  float64
	Timestamp time.Time
}

// FixOptions tunes a single acquisition attempt.
type FixOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// FixProvider is the positioning backend. Implementations wrap whatever the
// device or gateway exposes.
type FixProvider interface {
	GetFix(ctx context.Context, opts FixOptions) (Fix, error)
	Permission(ctx context.Context) (PermissionState, error)
}

const (
	fastFixTimeout   = 4 * time.Second
	fastFixMaxAge    = 60 * time.Second
	refineTimeout    = 15 * time.Second
	fallbackTimeout  = 20 * time.Second
	promptFixTimeout = 60 * time.Second
)

// Locator runs the two phase acquisition: a quick cached-friendly fix first so
// the session can proceed, then a high accuracy refinement in the background.
// Every acquisition bumps a request id; a refinement that finishes after a
// newer request (or a manual pin) started is discarded.
type Locator struct {
	provider FixProvider
	logger   *slog.Logger

	mu      sync.Mutex
	reqID   uint64
	manual  bool
	current *Fix
}

// NewLocator constructs a locator.
func NewLocator(provider FixProvider, logger *slog.Logger) *Locator {
	return &Locator{provider: provider, logger: logger}
}

// Current returns the most recent accepted fix, if any.
func (l *Locator) Current() (Fix, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Fix{}, false
	}
	return *l.current, true
}

// Manual reports whether the current position was pinned by hand.
func (l *Locator) Manual() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.manual
}

// SetManual pins a hand-picked position. It supersedes any in-flight
// refinement: the request id moves forward so late fixes are dropped.
func (l *Locator) SetManual(p geo.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqID++
	l.manual = true
	l.current = &Fix{Point: p, Timestamp: time.Now()}
}

// Acquire obtains a position. It returns as soon as a fast (possibly cached)
// fix lands and keeps refining in the background; when the fast path fails it
// falls back to a single patient attempt tuned by the permission state.
func (l *Locator) Acquire(ctx context.Context) (Fix, error) {
	l.mu.Lock()
	l.reqID++
	l.manual = false
	req := l.reqID
	l.mu.Unlock()

	fix, err := l.provider.GetFix(ctx, FixOptions{
		Timeout: fastFixTimeout,
		MaxAge:  fastFixMaxAge,
	})
	if err == nil {
		if l.apply(req, fix) {
			go l.refine(context.WithoutCancel(ctx), req)
		}
		return fix, nil
	}
	return l.fallback(ctx, req, err)
}

// refine requests a high accuracy fix and applies it only when no newer
// acquisition or manual pin happened meanwhile.
func (l *Locator) refine(ctx context.Context, req uint64) {
	fix, err := l.provider.GetFix(ctx, FixOptions{
		HighAccuracy: true,
		Timeout:      refineTimeout,
	})
	if err != nil {
		l.logger.Debug("location refinement failed", "error", err)
		return
	}
	if !l.apply(req, fix) {
		l.logger.Debug("stale location refinement discarded", "request_id", req)
	}
}

func (l *Locator) fallback(ctx context.Context, req uint64, fastErr error) (Fix, error) {
	state, err := l.provider.Permission(ctx)
	if err != nil {
		state = PermissionPrompt
	}
	if state == PermissionDenied {
		return Fix{}, ErrLocationDenied
	}

	opts := FixOptions{HighAccuracy: true, Timeout: fallbackTimeout}
	if state == PermissionPrompt {
		// The user may still be looking at the permission dialog.
		opts.Timeout = promptFixTimeout
	}
	fix, err := l.provider.GetFix(ctx, opts)
	if err != nil {
		return Fix{}, classifyFixError(err, fastErr)
	}
	l.apply(req, fix)
	return fix, nil
}

// apply stores the fix unless a newer request or a manual pin owns the slot.
func (l *Locator) apply(req uint64, fix Fix) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if req != l.reqID || l.manual {
		return false
	}
	f := fix
	l.current = &f
	return true
}

func classifyFixError(err, fastErr error) error {
	switch {
	case errors.Is(err, ErrLocationDenied) || errors.Is(fastErr, ErrLocationDenied):
		return ErrLocationDenied
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrLocationTimeout):
		return ErrLocationTimeout
	default:
		return ErrLocationUnavailable
	}
}
