package locate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
)

// Result holds exactly one of Coordinate or a failure Reason
type Result struct {
	Coordinate *geo.Coordinate
	Accuracy   float64
	Reason     FailureReason
	Cached     bool
}

// OK reports whether a coordinate was acquired
func (r Result) OK() bool {
	return r.Coordinate != nil
}

func failed(reason FailureReason) Result {
	return Result{Reason: reason}
}

// Acquirer performs single-shot position requests against a Provider
type Acquirer struct {
	provider Provider
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	last *Position
}

// AcquirerOption configures the Acquirer
type AcquirerOption func(*Acquirer)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) AcquirerOption {
	return func(a *Acquirer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the time source used for MaximumAge checks
func WithClock(now func() time.Time) AcquirerOption {
	return func(a *Acquirer) {
		a.now = now
	}
}

// New creates an Acquirer. A nil provider means the environment has no
// positioning capability and every acquisition yields NoSupport.
func New(p Provider, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		provider: p,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Supported reports whether a provider is configured
func (a *Acquirer) Supported() bool {
	return a.provider != nil
}

// Acquire requests the current position once. Concurrent calls are not
// deduplicated.
func (a *Acquirer) Acquire(ctx context.Context, opts Options) Result {
	if a.provider == nil {
		a.logger.Debug("geolocation unavailable")
		return failed(NoSupport)
	}

	if cached, ok := a.cached(opts.MaximumAge); ok {
		a.logger.Debug("using cached position", zap.Stringer("coordinate", cached.Coordinate))
		return Result{Coordinate: cached.Coordinate.Ptr(), Accuracy: cached.Accuracy, Cached: true}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		pos Position
		err error
	}
	done := make(chan outcome, 1)

	a.logger.Debug("acquiring position",
		zap.Duration("timeout", timeout),
		zap.Bool("high_accuracy", opts.EnableHighAccuracy),
	)

	go func() {
		pos, err := a.provider.CurrentPosition(ctx, opts)
		done <- outcome{pos, err}
	}()

	// The deadline is enforced here even if the provider ignores ctx
	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{err: ctx.Err()}
	}

	if out.err != nil {
		reason := Classify(out.err)
		a.logger.Warn("geolocation failed", zap.Stringer("reason", reason), zap.Error(out.err))
		return failed(reason)
	}

	c, ok := geo.ParseCoordinate(out.pos.Coordinate.Lat, out.pos.Coordinate.Lng)
	if !ok || !c.InRange() {
		a.logger.Warn("provider returned an invalid coordinate", zap.Stringer("coordinate", out.pos.Coordinate))
		return failed(PositionUnavailable)
	}

	out.pos.Coordinate = c
	if out.pos.Timestamp.IsZero() {
		out.pos.Timestamp = a.now()
	}
	a.remember(out.pos)

	return Result{Coordinate: c.Ptr(), Accuracy: out.pos.Accuracy}
}

func (a *Acquirer) cached(maxAge time.Duration) (Position, bool) {
	if maxAge <= 0 {
		return Position{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last == nil || a.now().Sub(a.last.Timestamp) > maxAge {
		return Position{}, false
	}
	return *a.last, true
}

func (a *Acquirer) remember(pos Position) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = &pos
}
