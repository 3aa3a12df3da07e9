package locate

import (
	"context"
	"time"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
)

// DefaultTimeout bounds a single acquisition when Options.Timeout is unset
const DefaultTimeout = 15 * time.Second

// Options is the accuracy and staleness policy for one acquisition
type Options struct {
	Timeout            time.Duration // Bounded wait, enforced by the Acquirer
	EnableHighAccuracy bool          // Prefer precision over speed
	MaximumAge         time.Duration // Accept a cached fix up to this old
}

// DefaultOptions returns the policy used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Timeout:            DefaultTimeout,
		EnableHighAccuracy: false,
		MaximumAge:         0,
	}
}

// Position is a single fix reported by a Provider
type Position struct {
	Coordinate geo.Coordinate
	Accuracy   float64 // meters, 0 if unknown
	Timestamp  time.Time
}

// Provider is the environment's positioning capability
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// FuncProvider adapts a function to the Provider interface
type FuncProvider func(ctx context.Context, opts Options) (Position, error)

// CurrentPosition calls f
func (f FuncProvider) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

// StaticProvider always reports the same coordinate
type StaticProvider struct {
	Coordinate geo.Coordinate
}

// CurrentPosition returns the fixed coordinate
func (p StaticProvider) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Coordinate: p.Coordinate, Timestamp: time.Now()}, nil
}
