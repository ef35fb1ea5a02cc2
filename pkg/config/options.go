package config

import (
	"fmt"

	"go.uber.org/zap"
)

// Options carries the settings threaded into builders and converters.
type Options struct {
	Tolerance Tolerance
	Logger    *zap.Logger
}

// Option customizes Options.
type Option func(*Options)

// WithTolerance sets the tolerance used by the operation. Panics when t
// fails Validate; check user-supplied tolerances before building options.
func WithTolerance(t Tolerance) Option {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("config: WithTolerance: %v", err))
	}
	return func(o *Options) {
		o.Tolerance = t
	}
}

// WithLogger sets the logger. Panics on nil; pass zap.NewNop() to silence
// logging explicitly.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("config: WithLogger(nil)")
	}
	return func(o *Options) {
		o.Logger = l
	}
}

// Resolve applies opts on top of the process-wide defaults.
func Resolve(opts ...Option) Options {
	o := Options{
		Tolerance: Default(),
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
