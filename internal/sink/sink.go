// Package sink delivers finished raster frames to their consumers: a live
// display and an optional video encoder. Delivery is synchronous; Push does
// not return until every attached sink has accepted the frame.
package sink

import (
	"errors"

	"github.com/radarlab/radarview/internal/render"
)

// Sink consumes raster frames. Implementations must not retain the frame
// beyond the Push call; the pipeline reuses and mutates it.
type Sink interface {
	Push(rf *render.RasterFrame) error
	Close() error
}

// Fanout forwards each frame to all attached sinks.
type Fanout struct {
	sinks []Sink
}

// Attach adds a sink. Nil sinks are ignored so callers can pass optional
// sinks without branching.
func (f *Fanout) Attach(s Sink) {
	if s == nil {
		return
	}
	f.sinks = append(f.sinks, s)
}

// Len returns the number of attached sinks.
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Push forwards rf to every sink. All sinks see the frame even when an
// earlier one fails; errors are joined.
func (f *Fanout) Push(rf *render.RasterFrame) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Push(rf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, keeping the first error but closing the rest.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.sinks = nil
	return errors.Join(errs...)
}
