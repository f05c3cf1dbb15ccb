package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/radarlab/radarview/internal/monitoring"
)

// Policy decides what a session failure does to the rest of the batch.
type Policy int

const (
	// FailFast stops the batch at the first failing session. This mirrors
	// the historical behaviour of the recording tools.
	FailFast Policy = iota
	// FailSoft reports the failure and moves on to the next radar name.
	FailSoft
)

// Batch runs sessions strictly sequentially: one session fully closed before
// the next opens. Only cfg.Display is shared between them.
type Batch struct {
	cfg    Config
	policy Policy

	// Sessions holds the session for each processed IOPath, in order, for
	// post-run inspection. Under FailFast it stops at the failed one.
	Sessions []*Session
}

// NewBatch prepares a batch runner.
func NewBatch(cfg Config, policy Policy) *Batch {
	return &Batch{cfg: cfg, policy: policy}
}

// Run processes every descriptor. Under FailFast the first session error is
// returned as-is; under FailSoft all failures are reported and joined.
func (b *Batch) Run(ctx context.Context, paths []IOPath) error {
	var failures []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		s := New(p, b.cfg)
		b.Sessions = append(b.Sessions, s)
		if err := s.Run(ctx); err != nil {
			err = fmt.Errorf("radar %s: %w", p.RadarName, err)
			if b.policy == FailFast {
				return err
			}
			monitoring.Logf("batch: %v (continuing)", err)
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}
