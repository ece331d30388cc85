package tick

import (
	"fmt"
	"time"

	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/patch"
)

// Install intercepts the host's step and begin-draw calls. Both must exist;
// a missing patch point is returned as an error and nothing stays installed.
func (c *Classifier) Install(r *patch.Registry) (patch.Hook, error) {
	step, err := patch.Intercept(r, host.GameUpdate, func(orig func(host.GameTime) patch.Void, gt host.GameTime) patch.Void {
		c.Step(gt, func(gt host.GameTime) { orig(gt) })
		return patch.Void{}
	})
	if err != nil {
		return nil, fmt.Errorf("installing step hook: %w", err)
	}
	gate, err := patch.Intercept(r, host.GameBeginDraw, func(orig func(patch.Void) bool, v patch.Void) bool {
		return c.BeginDraw(func() bool { return orig(v) })
	})
	if err != nil {
		step.Dispose()
		return nil, fmt.Errorf("installing presentation gate: %w", err)
	}
	return patch.Group{step, gate}, nil
}

type wallStopwatch struct {
	start time.Time
}

// NewStopwatch returns a stopwatch on the monotonic wall clock.
func NewStopwatch() Stopwatch {
	return &wallStopwatch{start: time.Now()}
}

func (s *wallStopwatch) Elapsed() time.Duration { return time.Since(s.start) }

func (s *wallStopwatch) Restart() { s.start = time.Now() }
