package optimize

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/metrics"
	"github.com/Wartori54/Hydrogen/engine/patch"
	"github.com/Wartori54/Hydrogen/engine/tick"
)

// audioPosition defers sound positioning: every call records the latest
// position per instance, and presented steps apply the pending positions
// once each.
type audioPosition struct {
	detour  *patch.Detour[host.PositionArgs, patch.Void]
	sub     tick.Subscription
	ticks   *tick.Classifier
	pending map[*host.EventInstance]host.Vector2
	order   []*host.EventInstance
}

// NewOptimizeAudioPosition returns the coalescing unit for Audio.Position.
func NewOptimizeAudioPosition() Optimization {
	return &audioPosition{pending: make(map[*host.EventInstance]host.Vector2)}
}

func (u *audioPosition) Name() string { return OptimizeAudioPosition }
func (u *audioPosition) Level() int   { return 3 }
func (u *audioPosition) Pure() bool   { return false }

func (u *audioPosition) Load(env *Env) error {
	if u.detour != nil {
		return nil
	}
	d, err := patch.Intercept(env.Points, host.AudioPosition, func(_ func(host.PositionArgs) patch.Void, a host.PositionArgs) patch.Void {
		u.record(a)
		return patch.Void{}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", OptimizeAudioPosition, err)
	}
	u.detour = d
	u.ticks = env.Ticks
	u.sub = env.Ticks.Subscribe(u.Flush)
	return nil
}

// Unload applies whatever is still pending so the last positions land.
func (u *audioPosition) Unload(*Env) {
	if u.detour == nil {
		return
	}
	u.ticks.Unsubscribe(u.sub)
	u.Flush()
	u.detour.Dispose()
	u.detour = nil
	u.ticks = nil
}

func (u *audioPosition) record(a host.PositionArgs) {
	if _, ok := u.pending[a.Instance]; !ok {
		u.order = append(u.order, a.Instance)
	}
	u.pending[a.Instance] = a.Position
}

// Flush applies pending positions in first-seen order and clears them.
func (u *audioPosition) Flush() {
	if len(u.order) == 0 {
		return
	}
	for _, inst := range u.order {
		u.detour.Proceed(host.PositionArgs{Instance: inst, Position: u.pending[inst]})
	}
	metrics.CoalescedFlushes.WithLabelValues(host.AudioPosition).Add(float64(len(u.order)))
	logrus.Tracef("[optimize] flushed %d audio positions", len(u.order))
	clear(u.pending)
	u.order = u.order[:0]
}

// Pending reports how many instances have a deferred position.
func (u *audioPosition) Pending() int { return len(u.pending) }
