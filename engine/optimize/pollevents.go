package optimize

import (
	"fmt"

	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/patch"
)

// pollEvents branches around the platform event poll inside the host's tick
// routine on fast steps. The poll precedes the step call, so the branch reads
// the previous step's classification and polled input can arrive one step late.
type pollEvents struct {
	hook patch.Hook
}

// NewSlowDownPollEvents returns the call-site patch for platform event polling.
func NewSlowDownPollEvents() Optimization {
	return &pollEvents{}
}

func (u *pollEvents) Name() string { return SlowDownPollEvents }
func (u *pollEvents) Level() int   { return 2 }
func (u *pollEvents) Pure() bool   { return false }

func (u *pollEvents) Load(env *Env) error {
	if u.hook != nil {
		return nil
	}
	rt, err := env.Points.Routine(host.GameTick)
	if err != nil {
		return fmt.Errorf("%s: %w", SlowDownPollEvents, err)
	}
	presented := env.Ticks.IsPresented
	hook, err := rt.Manipulate(func(c *patch.Cursor) error {
		if err := c.Seek("poll events load", patch.Before, patch.MatchLoad(host.PollEventsField)); err != nil {
			return err
		}
		end := c.Clone()
		if err := end.Seek("poll events invoke", patch.After, patch.MatchInvoke(host.PollEventsInvoke)); err != nil {
			return err
		}
		skip := end.MarkLabel()
		c.EmitBranchFalse(presented, skip)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", SlowDownPollEvents, err)
	}
	u.hook = hook
	return nil
}

func (u *pollEvents) Unload(*Env) {
	if u.hook == nil {
		return
	}
	u.hook.Dispose()
	u.hook = nil
}
