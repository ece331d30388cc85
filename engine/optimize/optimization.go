package optimize

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Wartori54/Hydrogen/engine/metrics"
	"github.com/Wartori54/Hydrogen/engine/patch"
	"github.com/Wartori54/Hydrogen/engine/tick"
)

// Env is what units need to install and run their guards.
type Env struct {
	Points *patch.Registry
	Ticks  *tick.Classifier
}

// Optimization is one reversible patch on the host.
//
// Level is the minimum aggressiveness at which it is active. Pure reports
// that applying it changes nothing observable besides timing; the value is
// declared policy, not derived. Unload after Load must return the host to
// its unpatched behavior and is a no-op when not loaded.
type Optimization interface {
	Name() string
	Level() int
	Pure() bool
	Load(env *Env) error
	Unload(env *Env)
}

type installer func(env *Env) (patch.Hook, error)

// detourUnit installs a fixed list of hooks on Load and disposes them on Unload.
type detourUnit struct {
	name       string
	level      int
	pure       bool
	installers []installer
	hooks      patch.Group
}

func (u *detourUnit) Name() string { return u.name }
func (u *detourUnit) Level() int   { return u.level }
func (u *detourUnit) Pure() bool   { return u.pure }

func (u *detourUnit) Load(env *Env) error {
	if u.hooks != nil {
		return nil
	}
	hooks := make(patch.Group, 0, len(u.installers))
	for _, install := range u.installers {
		h, err := install(env)
		if err != nil {
			hooks.Dispose()
			return fmt.Errorf("%s: %w", u.name, err)
		}
		hooks = append(hooks, h)
	}
	u.hooks = hooks
	logrus.Debugf("[optimize] %s hooked %s", u.name, hooks.Target())
	return nil
}

func (u *detourUnit) Unload(*Env) {
	if u.hooks == nil {
		return
	}
	u.hooks.Dispose()
	u.hooks = nil
}

// drop skips target on fast steps and returns neutral instead.
func drop[A, R any](target string, neutral R) installer {
	return func(env *Env) (patch.Hook, error) {
		ticks := env.Ticks
		suppressed := metrics.SuppressedCalls.WithLabelValues(target)
		d, err := patch.Intercept(env.Points, target, func(orig func(A) R, args A) R {
			if !ticks.IsPresented() {
				suppressed.Inc()
				return neutral
			}
			return orig(args)
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// dropVoid is drop for targets with neither arguments nor results.
func dropVoid(target string) installer {
	return drop[patch.Void, patch.Void](target, patch.Void{})
}
