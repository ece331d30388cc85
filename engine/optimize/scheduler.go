// Package optimize holds the catalog of optimization units and the scheduler
// that keeps the loaded set in line with the configured aggressiveness level
// and pure-only flag.
package optimize

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Wartori54/Hydrogen/engine/metrics"
)

// Disabled is the level at which no optimization is active.
const Disabled = -1

// Wants reports whether o belongs to the active set for level and onlyPure.
func Wants(o Optimization, level int, onlyPure bool) bool {
	if level < 0 {
		return false
	}
	return o.Level() <= level && (!onlyPure || o.Pure())
}

// Scheduler owns the active set. Like the classifier it is confined to the
// goroutine driving the host loop.
type Scheduler struct {
	env      *Env
	catalog  []Optimization
	active   map[Optimization]struct{}
	level    int
	onlyPure bool
}

// NewScheduler creates a scheduler with nothing loaded.
func NewScheduler(env *Env, catalog []Optimization) *Scheduler {
	return &Scheduler{
		env:      env,
		catalog:  catalog,
		active:   make(map[Optimization]struct{}),
		level:    Disabled,
		onlyPure: true,
	}
}

// SwitchTo reconciles the active set with level and onlyPure. Units whose
// membership does not change are not touched. A unit that fails to load is
// left inactive and its error returned; reconciliation stops there.
func (s *Scheduler) SwitchTo(level int, onlyPure bool) error {
	s.level, s.onlyPure = level, onlyPure

	var unloaded, loaded int
	for _, o := range s.catalog {
		if _, ok := s.active[o]; !ok || Wants(o, level, onlyPure) {
			continue
		}
		o.Unload(s.env)
		delete(s.active, o)
		unloaded++
		metrics.OptimizationUnloads.WithLabelValues(o.Name()).Inc()
		logrus.Debugf("[optimize] unloaded %s", o.Name())
	}

	for _, o := range s.catalog {
		if _, ok := s.active[o]; ok || !Wants(o, level, onlyPure) {
			continue
		}
		if err := o.Load(s.env); err != nil {
			metrics.ActiveOptimizations.Set(float64(len(s.active)))
			return fmt.Errorf("loading optimization: %w", err)
		}
		s.active[o] = struct{}{}
		loaded++
		metrics.OptimizationLoads.WithLabelValues(o.Name()).Inc()
		logrus.Debugf("[optimize] loaded %s", o.Name())
	}

	metrics.ActiveOptimizations.Set(float64(len(s.active)))
	if loaded+unloaded > 0 {
		logrus.Infof("[optimize] level=%d onlyPure=%v: +%d -%d, %d active", level, onlyPure, loaded, unloaded, len(s.active))
	}
	return nil
}

// Shutdown unloads everything.
func (s *Scheduler) Shutdown() {
	// Nothing is loaded at Disabled, so this cannot fail.
	_ = s.SwitchTo(Disabled, s.onlyPure)
}

// MaxLevel is the highest level in the catalog, 0 when it is empty.
func (s *Scheduler) MaxLevel() int {
	return MaxLevel(s.catalog)
}

// MaxLevel is the highest level among catalog, 0 when it is empty.
func MaxLevel(catalog []Optimization) int {
	highest := 0
	for _, o := range catalog {
		if o.Level() > highest {
			highest = o.Level()
		}
	}
	return highest
}

// Active returns the loaded units in catalog order.
func (s *Scheduler) Active() []Optimization {
	out := make([]Optimization, 0, len(s.active))
	for _, o := range s.catalog {
		if _, ok := s.active[o]; ok {
			out = append(out, o)
		}
	}
	return out
}

func (s *Scheduler) IsActive(o Optimization) bool {
	_, ok := s.active[o]
	return ok
}

func (s *Scheduler) Catalog() []Optimization { return s.catalog }

func (s *Scheduler) Level() int { return s.level }

func (s *Scheduler) OnlyPure() bool { return s.onlyPure }

// Find returns the catalog unit with the given name. Unknown names panic.
func (s *Scheduler) Find(name string) Optimization {
	for _, o := range s.catalog {
		if o.Name() == name {
			return o
		}
	}
	panic(fmt.Sprintf("unknown optimization %q", name))
}
