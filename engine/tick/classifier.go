// Package tick decides, once per simulation step, whether the step is a
// presented step (its results reach the screen) or a fast step (run only to
// advance the simulation), and publishes that decision for the duration of
// the step.
//
// In capped mode every step is presented. In uncapped mode the host is
// allowed to step as fast as it can, each step is fed the nominal timestep,
// and only the step on which the frame timer expires is presented.
package tick

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/metrics"
)

// Host is the part of the application the classifier paces.
type Host interface {
	TargetElapsedTime() time.Duration
	SetFixedTimeStep(fixed bool)
}

// Stopwatch measures wall time since its last restart.
type Stopwatch interface {
	Elapsed() time.Duration
	Restart()
}

// Toggle reports whether the uncapped toggle was pressed this step.
type Toggle interface {
	Pressed() bool
}

// Config configures a Classifier. Zero values select the wall clock, no
// toggle input and capped mode.
type Config struct {
	Stopwatch Stopwatch
	Toggle    Toggle
	Uncapped  bool
	// OnToggle is called after the toggle input flips uncapped mode.
	OnToggle func(uncapped bool)
}

// Stats is a read-only snapshot of the published values.
type Stats struct {
	Steps                  uint64
	Presented              bool
	Uncapped               bool
	LastTickDuration       time.Duration
	FastTicks              int
	TicksPerPresentedFrame int
}

// Classifier is the frame-decoupling scheduler. It is confined to the
// goroutine that drives the host loop and does no locking.
type Classifier struct {
	host     Host
	timer    Stopwatch
	toggle   Toggle
	onToggle func(bool)

	presented     bool
	uncapped      bool
	lastTick      time.Duration
	fastTicks     int
	ticksPerFrame int
	steps         uint64

	listeners   []listener
	nextID      int
	dispatching bool
}

type listener struct {
	id int
	fn func()
}

// Subscription identifies a presented-tick listener.
type Subscription struct {
	id int
}

// NewClassifier creates a classifier pacing h.
func NewClassifier(h Host, cfg Config) *Classifier {
	if cfg.Stopwatch == nil {
		cfg.Stopwatch = NewStopwatch()
	}
	return &Classifier{
		host:      h,
		timer:     cfg.Stopwatch,
		toggle:    cfg.Toggle,
		onToggle:  cfg.OnToggle,
		uncapped:  cfg.Uncapped,
		presented: true,
	}
}

// Step classifies one simulation step and runs orig as its body.
func (c *Classifier) Step(gt host.GameTime, orig func(host.GameTime)) {
	if c.dispatching {
		panic("tick: Step re-entered from a presented-tick listener")
	}
	c.steps++
	c.fastTicks++
	c.lastTick = gt.Elapsed
	metrics.StepDuration.Observe(gt.Elapsed.Seconds())

	target := c.host.TargetElapsedTime()
	c.host.SetFixedTimeStep(!c.uncapped)
	c.presented = !c.uncapped
	if c.uncapped {
		gt.Elapsed = target
	}
	if c.timer.Elapsed() >= target {
		c.timer.Restart()
		c.presented = true
	}

	orig(gt)

	if c.toggle != nil && c.toggle.Pressed() {
		c.SetUncapped(!c.uncapped)
		metrics.UncappedToggles.Inc()
		if c.onToggle != nil {
			c.onToggle(c.uncapped)
		}
	}

	if !c.presented {
		metrics.StepsTotal.WithLabelValues("fast").Inc()
		return
	}
	metrics.StepsTotal.WithLabelValues("presented").Inc()
	c.ticksPerFrame = c.fastTicks
	c.fastTicks = 0
	metrics.TicksPerPresentedFrame.Set(float64(c.ticksPerFrame))
	c.dispatch()
}

func (c *Classifier) dispatch() {
	c.dispatching = true
	defer func() { c.dispatching = false }()
	// Listeners may unsubscribe while running.
	for _, l := range append([]listener(nil), c.listeners...) {
		l.fn()
	}
}

// BeginDraw gates frame composition: on a fast step it reports that there is
// nothing to present without calling orig.
func (c *Classifier) BeginDraw(orig func() bool) bool {
	if !c.presented {
		return false
	}
	return orig()
}

// Subscribe registers fn to run synchronously at the end of every presented
// step, after listeners registered before it.
func (c *Classifier) Subscribe(fn func()) Subscription {
	c.nextID++
	c.listeners = append(c.listeners, listener{id: c.nextID, fn: fn})
	return Subscription{id: c.nextID}
}

// Unsubscribe removes a listener. Unknown subscriptions are ignored.
func (c *Classifier) Unsubscribe(s Subscription) {
	for i, l := range c.listeners {
		if l.id == s.id {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

// IsPresented reports whether the current step is presented.
func (c *Classifier) IsPresented() bool { return c.presented }

func (c *Classifier) Uncapped() bool { return c.uncapped }

// SetUncapped switches mode; the change applies from the next step.
func (c *Classifier) SetUncapped(uncapped bool) {
	if c.uncapped == uncapped {
		return
	}
	c.uncapped = uncapped
	logrus.Infof("[tick] uncapped mode %v", uncapped)
}

// LastTickDuration is the elapsed time the host reported for the last step.
func (c *Classifier) LastTickDuration() time.Duration { return c.lastTick }

// LastTickSeconds is LastTickDuration in seconds.
func (c *Classifier) LastTickSeconds() float64 { return c.lastTick.Seconds() }

// TicksPerPresentedFrame is the number of steps in the last presented frame.
func (c *Classifier) TicksPerPresentedFrame() int { return c.ticksPerFrame }

func (c *Classifier) Stats() Stats {
	return Stats{
		Steps:                  c.steps,
		Presented:              c.presented,
		Uncapped:               c.uncapped,
		LastTickDuration:       c.lastTick,
		FastTicks:              c.fastTicks,
		TicksPerPresentedFrame: c.ticksPerFrame,
	}
}
