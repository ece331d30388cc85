package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/optimize"
	"github.com/Wartori54/Hydrogen/engine/osd"
	"github.com/Wartori54/Hydrogen/engine/patch"
	"github.com/Wartori54/Hydrogen/engine/settings"
	"github.com/Wartori54/Hydrogen/engine/tick"
)

// Options overrides the classifier's inputs. Zero values select the wall
// clock and the key bound in the settings.
type Options struct {
	Stopwatch tick.Stopwatch
	Toggle    tick.Toggle
}

// Module owns everything the engine installs into one game.
type Module struct {
	Game      *host.Game
	Ticks     *tick.Classifier
	Scheduler *optimize.Scheduler
	Settings  *settings.Settings
	OSD       *osd.PerfStats

	hooks patch.Hook
}

// New prepares a module for g. Nothing is installed until Load.
func New(g *host.Game, s *settings.Settings, opts Options) (*Module, error) {
	catalog := optimize.Catalog()
	if err := s.Validate(optimize.MaxLevel(catalog)); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	toggle := opts.Toggle
	if toggle == nil {
		key, err := s.ToggleKey()
		if err != nil {
			return nil, err
		}
		toggle = host.Binding{Keyboard: g.Keyboard, Key: key}
	}

	ticks := tick.NewClassifier(g, tick.Config{
		Stopwatch: opts.Stopwatch,
		Toggle:    toggle,
		Uncapped:  s.UncappedSpeed,
		OnToggle:  func(uncapped bool) { s.UncappedSpeed = uncapped },
	})
	env := &optimize.Env{Points: g.Points, Ticks: ticks}
	return &Module{
		Game:      g,
		Ticks:     ticks,
		Scheduler: optimize.NewScheduler(env, catalog),
		Settings:  s,
		OSD:       osd.NewPerfStats(ticks, func() bool { return s.EnableOSD }),
	}, nil
}

// Load installs the classifier hooks and the overlay, then activates the
// units the settings ask for. Later settings changes apply immediately.
// If any step fails the module is left unloaded.
func (m *Module) Load() error {
	if m.hooks != nil {
		return nil
	}
	hooks, err := m.Ticks.Install(m.Game.Points)
	if err != nil {
		return err
	}
	m.hooks = hooks
	m.Game.SetFixedTimeStep(!m.Ticks.Uncapped())
	m.Game.Add(m.OSD)
	m.Settings.Bind(m.Scheduler)
	if err := m.Settings.Apply(); err != nil {
		m.Unload()
		return err
	}
	logrus.Infof("[engine] loaded: level=%d onlyPure=%v uncapped=%v, %d units active",
		m.Settings.OptimizationLevel, m.Settings.OnlyPure, m.Ticks.Uncapped(), len(m.Scheduler.Active()))
	return nil
}

// Unload removes every unit and hook, returning the game to its unpatched
// behavior. The settings keep their values.
func (m *Module) Unload() {
	if m.hooks == nil {
		return
	}
	m.Settings.Bind(nil)
	m.Scheduler.Shutdown()
	m.Game.Remove(m.OSD)
	m.hooks.Dispose()
	m.hooks = nil
	m.Game.SetFixedTimeStep(true)
	logrus.Info("[engine] unloaded")
}

// Loaded reports whether the hooks are installed.
func (m *Module) Loaded() bool { return m.hooks != nil }
