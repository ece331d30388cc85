// Package host models the patchable surface of the application the engine
// optimizes: its per-step routine, its step and begin-draw calls, and the
// subsystem entry points the optimization units guard. Every entry point is a
// patch.Point registered in the game's registry, and every original body
// counts its own executions so suppression is observable.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Wartori54/Hydrogen/engine/patch"
)

type void = patch.Void

// Game is the host application instance.
type Game struct {
	Points   *patch.Registry
	Keyboard *Keyboard

	targetElapsed time.Duration
	fixedTimeStep bool
	total         time.Duration
	pending       GameTime
	steps         int
	draws         int
	calls         map[string]int
	entities      []Entity
	source        *EventInstance

	tick      *patch.Routine
	update    *patch.Point[GameTime, void]
	beginDraw *patch.Point[void, bool]

	frameworkDispatcher *patch.Point[void, void]
	audioUpdate         *patch.Point[void, void]
	audioPlay           *patch.Point[string, *EventInstance]
	audioPosition       *patch.Point[PositionArgs, void]
	autoSplitter        *patch.Point[void, void]
	discord             *patch.Point[GameTime, void]
	mouse               *patch.Point[void, void]
	backdrop            *patch.Point[void, void]
	tiles               *patch.Point[void, void]
	particles           *patch.Point[void, void]
	emit                *patch.Point[Particle, void]
	spinnerHue          *patch.Point[void, void]
	birdMeasure         *patch.Point[void, void]
}

// New creates a game running at the default 60 Hz fixed timestep.
func New() *Game {
	g := &Game{
		Points:        patch.NewRegistry(),
		Keyboard:      NewKeyboard(),
		targetElapsed: DefaultTargetElapsedTime,
		fixedTimeStep: true,
		calls:         make(map[string]int),
		source:        &EventInstance{Path: "event:/env/local/waterfall_big_main"},
	}
	r := g.Points

	g.update = patch.Register(r, GameUpdate, g.updateBody)
	g.beginDraw = patch.Register(r, GameBeginDraw, func(void) bool {
		g.calls[GameBeginDraw]++
		return true
	})
	g.tick = r.RegisterRoutine(GameTick, []patch.Instr{
		{Op: patch.OpLoad, Operand: PollEventsField},
		{Op: patch.OpInvoke, Operand: PollEventsInvoke},
		{Op: patch.OpCall, Operand: GameUpdate},
		{Op: patch.OpCall, Operand: gameDraw},
	})

	g.frameworkDispatcher = patch.Register(r, FrameworkDispatcherUpdate, g.counted(FrameworkDispatcherUpdate))
	g.audioUpdate = patch.Register(r, AudioUpdate, g.counted(AudioUpdate))
	g.audioPlay = patch.Register(r, AudioPlay, func(path string) *EventInstance {
		g.calls[AudioPlay]++
		return &EventInstance{Path: path}
	})
	patch.Register(r, AudioPlayAt, func(a PlayAtArgs) *EventInstance {
		g.calls[AudioPlayAt]++
		return &EventInstance{Path: a.Path, Position: a.Position}
	})
	patch.Register(r, AudioPlayParam, func(a PlayParamArgs) *EventInstance {
		g.calls[AudioPlayParam]++
		return &EventInstance{Path: a.Path}
	})
	g.audioPosition = patch.Register(r, AudioPosition, func(a PositionArgs) void {
		g.calls[AudioPosition]++
		a.Instance.Position = a.Position
		return void{}
	})
	g.autoSplitter = patch.Register(r, AutoSplitterUpdate, g.counted(AutoSplitterUpdate))
	g.discord = patch.Register(r, DiscordSDKUpdate, func(GameTime) void {
		g.calls[DiscordSDKUpdate]++
		return void{}
	})
	g.mouse = patch.Register(r, MouseDataUpdate, g.counted(MouseDataUpdate))
	g.backdrop = patch.Register(r, BackdropRendererUpdate, g.counted(BackdropRendererUpdate))
	g.tiles = patch.Register(r, AnimatedTilesUpdate, g.counted(AnimatedTilesUpdate))
	g.particles = patch.Register(r, ParticleSystemUpdate, g.counted(ParticleSystemUpdate))
	patch.Register(r, ParticleSystemAdd, func(Particle) void {
		g.calls[ParticleSystemAdd]++
		return void{}
	})
	g.emit = patch.Register(r, ParticleSystemEmit, func(Particle) void {
		g.calls[ParticleSystemEmit]++
		return void{}
	})
	patch.Register(r, ParticleSystemEmitRange, func(EmitRangeArgs) void {
		g.calls[ParticleSystemEmitRange]++
		return void{}
	})
	patch.Register(r, ParticleSystemEmitTracked, func(EmitTrackedArgs) void {
		g.calls[ParticleSystemEmitTracked]++
		return void{}
	})
	g.spinnerHue = patch.Register(r, SpinnerUpdateHue, g.counted(SpinnerUpdateHue))
	g.birdMeasure = patch.Register(r, BirdTutorialMeasure, g.counted(BirdTutorialMeasure))
	return g
}

func (g *Game) counted(name string) func(void) void {
	return func(void) void {
		g.calls[name]++
		return void{}
	}
}

func (g *Game) TargetElapsedTime() time.Duration { return g.targetElapsed }

func (g *Game) SetFixedTimeStep(fixed bool) { g.fixedTimeStep = fixed }

func (g *Game) IsFixedTimeStep() bool { return g.fixedTimeStep }

// Calls reports how many times the original body of the named target ran.
func (g *Game) Calls(name string) int { return g.calls[name] }

// Steps reports how many simulation steps ran their original body.
func (g *Game) Steps() int { return g.steps }

// Draws reports how many frames were composed.
func (g *Game) Draws() int { return g.draws }

// Source is the looping sound whose position the world moves every step.
func (g *Game) Source() *EventInstance { return g.source }

// Add puts an entity into the scene.
func (g *Game) Add(e Entity) { g.entities = append(g.entities, e) }

// Remove takes an entity out of the scene.
func (g *Game) Remove(e Entity) {
	for i, o := range g.entities {
		if o == e {
			g.entities = append(g.entities[:i], g.entities[i+1:]...)
			return
		}
	}
}

// PlaySound starts a one-shot sound through the patchable Audio.Play.
func (g *Game) PlaySound(path string) *EventInstance { return g.audioPlay.Call(path) }

// SetPosition moves a sound through the patchable Audio.Position.
func (g *Game) SetPosition(inst *EventInstance, pos Vector2) {
	g.audioPosition.Call(PositionArgs{Instance: inst, Position: pos})
}

// Tick runs one iteration of the host loop. With a fixed timestep the
// measured elapsed time is replaced by the target interval.
func (g *Game) Tick(elapsed time.Duration) {
	if g.fixedTimeStep {
		elapsed = g.targetElapsed
	}
	g.total += elapsed
	g.pending = GameTime{
		Total:         g.total,
		Elapsed:       elapsed,
		RunningSlowly: elapsed > g.targetElapsed,
	}
	g.tick.Run(g.dispatch)
}

func (g *Game) dispatch(name string) {
	switch name {
	case PollEventsField:
		g.calls[PollEventsField]++
		g.Keyboard.poll()
	case GameUpdate:
		g.update.Call(g.pending)
	case gameDraw:
		if g.beginDraw.Call(void{}) {
			g.draw()
		}
	default:
		panic(fmt.Sprintf("host: %s has no target %q", GameTick, name))
	}
}

func (g *Game) updateBody(gt GameTime) void {
	g.steps++
	g.frameworkDispatcher.Call(void{})
	g.audioUpdate.Call(void{})
	g.autoSplitter.Call(void{})
	g.discord.Call(gt)
	g.mouse.Call(void{})

	g.backdrop.Call(void{})
	g.tiles.Call(void{})
	g.particles.Call(void{})
	g.spinnerHue.Call(void{})
	g.birdMeasure.Call(void{})

	pos := Vector2{X: float32(g.steps), Y: 0}
	g.SetPosition(g.source, pos)
	if g.steps%30 == 0 {
		g.PlaySound("event:/char/madeline/footstep")
		g.emit.Call(Particle{Type: "dust", Position: pos})
	}

	for _, e := range g.entities {
		e.Update()
	}
	return void{}
}

func (g *Game) draw() {
	g.draws++
	for _, e := range g.entities {
		e.Render()
	}
}

// Run drives the host loop for the given number of steps. With a fixed
// timestep it sleeps until each target interval has passed; otherwise it
// steps as fast as it can.
func (g *Game) Run(ctx context.Context, steps int) error {
	last := time.Now()
	for i := 0; i < steps; i++ {
		if g.fixedTimeStep {
			if wait := g.targetElapsed - time.Since(last); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		now := time.Now()
		elapsed := now.Sub(last)
		if elapsed <= 0 {
			elapsed = g.targetElapsed
		}
		last = now
		g.Tick(elapsed)
	}
	logrus.Debugf("[host] ran %d steps, %d drawn", g.steps, g.draws)
	return nil
}
