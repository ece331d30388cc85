package host

import "time"

// Names of the host's patchable functions and routines.
const (
	GameUpdate    = "Game.Update"
	GameBeginDraw = "Game.BeginDraw"
	GameTick      = "Game.Tick" // routine
	gameDraw      = "Game.Draw"

	PollEventsField  = "FNAPlatform.PollEvents"
	PollEventsInvoke = "FNAPlatform.PollEventsFunc.Invoke"

	AudioUpdate    = "Audio.Update"
	AudioPlay      = "Audio.Play"
	AudioPlayAt    = "Audio.PlayAt"
	AudioPlayParam = "Audio.PlayParam"
	AudioPosition  = "Audio.Position"

	AutoSplitterUpdate        = "AutoSplitterInfo.Update"
	DiscordSDKUpdate          = "DiscordSDK.Update"
	MouseDataUpdate           = "MInput.MouseData.Update"
	BackdropRendererUpdate    = "BackdropRenderer.Update"
	AnimatedTilesUpdate       = "AnimatedTiles.Update"
	ParticleSystemUpdate      = "ParticleSystem.Update"
	ParticleSystemAdd         = "ParticleSystem.Add"
	ParticleSystemEmit        = "ParticleSystem.Emit"
	ParticleSystemEmitRange   = "ParticleSystem.EmitRange"
	ParticleSystemEmitTracked = "ParticleSystem.EmitTracked"
	FrameworkDispatcherUpdate = "FrameworkDispatcher.Update"
	SpinnerUpdateHue          = "CrystalStaticSpinner.UpdateHue"
	BirdTutorialMeasure       = "BirdTutorialGui.UpdateControlsSize"
)

// DefaultTargetElapsedTime is the host's nominal step interval (60 Hz).
const DefaultTargetElapsedTime = time.Second / 60

// GameTime is what the host passes to each simulation step.
type GameTime struct {
	Total         time.Duration
	Elapsed       time.Duration
	RunningSlowly bool
}

type Vector2 struct {
	X, Y float32
}

// EventInstance is a playing sound. The pointer is its identity.
type EventInstance struct {
	Path     string
	Position Vector2
}

type PlayAtArgs struct {
	Path     string
	Position Vector2
}

type PlayParamArgs struct {
	Path  string
	Param string
	Value float32
}

type PositionArgs struct {
	Instance *EventInstance
	Position Vector2
}

type Particle struct {
	Type     string
	Position Vector2
}

type EmitRangeArgs struct {
	Type   string
	Amount int
	Center Vector2
	Range  Vector2
}

type EmitTrackedArgs struct {
	Type   string
	Track  string
	Amount int
	Center Vector2
}

// Entity is a scene object updated every step and rendered on drawn frames.
type Entity interface {
	Update()
	Render()
}
