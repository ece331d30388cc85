package optimize

import (
	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/patch"
)

// Unit names, in catalog order.
const (
	SlowDownAudioUpdate              = "slow-down-audio-update"
	SlowDownAutoSplitterUpdate       = "slow-down-auto-splitter-update"
	SlowDownPollEvents               = "slow-down-poll-events"
	SlowDownDiscordSDK               = "slow-down-discord-sdk"
	SlowDownMInputUpdate             = "slow-down-minput-update"
	LessenBackdropUpdates            = "lessen-backdrop-updates"
	LessenAnimatedTilesUpdate        = "lessen-animated-tiles-update"
	LessenParticles                  = "lessen-particles"
	LessenFrameworkDispatcherUpdates = "lessen-framework-dispatcher-updates"
	SlowDownCrystalSpinnerHue        = "slow-down-crystal-spinner-hue"
	SlowDownMeasureBirdTutorialGui   = "slow-down-measure-bird-tutorial-gui"
	OptimizeAudioPosition            = "optimize-audio-position"
)

// NewSlowDownAudioUpdate skips the audio engine tick and one-shot sounds
// started on fast steps.
func NewSlowDownAudioUpdate() Optimization {
	return &detourUnit{
		name:  SlowDownAudioUpdate,
		level: 1,
		installers: []installer{
			dropVoid(host.AudioUpdate),
			drop[string, *host.EventInstance](host.AudioPlay, nil),
			drop[host.PlayAtArgs, *host.EventInstance](host.AudioPlayAt, nil),
			drop[host.PlayParamArgs, *host.EventInstance](host.AudioPlayParam, nil),
		},
	}
}

// NewSlowDownAutoSplitterUpdate skips auto-splitter telemetry on fast steps.
// Declared pure: in theory the splitter sees fewer samples, in practice
// nothing reads them between frames.
func NewSlowDownAutoSplitterUpdate() Optimization {
	return &detourUnit{
		name:       SlowDownAutoSplitterUpdate,
		level:      1,
		pure:       true,
		installers: []installer{dropVoid(host.AutoSplitterUpdate)},
	}
}

// NewSlowDownDiscordSDK skips rich-presence updates on fast steps.
// Declared pure for the same practical reason as the auto-splitter.
func NewSlowDownDiscordSDK() Optimization {
	return &detourUnit{
		name:       SlowDownDiscordSDK,
		level:      1,
		pure:       true,
		installers: []installer{drop[host.GameTime, patch.Void](host.DiscordSDKUpdate, patch.Void{})},
	}
}

// NewSlowDownMInputUpdate skips mouse state polling on fast steps.
func NewSlowDownMInputUpdate() Optimization {
	return &detourUnit{
		name:       SlowDownMInputUpdate,
		level:      1,
		installers: []installer{dropVoid(host.MouseDataUpdate)},
	}
}

// NewLessenBackdropUpdates only animates backdrops on drawn frames.
func NewLessenBackdropUpdates() Optimization {
	return &detourUnit{
		name:       LessenBackdropUpdates,
		level:      2,
		installers: []installer{dropVoid(host.BackdropRendererUpdate)},
	}
}

// NewLessenAnimatedTilesUpdate only animates tiles on drawn frames.
func NewLessenAnimatedTilesUpdate() Optimization {
	return &detourUnit{
		name:       LessenAnimatedTilesUpdate,
		level:      2,
		installers: []installer{dropVoid(host.AnimatedTilesUpdate)},
	}
}

// NewLessenParticles only simulates and emits particles on drawn frames.
func NewLessenParticles() Optimization {
	return &detourUnit{
		name:  LessenParticles,
		level: 3,
		installers: []installer{
			dropVoid(host.ParticleSystemUpdate),
			drop[host.Particle, patch.Void](host.ParticleSystemAdd, patch.Void{}),
			drop[host.Particle, patch.Void](host.ParticleSystemEmit, patch.Void{}),
			drop[host.EmitRangeArgs, patch.Void](host.ParticleSystemEmitRange, patch.Void{}),
			drop[host.EmitTrackedArgs, patch.Void](host.ParticleSystemEmitTracked, patch.Void{}),
		},
	}
}

// NewLessenFrameworkDispatcherUpdates skips the framework dispatcher, which
// has no effect on the game loop.
func NewLessenFrameworkDispatcherUpdates() Optimization {
	return &detourUnit{
		name:       LessenFrameworkDispatcherUpdates,
		level:      3,
		installers: []installer{dropVoid(host.FrameworkDispatcherUpdate)},
	}
}

// NewSlowDownCrystalSpinnerHue only cycles spinner hue on drawn frames.
func NewSlowDownCrystalSpinnerHue() Optimization {
	return &detourUnit{
		name:       SlowDownCrystalSpinnerHue,
		level:      2,
		installers: []installer{dropVoid(host.SpinnerUpdateHue)},
	}
}

// NewSlowDownMeasureBirdTutorialGui only re-measures the tutorial bubble on
// drawn frames.
func NewSlowDownMeasureBirdTutorialGui() Optimization {
	return &detourUnit{
		name:       SlowDownMeasureBirdTutorialGui,
		level:      3,
		installers: []installer{dropVoid(host.BirdTutorialMeasure)},
	}
}

// Catalog returns a fresh instance of every optimization, in declaration order.
func Catalog() []Optimization {
	return []Optimization{
		NewSlowDownAudioUpdate(),
		NewSlowDownAutoSplitterUpdate(),
		NewSlowDownPollEvents(),
		NewSlowDownDiscordSDK(),
		NewSlowDownMInputUpdate(),
		NewLessenBackdropUpdates(),
		NewLessenAnimatedTilesUpdate(),
		NewLessenParticles(),
		NewLessenFrameworkDispatcherUpdates(),
		NewSlowDownCrystalSpinnerHue(),
		NewSlowDownMeasureBirdTutorialGui(),
		NewOptimizeAudioPosition(),
	}
}
