package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Wartori54/Hydrogen/engine"
	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/metrics"
	"github.com/Wartori54/Hydrogen/engine/settings"
)

var (
	// Settings overrides, applied only when given
	level    int    // Optimization level, -1 disables every unit
	onlyPure bool   // Restrict to units that change only timing
	uncapped bool   // Start in uncapped mode
	osdOn    bool   // Enable the performance overlay
	toggle   string // Key bound to the uncapped toggle

	// Loop
	steps       int           // Steps to run
	duration    time.Duration // Wall-clock limit, 0 for none
	stepTime    time.Duration // Simulated step duration, 0 runs on the wall clock
	toggleEvery int           // Press the toggle key every N steps, 0 never
	metricsAddr string        // Serve Prometheus metrics on this address while running
	save        bool          // Write the final settings back to --config
)

// runCmd boots the emulated host, installs the engine and drives the loop
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the host loop with the engine installed",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := settings.Load(settingsPath)
		if err != nil {
			logrus.Fatalf("Failed to load settings: %v", err)
		}
		if err := applyOverrides(cmd, s); err != nil {
			logrus.Fatalf("Invalid flag: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}
		if metricsAddr != "" {
			go func() {
				if err := serveMetrics(ctx, metricsAddr); err != nil {
					logrus.Errorf("Metrics server: %v", err)
				}
			}()
		}

		opts := loopOptions{steps: steps, stepTime: stepTime, toggleEvery: toggleEvery}
		if err := runLoop(ctx, s, opts, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}

		if save {
			if err := s.Save(settingsPath); err != nil {
				logrus.Fatalf("Failed to save settings: %v", err)
			}
			logrus.Infof("Settings saved to %s", settingsPath)
		}
	},
}

// applyOverrides copies flags the user set onto s. Unset flags leave the
// file's values alone.
func applyOverrides(cmd *cobra.Command, s *settings.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("level") {
		s.OptimizationLevel = level
	}
	if flags.Changed("only-pure") {
		s.OnlyPure = onlyPure
	}
	if flags.Changed("uncapped") {
		s.UncappedSpeed = uncapped
	}
	if flags.Changed("osd") {
		s.EnableOSD = osdOn
	}
	if flags.Changed("toggle-key") {
		s.ToggleSpeed = toggle
	}
	if steps < 0 || toggleEvery < 0 {
		return fmt.Errorf("--steps and --toggle-every must not be negative")
	}
	return nil
}

type loopOptions struct {
	steps       int
	stepTime    time.Duration
	toggleEvery int
}

// simClock is a stopwatch advanced by the simulated loop.
type simClock struct {
	elapsed time.Duration
}

func (c *simClock) Elapsed() time.Duration { return c.elapsed }
func (c *simClock) Restart()               { c.elapsed = 0 }

// togglePresser presses the toggle key on every nth step, as a player would.
type togglePresser struct {
	kb    *host.Keyboard
	key   host.Key
	every int
	n     int
}

func (p *togglePresser) Update() {
	p.n++
	if p.n%p.every == 0 {
		p.kb.Press(p.key)
	}
}

func (p *togglePresser) Render() {}

// runLoop installs the engine on a fresh game, runs it and writes a summary
// to out. With a step time the loop is simulated and deterministic;
// otherwise the game paces itself on the wall clock until ctx ends.
func runLoop(ctx context.Context, s *settings.Settings, opts loopOptions, out io.Writer) error {
	g := host.New()
	var clock *simClock
	var engineOpts engine.Options
	if opts.stepTime > 0 {
		clock = &simClock{}
		engineOpts.Stopwatch = clock
	}
	m, err := engine.New(g, s, engineOpts)
	if err != nil {
		return err
	}
	if err := m.Load(); err != nil {
		return fmt.Errorf("loading engine: %w", err)
	}
	defer m.Unload()

	if opts.toggleEvery > 0 {
		key, _ := s.ToggleKey()
		g.Add(&togglePresser{kb: g.Keyboard, key: key, every: opts.toggleEvery})
	}

	start := time.Now()
	if clock != nil {
		for i := 0; i < opts.steps && ctx.Err() == nil; i++ {
			clock.elapsed += opts.stepTime
			g.Tick(opts.stepTime)
		}
	} else if err := g.Run(ctx, opts.steps); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	logrus.Infof("Ran %d steps in %v", g.Steps(), time.Since(start))

	printSummary(out, m)
	return nil
}

// measured lists the subsystems reported in the summary.
var measured = []string{
	host.PollEventsField,
	host.FrameworkDispatcherUpdate,
	host.AudioUpdate,
	host.AudioPlay,
	host.AudioPosition,
	host.AutoSplitterUpdate,
	host.DiscordSDKUpdate,
	host.MouseDataUpdate,
	host.BackdropRendererUpdate,
	host.AnimatedTilesUpdate,
	host.ParticleSystemUpdate,
	host.ParticleSystemEmit,
	host.SpinnerUpdateHue,
	host.BirdTutorialMeasure,
}

func printSummary(out io.Writer, m *engine.Module) {
	g := m.Game
	fmt.Fprintf(out, "=== Hydrogen Run ===\n")
	fmt.Fprintf(out, "steps: %d  drawn: %d  uncapped: %v\n", g.Steps(), g.Draws(), m.Ticks.Uncapped())
	fmt.Fprintf(out, "level: %d  only pure: %v  ticks per frame: %d\n",
		m.Scheduler.Level(), m.Scheduler.OnlyPure(), m.Ticks.TicksPerPresentedFrame())

	var active []string
	for _, o := range m.Scheduler.Active() {
		active = append(active, o.Name())
	}
	sort.Strings(active)
	fmt.Fprintf(out, "active (%d): %v\n", len(active), active)

	fmt.Fprintf(out, "subsystem calls:\n")
	for _, name := range measured {
		fmt.Fprintf(out, "  %-36s %d\n", name, g.Calls(name))
	}
	if m.Settings.EnableOSD {
		avg, mult := m.OSD.Lines()
		fmt.Fprintf(out, "osd: %s | %s\n", avg, mult)
	}
}

// serveMetrics serves the Prometheus endpoint until ctx ends.
func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logrus.Warnf("Metrics server shutdown: %v", err)
		}
	}()

	logrus.Infof("Serving metrics on %s/metrics", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func init() {
	runCmd.Flags().IntVar(&level, "level", -1, "Optimization level (-1 disables every unit)")
	runCmd.Flags().BoolVar(&onlyPure, "only-pure", true, "Only load units that change nothing but timing")
	runCmd.Flags().BoolVar(&uncapped, "uncapped", false, "Start in uncapped mode")
	runCmd.Flags().BoolVar(&osdOn, "osd", false, "Enable the performance overlay")
	runCmd.Flags().StringVar(&toggle, "toggle-key", string(host.KeyRightControl), "Key bound to the uncapped toggle")

	runCmd.Flags().IntVar(&steps, "steps", 600, "Number of steps to run")
	runCmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this much wall time (0 for no limit)")
	runCmd.Flags().DurationVar(&stepTime, "step-time", 0, "Simulate steps of this duration instead of using the wall clock")
	runCmd.Flags().IntVar(&toggleEvery, "toggle-every", 0, "Press the toggle key every N steps (0 never)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	runCmd.Flags().BoolVar(&save, "save", false, "Save the resulting settings to --config")
}
