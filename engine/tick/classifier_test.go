package tick

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wartori54/Hydrogen/engine/host"
	"github.com/Wartori54/Hydrogen/engine/internal/testutil"
	"github.com/Wartori54/Hydrogen/engine/patch"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

type fakeHost struct {
	target time.Duration
	fixed  bool
}

func (h *fakeHost) TargetElapsedTime() time.Duration { return h.target }
func (h *fakeHost) SetFixedTimeStep(fixed bool)      { h.fixed = fixed }

func newTestClassifier(uncapped bool) (*Classifier, *fakeHost, *testutil.Stopwatch, *testutil.Toggle) {
	h := &fakeHost{target: host.DefaultTargetElapsedTime, fixed: true}
	sw := &testutil.Stopwatch{}
	tg := &testutil.Toggle{}
	c := NewClassifier(h, Config{Stopwatch: sw, Toggle: tg, Uncapped: uncapped})
	return c, h, sw, tg
}

func gameTime(elapsed time.Duration) host.GameTime {
	return host.GameTime{Elapsed: elapsed}
}

func TestStep_CappedModePresentsEveryStep(t *testing.T) {
	// GIVEN a classifier in capped mode with a listener
	c, h, sw, _ := newTestClassifier(false)
	fired := 0
	c.Subscribe(func() { fired++ })

	// WHEN ten steps run with a timer far below the frame interval
	for i := 0; i < 10; i++ {
		sw.Advance(time.Millisecond)
		c.Step(gameTime(time.Millisecond), func(host.GameTime) {
			assert.True(t, c.IsPresented(), "step %d must be presented while capped", i)
		})
	}

	// THEN every step was presented with one tick per frame
	assert.Equal(t, 10, fired)
	assert.Equal(t, 1, c.TicksPerPresentedFrame())
	assert.True(t, h.fixed, "capped mode keeps the host on a fixed timestep")
}

func TestStep_UncappedFirstPresentedStepIsCeilOfFrameOverStep(t *testing.T) {
	frame := host.DefaultTargetElapsedTime
	tests := []struct {
		name string
		step time.Duration
	}{
		{"1ms", time.Millisecond},
		{"4ms", 4 * time.Millisecond},
		{"5ms", 5 * time.Millisecond},
		{"exact frame", frame},
		{"slower than frame", 2 * frame},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN an uncapped classifier whose timer advances by the step interval
			c, _, sw, _ := newTestClassifier(true)
			want := int(math.Ceil(float64(frame) / float64(tc.step)))

			// WHEN steps run until the first presented one
			first := 0
			for i := 1; i <= 1000 && first == 0; i++ {
				sw.Advance(tc.step)
				c.Step(gameTime(tc.step), func(host.GameTime) {})
				if c.IsPresented() {
					first = i
				}
			}

			// THEN presentation is purely timer-driven
			assert.Equal(t, want, first)
			assert.Equal(t, want, c.TicksPerPresentedFrame())
			assert.Equal(t, 1, sw.Restarts)
		})
	}
}

func TestStep_UncappedOverridesElapsedWithNominalTimestep(t *testing.T) {
	c, h, _, _ := newTestClassifier(true)
	var seen time.Duration

	c.Step(host.GameTime{Total: time.Second, Elapsed: 2 * time.Millisecond}, func(gt host.GameTime) {
		seen = gt.Elapsed
		assert.Equal(t, time.Second, gt.Total)
	})

	assert.Equal(t, h.target, seen)
	assert.False(t, h.fixed, "uncapped mode releases the fixed timestep")
	assert.Equal(t, 2*time.Millisecond, c.LastTickDuration(), "diagnostics keep the reported elapsed time")
}

func TestStep_CappedPassesElapsedUnchanged(t *testing.T) {
	c, _, _, _ := newTestClassifier(false)
	var seen time.Duration

	c.Step(gameTime(3*time.Millisecond), func(gt host.GameTime) { seen = gt.Elapsed })

	assert.Equal(t, 3*time.Millisecond, seen)
}

func TestStep_ToggleAppliesOnTheVeryNextStep(t *testing.T) {
	// GIVEN a capped classifier whose toggle fires during step 2
	c, _, _, tg := newTestClassifier(false)
	var toggled []bool
	c.onToggle = func(u bool) { toggled = append(toggled, u) }

	var seen []time.Duration
	body := func(gt host.GameTime) { seen = append(seen, gt.Elapsed) }

	// WHEN three steps run
	c.Step(gameTime(time.Millisecond), body)
	tg.Next = true
	c.Step(gameTime(time.Millisecond), body)
	c.Step(gameTime(time.Millisecond), body)

	// THEN step 2 is still capped and step 3 already gets the override
	target := host.DefaultTargetElapsedTime
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond, target}, seen)
	assert.True(t, c.Uncapped())
	assert.Equal(t, []bool{true}, toggled)
}

func TestStep_ClassificationStableDuringStep(t *testing.T) {
	c, _, sw, _ := newTestClassifier(true)
	for i := 0; i < 20; i++ {
		sw.Advance(3 * time.Millisecond)
		var during bool
		c.Step(gameTime(3*time.Millisecond), func(host.GameTime) { during = c.IsPresented() })
		assert.Equal(t, during, c.IsPresented())
	}
}

func TestStep_FastTicksResetOnPresentedStep(t *testing.T) {
	c, _, sw, _ := newTestClassifier(true)
	for i := 0; i < 3; i++ {
		c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	}
	assert.Equal(t, 3, c.Stats().FastTicks)
	assert.False(t, c.IsPresented())

	sw.Advance(host.DefaultTargetElapsedTime)
	c.Step(gameTime(time.Millisecond), func(host.GameTime) {})

	s := c.Stats()
	assert.True(t, s.Presented)
	assert.Equal(t, 0, s.FastTicks)
	assert.Equal(t, 4, s.TicksPerPresentedFrame)
	assert.Equal(t, uint64(4), s.Steps)
}

func TestSubscribe_ListenersRunInRegistrationOrder(t *testing.T) {
	c, _, _, _ := newTestClassifier(false)
	var order []string
	c.Subscribe(func() { order = append(order, "a") })
	b := c.Subscribe(func() { order = append(order, "b") })
	c.Subscribe(func() { order = append(order, "c") })

	c.Step(gameTime(time.Millisecond), func(host.GameTime) {
		assert.Empty(t, order, "listeners run after the step body")
	})
	assert.Equal(t, []string{"a", "b", "c"}, order)

	order = nil
	c.Unsubscribe(b)
	c.Unsubscribe(b)
	c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestSubscribe_UnsubscribeDuringDispatch(t *testing.T) {
	c, _, _, _ := newTestClassifier(false)
	calls := 0
	var self Subscription
	self = c.Subscribe(func() {
		calls++
		c.Unsubscribe(self)
	})
	after := 0
	c.Subscribe(func() { after++ })

	c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	c.Step(gameTime(time.Millisecond), func(host.GameTime) {})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, after)
}

func TestSubscribe_ReentrantStepPanics(t *testing.T) {
	c, _, _, _ := newTestClassifier(false)
	c.Subscribe(func() {
		c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	})

	assert.Panics(t, func() {
		c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	})
}

func TestBeginDraw_SkipsCompositionOnFastSteps(t *testing.T) {
	c, _, sw, _ := newTestClassifier(true)
	composed := 0
	begin := func() bool { composed++; return true }

	c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	assert.False(t, c.BeginDraw(begin))
	assert.Equal(t, 0, composed)

	sw.Advance(host.DefaultTargetElapsedTime)
	c.Step(gameTime(time.Millisecond), func(host.GameTime) {})
	assert.True(t, c.BeginDraw(begin))
	assert.Equal(t, 1, composed)
}

func TestInstall_DrivesHostGame(t *testing.T) {
	// GIVEN a host game with the classifier installed in uncapped mode
	g := host.New()
	sw := &testutil.Stopwatch{}
	c := NewClassifier(g, Config{Stopwatch: sw, Uncapped: true})
	hook, err := c.Install(g.Points)
	require.NoError(t, err)

	// WHEN 40 steps run 2ms apart
	for i := 0; i < 40; i++ {
		sw.Advance(2 * time.Millisecond)
		g.Tick(2 * time.Millisecond)
	}

	// THEN every step ran but only one in nine was composed
	assert.Equal(t, 40, g.Steps())
	assert.Equal(t, 4, g.Draws())
	assert.Equal(t, 4, g.Calls(host.GameBeginDraw))
	assert.False(t, g.IsFixedTimeStep())

	// AND disposing restores the host's own behavior
	hook.Dispose()
	g.SetFixedTimeStep(true)
	g.Tick(2 * time.Millisecond)
	assert.Equal(t, 5, g.Draws())
}

func TestInstall_MissingTargetFails(t *testing.T) {
	r := patch.NewRegistry()
	patch.Register(r, host.GameUpdate, func(host.GameTime) patch.Void { return patch.Void{} })
	c, _, _, _ := newTestClassifier(false)

	hook, err := c.Install(r)

	assert.Nil(t, hook)
	assert.ErrorIs(t, err, patch.ErrTargetNotFound)
	p, lerr := patch.Lookup[host.GameTime, patch.Void](r, host.GameUpdate)
	require.NoError(t, lerr)
	assert.Equal(t, 0, p.Detours(), "partial install must be rolled back")
}
