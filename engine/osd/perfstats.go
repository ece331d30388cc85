// Package osd computes the performance overlay's text: updates per second
// averaged over each presented frame, with the slowest and fastest averages
// seen while running uncapped.
package osd

import (
	"math"
	"strconv"
)

// Sentinel is shown in place of a rate that cannot be computed.
const Sentinel = "0.0"

// BaseUPS is the rate the multiplier line is relative to.
const BaseUPS = 60.0

// Source publishes the values the overlay samples.
type Source interface {
	LastTickSeconds() float64
	Uncapped() bool
}

// PerfStats is a scene entity: Update samples every step, Render closes the
// window on each drawn frame.
type PerfStats struct {
	src     Source
	enabled func() bool

	sum     float64
	count   int
	invalid bool
	// slowest and fastest window averages, in seconds per update
	max float64
	min float64

	avgText  string
	multText string
}

// NewPerfStats creates an overlay reading src. enabled is consulted on every
// call; a nil enabled means always on.
func NewPerfStats(src Source, enabled func() bool) *PerfStats {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &PerfStats{src: src, enabled: enabled, min: math.MaxFloat64}
}

func (p *PerfStats) Update() {
	if !p.enabled() {
		return
	}
	p.sum += p.src.LastTickSeconds()
	p.count++
	if !p.src.Uncapped() {
		p.invalid = true
	}
}

// Render folds the samples gathered since the last frame into the text. A
// frame with no samples keeps the previous text.
func (p *PerfStats) Render() {
	if !p.enabled() {
		return
	}
	if p.count != 0 {
		avg := p.sum / float64(p.count)
		if !p.invalid {
			if avg > p.max {
				p.max = avg
			}
			if avg < p.min {
				p.min = avg
			}
		}
		p.avgText = rate(avg, 1) + " UPS " + rate(p.max, 1) + " / " + rate(p.min, 1)
		p.multText = "x" + rate(avg, BaseUPS) + " " + rate(p.max, BaseUPS) + " / " + rate(p.min, BaseUPS)
	}
	p.count = 0
	p.sum = 0
	p.invalid = false
}

// Lines returns the two overlay lines.
func (p *PerfStats) Lines() (string, string) {
	avg, mult := p.avgText, p.multText
	if avg == "" {
		avg = Sentinel
	}
	if mult == "" {
		mult = Sentinel
	}
	return avg, mult
}

// Reset forgets the recorded extremes.
func (p *PerfStats) Reset() {
	p.max = 0
	p.min = math.MaxFloat64
}

// UpdatesPerSecond converts seconds per update into a rate. ok is false when
// the duration is zero, negative, unset or not finite.
func UpdatesPerSecond(secondsPerUpdate float64) (ups float64, ok bool) {
	if secondsPerUpdate <= 0 || secondsPerUpdate == math.MaxFloat64 ||
		math.IsNaN(secondsPerUpdate) || math.IsInf(secondsPerUpdate, 0) {
		return 0, false
	}
	return 1 / secondsPerUpdate, true
}

func rate(secondsPerUpdate, per float64) string {
	ups, ok := UpdatesPerSecond(secondsPerUpdate)
	if !ok {
		return Sentinel
	}
	return strconv.FormatFloat(ups/per, 'f', 2, 64)
}
