// Package engine decouples a game's simulation rate from its presentation
// rate at runtime and guards the host's expensive subsystems so they only run
// on steps whose results reach the screen.
//
// # Reading Guide
//
// Start with these files to understand the per-step decision and its uses:
//   - tick/classifier.go: presented versus fast steps, the uncapped toggle and
//     the presented-tick listeners
//   - optimize/optimization.go: what an optimization unit is and the drop
//     strategy most units share
//   - optimize/scheduler.go: how the active set follows the level and the
//     pure-only flag
//
// # Architecture
//
// The engine package wires the pieces together in Module; implementations
// live in sub-packages:
//   - engine/patch/: interceptable functions and rewritable routines
//   - engine/host/: the patchable surface of the host application
//   - engine/tick/: the tick classifier and its host hooks
//   - engine/optimize/: the unit catalog and the scheduler
//   - engine/osd/: the performance overlay text
//   - engine/settings/: persisted configuration
//   - engine/metrics/: Prometheus instrumentation
//
// Everything runs on the goroutine that drives the host loop. Nothing here
// locks.
package engine
