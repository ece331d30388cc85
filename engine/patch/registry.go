package patch

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

var (
	// ErrTargetNotFound is returned when no function or routine has the requested name.
	ErrTargetNotFound = errors.New("patch target not found")
	// ErrSignatureMismatch is returned when a point exists but with other argument or result types.
	ErrSignatureMismatch = errors.New("patch target signature mismatch")
	// ErrPatternNotFound is returned when a routine rewrite cannot locate its instruction pattern.
	ErrPatternNotFound = errors.New("instruction pattern not found")
)

// Registry maps names to the host's patchable functions and routines.
type Registry struct {
	points   map[string]any
	routines map[string]*Routine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		points:   make(map[string]any),
		routines: make(map[string]*Routine),
	}
}

// Register exposes body under name. Registering a name twice panics.
func Register[A, R any](r *Registry, name string, body func(A) R) *Point[A, R] {
	if _, dup := r.points[name]; dup {
		panic(fmt.Sprintf("patch: point %q registered twice", name))
	}
	p := NewPoint(name, body)
	r.points[name] = p
	return p
}

// RegisterRoutine exposes an instruction stream under name. Registering a name twice panics.
func (r *Registry) RegisterRoutine(name string, body []Instr) *Routine {
	if _, dup := r.routines[name]; dup {
		panic(fmt.Sprintf("patch: routine %q registered twice", name))
	}
	rt := newRoutine(name, body)
	r.routines[name] = rt
	return rt
}

// Routine returns the named routine.
func (r *Registry) Routine(name string) (*Routine, error) {
	rt, ok := r.routines[name]
	if !ok {
		return nil, fmt.Errorf("%w: routine %q", ErrTargetNotFound, name)
	}
	return rt, nil
}

// Names lists every registered point and routine, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.points)+len(r.routines))
	for n := range r.points {
		names = append(names, n)
	}
	for n := range r.routines {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) log(format string, args ...any) {
	logrus.Debugf("[patch] "+format, args...)
}
