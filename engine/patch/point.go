// Package patch provides the two patch-installation capabilities the engine
// needs from its host: intercepting named functions (Point / Detour) and
// rewriting a named routine's instruction stream (Routine / Cursor).
//
// Both capabilities fail at installation time when the target cannot be
// found. Nothing in this package defers that error to call time.
package patch

import (
	"fmt"
	"slices"
	"strings"
)

// Void is the argument or result type of targets that take or return nothing.
type Void = struct{}

// Hook is an installed patch. Dispose removes it and is safe to call twice.
type Hook interface {
	Target() string
	Dispose()
}

// Group disposes several hooks as one.
type Group []Hook

// Target returns the comma-joined targets of the grouped hooks.
func (g Group) Target() string {
	names := make([]string, 0, len(g))
	for _, h := range g {
		names = append(names, h.Target())
	}
	return strings.Join(names, ",")
}

// Dispose removes hooks in reverse installation order.
func (g Group) Dispose() {
	for i := len(g) - 1; i >= 0; i-- {
		g[i].Dispose()
	}
}

// Interceptor replaces a target's body. orig runs the next detour down the
// chain, or the target's own body when this is the innermost detour.
type Interceptor[A, R any] func(orig func(A) R, args A) R

// Point is a named host function whose calls can be intercepted.
// Detours run outermost-last-installed, like a stack.
type Point[A, R any] struct {
	name    string
	body    func(A) R
	detours []*Detour[A, R]
}

// NewPoint wraps body as an interceptable function.
func NewPoint[A, R any](name string, body func(A) R) *Point[A, R] {
	return &Point[A, R]{name: name, body: body}
}

func (p *Point[A, R]) Name() string { return p.name }

// Call invokes the function through every installed detour.
func (p *Point[A, R]) Call(args A) R {
	return p.invoke(len(p.detours)-1, args)
}

// Detours reports how many detours are installed.
func (p *Point[A, R]) Detours() int { return len(p.detours) }

func (p *Point[A, R]) invoke(i int, args A) R {
	if i < 0 {
		return p.body(args)
	}
	d := p.detours[i]
	return d.fn(func(a A) R { return p.invoke(i-1, a) }, args)
}

func (p *Point[A, R]) intercept(fn Interceptor[A, R]) *Detour[A, R] {
	d := &Detour[A, R]{point: p, fn: fn}
	p.detours = append(p.detours, d)
	return d
}

// Detour is one installed interceptor on a Point.
type Detour[A, R any] struct {
	point    *Point[A, R]
	fn       Interceptor[A, R]
	disposed bool
}

func (d *Detour[A, R]) Target() string { return d.point.name }

// Proceed calls the chain below this detour, bypassing it. Once disposed it
// calls the whole chain, which no longer contains d.
func (d *Detour[A, R]) Proceed(args A) R {
	i := slices.Index(d.point.detours, d)
	if i < 0 {
		return d.point.Call(args)
	}
	return d.point.invoke(i-1, args)
}

func (d *Detour[A, R]) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.point.detours = slices.DeleteFunc(d.point.detours, func(o *Detour[A, R]) bool { return o == d })
}

// Intercept installs fn on the named point of r.
func Intercept[A, R any](r *Registry, name string, fn Interceptor[A, R]) (*Detour[A, R], error) {
	p, err := Lookup[A, R](r, name)
	if err != nil {
		return nil, err
	}
	d := p.intercept(fn)
	r.log("detour installed on %s (%d active)", name, len(p.detours))
	return d, nil
}

// Lookup returns the named point, typed.
func Lookup[A, R any](r *Registry, name string) (*Point[A, R], error) {
	raw, ok := r.points[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, name)
	}
	p, ok := raw.(*Point[A, R])
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrSignatureMismatch, name, raw)
	}
	return p, nil
}
