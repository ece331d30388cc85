package patch

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// OpCode is the operation of one routine instruction.
type OpCode uint8

const (
	OpNop         OpCode = iota
	OpCall               // call Operand directly
	OpLoad               // push the delegate named by Operand
	OpInvoke             // pop a delegate and call it; Operand names the invoke site
	OpBranchFalse        // jump past Label when Cond reports false
	OpLabel              // branch target
)

var opNames = [...]string{"nop", "call", "ldfld", "callvirt", "brfalse", "label"}

func (o OpCode) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

// Label identifies a branch target within one compiled routine.
type Label int

// Instr is a single routine instruction.
type Instr struct {
	Op      OpCode
	Operand string
	Cond    func() bool
	Label   Label
}

func (in Instr) String() string {
	switch in.Op {
	case OpBranchFalse, OpLabel:
		return fmt.Sprintf("%s L%d", in.Op, in.Label)
	case OpNop:
		return in.Op.String()
	default:
		return fmt.Sprintf("%s %s", in.Op, in.Operand)
	}
}

// Manipulator rewrites a routine through a cursor positioned at its first instruction.
type Manipulator func(c *Cursor) error

// Routine is a host routine kept as its pristine body plus the manipulators
// applied to it. The executed code is recompiled whenever that set changes.
type Routine struct {
	name     string
	body     []Instr
	manips   []*manipulation
	compiled []Instr
	targets  map[Label]int
	labels   Label
}

func newRoutine(name string, body []Instr) *Routine {
	r := &Routine{name: name, body: slices.Clone(body)}
	if err := r.recompile(); err != nil {
		panic(fmt.Sprintf("patch: routine %q: %v", name, err))
	}
	return r
}

func (r *Routine) Name() string { return r.name }

// Instrs returns a copy of the code that Run executes.
func (r *Routine) Instrs() []Instr { return slices.Clone(r.compiled) }

// Manipulate applies m and keeps it applied until the returned hook is disposed.
// If m fails the routine is left exactly as it was.
func (r *Routine) Manipulate(m Manipulator) (Hook, error) {
	mp := &manipulation{routine: r, fn: m}
	r.manips = append(r.manips, mp)
	if err := r.recompile(); err != nil {
		r.manips = r.manips[:len(r.manips)-1]
		if rerr := r.recompile(); rerr != nil {
			logrus.Errorf("[patch] restoring %s after failed rewrite: %v", r.name, rerr)
		}
		return nil, fmt.Errorf("rewriting %s: %w", r.name, err)
	}
	logrus.Debugf("[patch] routine %s rewritten (%d manipulators)", r.name, len(r.manips))
	return mp, nil
}

func (r *Routine) recompile() error {
	code := slices.Clone(r.body)
	r.labels = 0
	for _, in := range code {
		if in.Op == OpLabel && in.Label >= r.labels {
			r.labels = in.Label + 1
		}
	}
	for _, m := range r.manips {
		c := &Cursor{routine: r, code: &code}
		if err := m.fn(c); err != nil {
			return err
		}
	}
	targets := make(map[Label]int)
	for i, in := range code {
		if in.Op == OpLabel {
			targets[in.Label] = i
		}
	}
	for _, in := range code {
		if in.Op != OpBranchFalse {
			continue
		}
		if _, ok := targets[in.Label]; !ok {
			return fmt.Errorf("branch to undefined label L%d", in.Label)
		}
	}
	r.compiled = code
	r.targets = targets
	return nil
}

// Run executes the compiled routine, resolving every call and invoke through call.
func (r *Routine) Run(call func(name string)) {
	code := r.compiled
	var stack []string
	for pc := 0; pc < len(code); pc++ {
		in := code[pc]
		switch in.Op {
		case OpCall:
			call(in.Operand)
		case OpLoad:
			stack = append(stack, in.Operand)
		case OpInvoke:
			fn := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			call(fn)
		case OpBranchFalse:
			if !in.Cond() {
				pc = r.targets[in.Label]
			}
		}
	}
}

type manipulation struct {
	routine  *Routine
	fn       Manipulator
	disposed bool
}

func (m *manipulation) Target() string { return m.routine.name }

func (m *manipulation) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	r := m.routine
	r.manips = slices.DeleteFunc(r.manips, func(o *manipulation) bool { return o == m })
	if err := r.recompile(); err != nil {
		logrus.Errorf("[patch] recompiling %s after removing a rewrite: %v", r.name, err)
	}
}
