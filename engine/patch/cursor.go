package patch

import (
	"fmt"
	"slices"
)

// MoveType says where GotoNext leaves the cursor relative to a match.
type MoveType int

const (
	Before MoveType = iota // on the first matched instruction
	After                  // just past the last matched instruction
)

// Matcher tests a single instruction.
type Matcher func(Instr) bool

func MatchCall(name string) Matcher {
	return func(in Instr) bool { return in.Op == OpCall && in.Operand == name }
}

func MatchLoad(name string) Matcher {
	return func(in Instr) bool { return in.Op == OpLoad && in.Operand == name }
}

func MatchInvoke(name string) Matcher {
	return func(in Instr) bool { return in.Op == OpInvoke && in.Operand == name }
}

// Cursor is an insertion point into a routine being recompiled.
// Inserting through one cursor shifts the code under any cursor positioned
// after it, so emit from the rightmost cursor first.
type Cursor struct {
	routine *Routine
	code    *[]Instr
	index   int
}

func (c *Cursor) Index() int { return c.index }

func (c *Cursor) Clone() *Cursor {
	cc := *c
	return &cc
}

// GotoNext moves to the first run of instructions at or after the cursor
// that satisfies seq in order. It reports whether a match was found and does
// not move otherwise.
func (c *Cursor) GotoNext(move MoveType, seq ...Matcher) bool {
	code := *c.code
	for i := c.index; i+len(seq) <= len(code); i++ {
		if matchAt(code, i, seq) {
			if move == Before {
				c.index = i
			} else {
				c.index = i + len(seq)
			}
			return true
		}
	}
	return false
}

// Seek is GotoNext with a not-found error naming what was looked for.
func (c *Cursor) Seek(what string, move MoveType, seq ...Matcher) error {
	if !c.GotoNext(move, seq...) {
		return fmt.Errorf("%w: %s in %s", ErrPatternNotFound, what, c.routine.name)
	}
	return nil
}

func matchAt(code []Instr, i int, seq []Matcher) bool {
	for j, m := range seq {
		if !m(code[i+j]) {
			return false
		}
	}
	return true
}

// Emit inserts in at the cursor and moves past it.
func (c *Cursor) Emit(in Instr) {
	*c.code = slices.Insert(*c.code, c.index, in)
	c.index++
}

// EmitBranchFalse inserts a branch to target taken when cond reports false.
func (c *Cursor) EmitBranchFalse(cond func() bool, target Label) {
	c.Emit(Instr{Op: OpBranchFalse, Cond: cond, Label: target})
}

// MarkLabel defines a new label at the cursor.
func (c *Cursor) MarkLabel() Label {
	l := c.routine.labels
	c.routine.labels++
	c.Emit(Instr{Op: OpLabel, Label: l})
	return l
}
