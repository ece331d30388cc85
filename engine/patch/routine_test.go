package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickBody() []Instr {
	return []Instr{
		{Op: OpLoad, Operand: "Platform.PollEvents"},
		{Op: OpInvoke, Operand: "PollEventsFunc.Invoke"},
		{Op: OpCall, Operand: "Game.Update"},
		{Op: OpCall, Operand: "Game.Draw"},
	}
}

// skipPoll wraps the poll-events invoke in a branch guarded by cond.
func skipPoll(cond func() bool) Manipulator {
	return func(c *Cursor) error {
		if err := c.Seek("poll load", Before, MatchLoad("Platform.PollEvents")); err != nil {
			return err
		}
		end := c.Clone()
		if err := end.Seek("poll invoke", After, MatchInvoke("PollEventsFunc.Invoke")); err != nil {
			return err
		}
		label := end.MarkLabel()
		c.EmitBranchFalse(cond, label)
		return nil
	}
}

func TestRoutine_RunResolvesLoadedDelegates(t *testing.T) {
	r := NewRegistry()
	rt := r.RegisterRoutine("Game.Tick", tickBody())

	var calls []string
	rt.Run(func(name string) { calls = append(calls, name) })

	assert.Equal(t, []string{"Platform.PollEvents", "Game.Update", "Game.Draw"}, calls)
}

func TestRoutine_ManipulateInsertsConditionalBranch(t *testing.T) {
	// GIVEN the tick routine with a rewrite guarding the poll call
	r := NewRegistry()
	rt := r.RegisterRoutine("Game.Tick", tickBody())
	enabled := false
	_, err := rt.Manipulate(skipPoll(func() bool { return enabled }))
	require.NoError(t, err)

	// WHEN the guard is false
	var calls []string
	rt.Run(func(name string) { calls = append(calls, name) })

	// THEN only the poll call is skipped
	assert.Equal(t, []string{"Game.Update", "Game.Draw"}, calls)

	// AND when the guard is true it runs again
	enabled = true
	calls = nil
	rt.Run(func(name string) { calls = append(calls, name) })
	assert.Equal(t, []string{"Platform.PollEvents", "Game.Update", "Game.Draw"}, calls)

	code := rt.Instrs()
	require.Len(t, code, 6)
	assert.Equal(t, OpBranchFalse, code[0].Op)
	assert.Equal(t, OpLabel, code[3].Op)
	assert.Equal(t, code[0].Label, code[3].Label)
}

func TestRoutine_DisposeRestoresPristineBody(t *testing.T) {
	r := NewRegistry()
	rt := r.RegisterRoutine("Game.Tick", tickBody())
	h, err := rt.Manipulate(skipPoll(func() bool { return false }))
	require.NoError(t, err)

	h.Dispose()
	h.Dispose()

	assert.Equal(t, tickBody()[0].Operand, rt.Instrs()[0].Operand)
	assert.Len(t, rt.Instrs(), 4)
}

func TestRoutine_PatternNotFoundLeavesRoutineUntouched(t *testing.T) {
	r := NewRegistry()
	rt := r.RegisterRoutine("Game.Tick", []Instr{
		{Op: OpCall, Operand: "Game.Update"},
	})

	h, err := rt.Manipulate(skipPoll(func() bool { return false }))

	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrPatternNotFound)
	assert.Contains(t, err.Error(), "Game.Tick")
	assert.Len(t, rt.Instrs(), 1)
}

func TestRoutine_TwoRewritesGetDistinctLabels(t *testing.T) {
	r := NewRegistry()
	rt := r.RegisterRoutine("Game.Tick", tickBody())
	_, err := rt.Manipulate(skipPoll(func() bool { return true }))
	require.NoError(t, err)
	_, err = rt.Manipulate(func(c *Cursor) error {
		if err := c.Seek("draw", Before, MatchCall("Game.Draw")); err != nil {
			return err
		}
		end := c.Clone()
		end.GotoNext(After, MatchCall("Game.Draw"))
		c.EmitBranchFalse(func() bool { return false }, end.MarkLabel())
		return nil
	})
	require.NoError(t, err)

	var calls []string
	rt.Run(func(name string) { calls = append(calls, name) })
	assert.Equal(t, []string{"Platform.PollEvents", "Game.Update"}, calls)

	var labels []Label
	for _, in := range rt.Instrs() {
		if in.Op == OpLabel {
			labels = append(labels, in.Label)
		}
	}
	assert.Equal(t, []Label{0, 1}, labels)
}

func TestRegistry_UnknownRoutine(t *testing.T) {
	r := NewRegistry()
	_, err := r.Routine("Game.Tick")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestCursor_GotoNextDoesNotMoveOnMiss(t *testing.T) {
	r := NewRegistry()
	rt := r.RegisterRoutine("Game.Tick", tickBody())
	code := rt.Instrs()
	c := &Cursor{routine: rt, code: &code, index: 1}

	assert.False(t, c.GotoNext(Before, MatchCall("Missing")))
	assert.Equal(t, 1, c.Index())
	assert.True(t, c.GotoNext(After, MatchCall("Game.Update"), MatchCall("Game.Draw")))
	assert.Equal(t, 4, c.Index())
}

func TestInstr_String(t *testing.T) {
	assert.Equal(t, "call Game.Update", Instr{Op: OpCall, Operand: "Game.Update"}.String())
	assert.Equal(t, "brfalse L2", Instr{Op: OpBranchFalse, Label: 2}.String())
}
