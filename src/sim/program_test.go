package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hifive/src/joy"
	"hifive/src/lib/upbeat"
)

func runProgram(h *Hart, p Program, base uint64, n int) *Fault {
	for i := 0; i < n; i++ {
		if f := p.Exec(h, h.PC-base); f != nil {
			return f
		}
	}
	return nil
}

func TestCounterNoticesLostRegisters(t *testing.T) {
	const base = ProgramBase
	h := &Hart{PC: base}
	h.X[joy.RegA0] = 3
	h.X[joy.RegSP] = 0x9000
	c := &Counter{Magic: 0xabc}
	require.Nil(t, runProgram(h, c, base, 1+3*10))
	assert.Equal(t, uint64(10), c.Iterations())
	assert.Zero(t, c.Corruptions())

	h.X[regS2] = 0
	require.Nil(t, runProgram(h, c, base, 3))
	assert.Equal(t, uint64(1), c.Corruptions())
	assert.Contains(t, c.FirstCorruption(), "s2")

	h.X[regS2] = c.Magic
	h.X[joy.RegSP] = 0x8000
	require.Nil(t, runProgram(h, c, base, 3))
	assert.Equal(t, uint64(2), c.Corruptions())
	assert.Contains(t, c.FirstCorruption(), "s2", "first corruption is kept")
}

func TestReturnerJumpsToRA(t *testing.T) {
	h := &Hart{PC: ProgramBase}
	h.X[joy.RegRA] = ExitPC
	r := &Returner{Steps: 2}
	require.Nil(t, runProgram(h, r, ProgramBase, 4))
	assert.Equal(t, ExitPC, h.PC)
}

func TestFaulterFaults(t *testing.T) {
	h := &Hart{PC: ProgramBase}
	f := runProgram(h, &Faulter{Steps: 2}, ProgramBase, 10)
	require.NotNil(t, f)
	assert.Equal(t, uint64(upbeat.IllegalInstruction), f.Code)
	assert.Equal(t, ProgramBase, h.PC)
	assert.Contains(t, f.Error(), "illegal instruction")
}
