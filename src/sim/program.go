package sim

import (
	"fmt"

	"hifive/src/joy"
	"hifive/src/lib/upbeat"
)

// Register numbers the programs use, beyond the ones joy names.
const (
	regT1 = 6
	regS1 = 9
	regS2 = 18
	regS3 = 19
)

// Fault is a synchronous exception raised by an instruction.
type Fault struct {
	Code  uint64
	Value uint64
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s (tval 0x%x)", upbeat.ExceptionCause(f.Code), f.Value)
}

// Program stands in for the machine code of one task.  Exec runs the
// instruction at off bytes from the program's base and leaves h.PC at the
// next one.  A fault leaves h.PC alone.
type Program interface {
	Name() string
	Exec(h *Hart, off uint64) *Fault
}

// Counter is the context fidelity workload.  It keeps a counter and two
// values derived from it in registers and checks, every time around its
// loop, that nothing it did not write has changed.  Anything the trap path
// loses or mixes up between tasks shows up as a corruption.
type Counter struct {
	Magic uint64

	base       uint64
	started    bool
	id         uint64
	sp         uint64
	gp         uint64
	iterations uint64
	corrupted  uint64
	firstBad   string
}

func (c *Counter) Name() string {
	return "counter"
}

func (c *Counter) Exec(h *Hart, off uint64) *Fault {
	switch off {
	case 0:
		c.base = h.PC
		c.started = true
		c.id = h.X[joy.RegA0]
		c.sp = h.X[joy.RegSP]
		c.gp = h.X[joy.RegGP]
		h.X[regS1] = 0
		h.X[regS2] = c.Magic
		h.X[regS3] = c.Magic
		h.X[regT1] = ^uint64(0)
		h.X[joy.RegA1] = c.Magic
	case 4:
		h.X[regS1]++
		h.X[regT1] = ^h.X[regS1]
	case 8:
		h.X[regS3] = h.X[regS1]*3 + h.X[regS2]
		h.X[joy.RegA1] = h.X[regS1] ^ h.X[regS2]
	case 12:
		c.check(h)
		h.PC = c.base + 4
		return nil
	default:
		return &Fault{Code: upbeat.InstructionAccessFault, Value: h.PC}
	}
	h.PC += InstructionSize
	return nil
}

func (c *Counter) check(h *Hart) {
	n := h.X[regS1]
	switch {
	case n != c.iterations+1:
		c.fail(fmt.Sprintf("counter went from %d to %d", c.iterations, n))
	case h.X[regS2] != c.Magic:
		c.fail(fmt.Sprintf("s2 is 0x%x not 0x%x", h.X[regS2], c.Magic))
	case h.X[regS3] != n*3+c.Magic:
		c.fail(fmt.Sprintf("s3 is 0x%x at count %d", h.X[regS3], n))
	case h.X[regT1] != ^n:
		c.fail(fmt.Sprintf("t1 is 0x%x at count %d", h.X[regT1], n))
	case h.X[joy.RegA1] != n^c.Magic:
		c.fail(fmt.Sprintf("a1 is 0x%x at count %d", h.X[joy.RegA1], n))
	case h.X[joy.RegA0] != c.id:
		c.fail(fmt.Sprintf("a0 is %d, task id was %d", h.X[joy.RegA0], c.id))
	case h.X[joy.RegSP] != c.sp:
		c.fail(fmt.Sprintf("sp moved from 0x%x to 0x%x", c.sp, h.X[joy.RegSP]))
	case h.X[joy.RegGP] != c.gp:
		c.fail(fmt.Sprintf("gp moved from 0x%x to 0x%x", c.gp, h.X[joy.RegGP]))
	}
	c.iterations = n
}

func (c *Counter) fail(why string) {
	if c.corrupted == 0 {
		c.firstBad = why
	}
	c.corrupted++
}

// Iterations is how many times the loop has completed.
func (c *Counter) Iterations() uint64 {
	return c.iterations
}

// Corruptions counts failed checks.  FirstCorruption says what the first
// one saw.
func (c *Counter) Corruptions() uint64 {
	return c.corrupted
}

func (c *Counter) FirstCorruption() string {
	return c.firstBad
}

// Started is true once the task has executed its first instruction.
func (c *Counter) Started() bool {
	return c.started
}

// Returner goes around a two instruction loop Steps times and then returns
// through ra, the way a task function that finishes would.
type Returner struct {
	Steps uint64
	done  uint64
}

func (r *Returner) Name() string {
	return "returner"
}

func (r *Returner) Exec(h *Hart, off uint64) *Fault {
	switch off {
	case 0:
		r.done++
		h.PC += InstructionSize
	case 4:
		if r.done >= r.Steps {
			h.PC = h.X[joy.RegRA]
		} else {
			h.PC -= InstructionSize
		}
	default:
		return &Fault{Code: upbeat.InstructionAccessFault, Value: h.PC}
	}
	return nil
}

// Faulter spins on its first instruction Steps times and then that
// instruction turns out to be illegal.
type Faulter struct {
	Steps uint64
	done  uint64
}

func (f *Faulter) Name() string {
	return "faulter"
}

func (f *Faulter) Exec(h *Hart, off uint64) *Fault {
	if f.done >= f.Steps {
		return &Fault{Code: upbeat.IllegalInstruction, Value: 0}
	}
	f.done++
	return nil
}
