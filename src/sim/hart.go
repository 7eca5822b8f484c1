package sim

import (
	"hifive/src/joy"
	"hifive/src/lib/upbeat"
)

// Where things live in the simulated address space.  Nothing is fetched
// from these addresses, they only name regions of the program table.
const (
	TrapVector      uint64 = 0x8000_0100
	IdlePC          uint64 = 0x8000_0200
	ExitPC          uint64 = 0x8000_0300
	GlobalPointer   uint64 = 0x8010_0800
	ProgramBase     uint64 = 0x8001_0000
	ProgramStride   uint64 = 0x1000
	InstructionSize uint64 = 4
)

// Hart is one RV64 hart in machine mode: the integer registers, the pc and
// the CSRs the kernel touches.  mscratch holds a context pointer instead of
// an address because nothing here does pointer arithmetic on it.
type Hart struct {
	X       [32]uint64
	PC      uint64
	MStatus uint64
	MIE     uint64
	MTVec   uint64
	MEPC    uint64
	MCause  uint64
	MTVal   uint64
	Scratch *joy.RegisterSavedState
}

// InterruptsEnabled is mstatus.MIE.
func (h *Hart) InterruptsEnabled() bool {
	return h.MStatus&upbeat.MStatusMIE != 0
}

// TimerEnabled is mie.MTIE.
func (h *Hart) TimerEnabled() bool {
	return h.MIE&upbeat.MIEMTIE != 0
}

// enterTrap is what the hardware does on a trap: latch pc, cause and tval,
// stack MIE into MPIE, record the previous mode and jump to mtvec.
func (h *Hart) enterTrap(cause, tval uint64) {
	h.MEPC = h.PC
	h.MCause = cause
	h.MTVal = tval
	mie := h.MStatus & upbeat.MStatusMIE
	h.MStatus &^= upbeat.MStatusMIE | upbeat.MStatusMPIE | upbeat.MStatusMPPMask
	if mie != 0 {
		h.MStatus |= upbeat.MStatusMPIE
	}
	h.MStatus |= upbeat.MStatusMPPM
	h.PC = h.MTVec &^ upbeat.MTVecModeMask
}

// mret pops the interrupt enable stack and returns to mepc.  There is no
// user mode on this part, so MPP stays M.
func (h *Hart) mret() {
	if h.MStatus&upbeat.MStatusMPIE != 0 {
		h.MStatus |= upbeat.MStatusMIE
	} else {
		h.MStatus &^= upbeat.MStatusMIE
	}
	h.MStatus |= upbeat.MStatusMPIE
	h.PC = h.MEPC
}

// saveTo is the store half of trap_entry.S: x1 through x31 into the
// context mscratch names, then mepc and mstatus.  x0 is never stored.
func (h *Hart) saveTo(ctx *joy.RegisterSavedState) {
	for r := 1; r < 32; r++ {
		ctx.X[r] = h.X[r]
	}
	ctx.PC = h.MEPC
	ctx.MStatus = h.MStatus
}

// restoreFrom is the load half: mscratch, mepc and mstatus from the
// returned context, then the registers with t6 last.
func (h *Hart) restoreFrom(ctx *joy.RegisterSavedState) {
	h.Scratch = ctx
	h.MEPC = ctx.PC
	h.MStatus = ctx.MStatus
	for r := 1; r < 32; r++ {
		h.X[r] = ctx.X[r]
	}
}

// clobber trashes every register the way running the Go handler on the
// trap stack would, so anything restore forgets shows up as garbage.
func (h *Hart) clobber() {
	for r := 1; r < 32; r++ {
		h.X[r] = 0xdead_0000_0000_0000 | uint64(r)
	}
}
