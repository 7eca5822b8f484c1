//go:build tinygo && riscv64

package sifive

import (
	"device/riscv"
	"unsafe"

	"hifive/src/joy"
	"hifive/src/lib/upbeat"
)

//go:extern trap_entry
var trapEntry [0]byte

// Board is the real machine.  It has no state of its own, everything lives
// in CSRs and the CLINT.
type Board struct{}

func (Board) MTime() uint64 {
	return Clint.MTime.Get()
}

func (Board) SetMTimeCmp(deadline uint64) {
	Clint.MTimeCmp[KernelHart].Set(deadline)
}

func (Board) EnableTimerInterrupt() {
	riscv.MIE.SetBits(upbeat.MIEMTIE)
}

func (Board) InstallTrapVector() {
	riscv.MTVEC.Set(upbeat.MTVecDirect(uintptr(unsafe.Pointer(&trapEntry))))
}

func (Board) SetScratch(ctx *joy.RegisterSavedState) {
	riscv.MSCRATCH.Set(uintptr(unsafe.Pointer(ctx)))
}

func (Board) EnableInterrupts() {
	riscv.MSTATUS.SetBits(upbeat.MStatusMIE)
}

func (Board) WaitForInterrupt() {
	riscv.Asm("wfi")
}

// Halt is what a fatal error ends in: interrupts off, wait forever.
func Halt(int) {
	riscv.MSTATUS.ClearBits(upbeat.MStatusMIE)
	for {
		riscv.Asm("wfi")
	}
}

// GlobalPointer reads gp as set up by the startup code, so tasks get the
// same one.
func GlobalPointer() uint64 {
	return uint64(riscv.AsmFull("mv {}, gp", nil))
}
