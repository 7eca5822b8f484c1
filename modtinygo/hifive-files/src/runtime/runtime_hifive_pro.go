//go:build hifive_pro

package runtime

// This file is copied into the TinyGo tree (src/runtime).  It is the boot
// contract for the kernel: by the time the program's main runs, bss is zero,
// the other harts are parked and sp is on the boot stack (start.S did that).

import (
	"device/riscv"
	"runtime/volatile"
	"unsafe"
)

type timeUnit int64

const clintBase = 0x0200_0000
const uartBase = 0x1001_0000
const uartTxFull = 1 << 31

var mtime = (*volatile.Register64)(unsafe.Pointer(uintptr(clintBase + 0xBFF8)))
var uartTxData = (*volatile.Register32)(unsafe.Pointer(uintptr(uartBase + 0x00)))

//export main
func main() {
	if riscv.MHARTID.Get() != 0 {
		for {
			riscv.Asm("wfi")
		}
	}
	// interrupts stay off until the kernel has its trap vector in place
	riscv.MSTATUS.ClearBits(1 << 3)
	riscv.MIE.Set(0)
	zeroBSS()
	run()
	exit(0)
}

func zeroBSS() {
	ptr := unsafe.Pointer(&_sbss)
	for ptr != unsafe.Pointer(&_ebss) {
		*(*uint64)(ptr) = 0
		ptr = unsafe.Pointer(uintptr(ptr) + 8)
	}
}

//go:extern _sbss
var _sbss [0]byte

//go:extern _ebss
var _ebss [0]byte

func putchar(c byte) {
	for uartTxData.Get()&uartTxFull != 0 {
	}
	uartTxData.Set(uint32(c))
}

func getchar() byte {
	for {
		riscv.Asm("wfi")
	}
}

func buffered() int {
	return 0
}

func ticks() timeUnit {
	return timeUnit(mtime.Get())
}

func sleepTicks(d timeUnit) {
	target := ticks() + d
	for ticks() < target {
	}
}

// mtime counts at 1MHz on the HiFive boards.
func ticksToNanoseconds(t timeUnit) int64 {
	return int64(t) * 1000
}

func nanosecondsToTicks(ns int64) timeUnit {
	return timeUnit(ns / 1000)
}

// handleInterrupt satisfies handleinterrupt.S.  The kernel installs its own
// trap_entry in mtvec so this is only reached if something goes very wrong
// before that.
//
//export handleInterrupt
func handleInterrupt() {
	abort()
}

// abort is called by panic().
func abort() {
	riscv.MSTATUS.ClearBits(1 << 3)
	for {
		riscv.Asm("wfi")
	}
}

func exit(code int) {
	abort()
}
