package sifive

// Physical addresses on the HiFive (FU540/FU740 family) memory map.
const (
	ClintBase = uintptr(0x0200_0000)
	UART0Base = uintptr(0x1001_0000)
	RAMBase   = uintptr(0x8000_0000)
)

// CLINT register offsets.  There is one msip and one mtimecmp per hart and a
// single mtime shared by all of them.
const (
	ClintMSIPOffset     = 0x0000
	ClintMTimeCmpOffset = 0x4000
	ClintMTimeOffset    = 0xBFF8
	ClintHarts          = 5
)

// KernelHart is the hart the kernel runs on; the others are parked by the
// boot code.
const KernelHart = 0

// MTimeCmpAddr is the compare register of a hart.
func MTimeCmpAddr(hart int) uintptr {
	return ClintBase + ClintMTimeCmpOffset + uintptr(hart)*8
}

// MTimeAddr is the shared free running counter.
func MTimeAddr() uintptr {
	return ClintBase + ClintMTimeOffset
}

// SiFive UART register offsets and bits.
const (
	UARTTxDataOffset = 0x00
	UARTRxDataOffset = 0x04
	UARTTxCtrlOffset = 0x08
	UARTRxCtrlOffset = 0x0C
	UARTDivOffset    = 0x18

	UARTTxFull    = 1 << 31
	UARTRxEmpty   = 1 << 31
	UARTTxEnable  = 1 << 0
	UARTRxEnable  = 1 << 0
	UARTStopBits2 = 1 << 1
)

// MTimeFrequency is the rate mtime counts at (the RTC clock), in Hz.
const MTimeFrequency = 1_000_000
