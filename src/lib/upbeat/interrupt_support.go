package upbeat

import (
	"hifive/src/lib/trust"
)

// Cause is the raw value of the mcause CSR on RV64.  The top bit says
// interrupt (set) or exception (clear), the rest is the code.
type Cause uint64

const causeInterruptBit = Cause(1) << 63

// Interrupt codes (mcause with the top bit set).
const (
	SupervisorSoftwareInterrupt = 1
	MachineSoftwareInterrupt    = 3
	SupervisorTimerInterrupt    = 5
	MachineTimerInterrupt       = 7
	SupervisorExternalInterrupt = 9
	MachineExternalInterrupt    = 11
)

// Exception codes (mcause with the top bit clear).
const (
	InstructionAddressMisaligned = 0
	InstructionAccessFault       = 1
	IllegalInstruction           = 2
	Breakpoint                   = 3
	LoadAddressMisaligned        = 4
	LoadAccessFault              = 5
	StoreAddressMisaligned       = 6
	StoreAccessFault             = 7
	EnvironmentCallFromU         = 8
	EnvironmentCallFromS         = 9
	EnvironmentCallFromM         = 11
	InstructionPageFault         = 12
	LoadPageFault                = 13
	StorePageFault               = 15
)

// InterruptCause builds the mcause value the hardware reports for an
// interrupt with the given code.
func InterruptCause(code uint64) Cause {
	return causeInterruptBit | Cause(code)
}

// ExceptionCause builds the mcause value for a synchronous exception.
func ExceptionCause(code uint64) Cause {
	return Cause(code) &^ causeInterruptBit
}

func (c Cause) IsInterrupt() bool {
	return c&causeInterruptBit != 0
}

func (c Cause) Code() uint64 {
	return uint64(c &^ causeInterruptBit)
}

func (c Cause) IsMachineTimer() bool {
	return c.IsInterrupt() && c.Code() == MachineTimerInterrupt
}

func (c Cause) String() string {
	if c.IsInterrupt() {
		switch c.Code() {
		case SupervisorSoftwareInterrupt:
			return "supervisor software interrupt"
		case MachineSoftwareInterrupt:
			return "machine software interrupt"
		case SupervisorTimerInterrupt:
			return "supervisor timer interrupt"
		case MachineTimerInterrupt:
			return "machine timer interrupt"
		case SupervisorExternalInterrupt:
			return "supervisor external interrupt"
		case MachineExternalInterrupt:
			return "machine external interrupt"
		}
		return "reserved or platform interrupt"
	}
	switch c.Code() {
	case InstructionAddressMisaligned:
		return "instruction address misaligned"
	case InstructionAccessFault:
		return "instruction access fault"
	case IllegalInstruction:
		return "illegal instruction"
	case Breakpoint:
		return "breakpoint"
	case LoadAddressMisaligned:
		return "load address misaligned"
	case LoadAccessFault:
		return "load access fault"
	case StoreAddressMisaligned:
		return "store/AMO address misaligned"
	case StoreAccessFault:
		return "store/AMO access fault"
	case EnvironmentCallFromU:
		return "environment call from U-mode"
	case EnvironmentCallFromS:
		return "environment call from S-mode"
	case EnvironmentCallFromM:
		return "environment call from M-mode"
	case InstructionPageFault:
		return "instruction page fault"
	case LoadPageFault:
		return "load page fault"
	case StorePageFault:
		return "store/AMO page fault"
	}
	return "reserved exception"
}

// PrintoutException writes a description of an exception to the logger,
// the same way on the board and in the simulator.
func PrintoutException(c Cause, mepc uint64, mtval uint64, l *trust.Logger) {
	if c.IsInterrupt() {
		l.Errorf("unexpected interrupt (%d): %s", c.Code(), c.String())
		return
	}
	l.Errorf("exception (%d): %s", c.Code(), c.String())
	l.Errorf("  mepc=0x%x mtval=0x%x", mepc, mtval)
}
