package upbeat

import (
	"strings"
	"testing"

	"hifive/src/lib/trust"
)

type lineCollector struct {
	lines []string
}

func (c *lineCollector) WriteLine(_ trust.MaskLevel, line string) {
	c.lines = append(c.lines, line)
}

func TestCauseDecoding(t *testing.T) {
	checkCause(t, 0x8000000000000007, true, MachineTimerInterrupt, "machine timer interrupt")
	checkCause(t, 0x800000000000000b, true, MachineExternalInterrupt, "machine external interrupt")
	checkCause(t, 0x8000000000000003, true, MachineSoftwareInterrupt, "machine software interrupt")
	checkCause(t, 2, false, IllegalInstruction, "illegal instruction")
	checkCause(t, 7, false, StoreAccessFault, "store/AMO access fault")
	checkCause(t, 11, false, EnvironmentCallFromM, "environment call from M-mode")
	checkCause(t, 14, false, 14, "reserved exception")
}

func checkCause(t *testing.T, raw uint64, interrupt bool, code uint64, name string) {
	t.Helper()
	c := Cause(raw)
	if c.IsInterrupt() != interrupt {
		t.Errorf("cause %x: interrupt bit wrong", raw)
	}
	if c.Code() != code {
		t.Errorf("cause %x: expected code %d but got %d", raw, code, c.Code())
	}
	if c.String() != name {
		t.Errorf("cause %x: expected name %q but got %q", raw, name, c.String())
	}
}

func TestMachineTimerIsOnlyTheInterrupt(t *testing.T) {
	if !InterruptCause(MachineTimerInterrupt).IsMachineTimer() {
		t.Errorf("interrupt code 7 should be the machine timer")
	}
	// code 7 as an exception is a store access fault, not a tick
	if ExceptionCause(7).IsMachineTimer() {
		t.Errorf("exception code 7 must not be mistaken for the timer")
	}
}

func TestPrintoutException(t *testing.T) {
	c := &lineCollector{}
	PrintoutException(ExceptionCause(LoadAccessFault), 0x80001234, 0xdead, trust.NewLogger(c))
	if len(c.lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(c.lines))
	}
	if !strings.Contains(c.lines[0], "load access fault") {
		t.Errorf("missing cause name: %q", c.lines[0])
	}
	if !strings.Contains(c.lines[1], "mepc=0x80001234") || !strings.Contains(c.lines[1], "mtval=0xdead") {
		t.Errorf("missing addresses: %q", c.lines[1])
	}
}

func TestMTVecDirect(t *testing.T) {
	if v := MTVecDirect(0x80000103); v != 0x80000100 {
		t.Errorf("expected mode bits cleared, got %x", v)
	}
	if TaskMStatus&MStatusMIE != 0 {
		t.Errorf("tasks must not start with MIE set before mret")
	}
}
