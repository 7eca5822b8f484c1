package joy

import (
	"strings"
	"testing"

	"hifive/src/lib/upbeat"
)

func TestBootOrder(t *testing.T) {
	b := &fakeBoard{}
	b.now = 5000
	l, _ := testLogger()
	k := new(Kernel)
	n := k.Boot(b, BootConfig{Interval: 250, Tasks: []FuncPtr{0x100, 0x200}, Log: l})
	if n != 2 {
		t.Errorf("expected 2 tasks, got %d", n)
	}
	want := "mscratch mtvec mie.mtie mtimecmp mstatus.mie"
	if got := strings.Join(b.calls, " "); got != want {
		t.Errorf("boot order wrong:\n got  %s\n want %s", got, want)
	}
	if b.scratch != k.Scheduler.IdleContext() {
		t.Errorf("mscratch should point at the idle context before the first switch")
	}
	if b.cmp != 5250 {
		t.Errorf("expected first deadline 5250, got %d", b.cmp)
	}
	if !k.Booted() {
		t.Errorf("kernel should say it booted")
	}
	ctx, _ := k.Scheduler.Context(1)
	if ctx.MStatus != upbeat.TaskMStatus {
		t.Errorf("zero template should get the default mstatus, got 0x%x", ctx.MStatus)
	}
}

func TestBootSkipsTasksThatDoNotFit(t *testing.T) {
	b := &fakeBoard{}
	l, sink := testLogger()
	entries := make([]FuncPtr, MaxTasks+1)
	for i := range entries {
		entries[i] = FuncPtr(0x1000 + i)
	}
	k := new(Kernel)
	if n := k.Boot(b, BootConfig{Tasks: entries, Log: l}); n != MaxTasks {
		t.Errorf("expected %d tasks, got %d", MaxTasks, n)
	}
	if !strings.Contains(strings.Join(sink.lines, "\n"), "scheduler full") {
		t.Errorf("the skipped task should be reported")
	}
	if k.Timer.Interval() != DefaultInterval {
		t.Errorf("zero interval should be the default")
	}
}

func TestKernelHandleTrapTakesRawCause(t *testing.T) {
	b := &fakeBoard{}
	l, _ := testLogger()
	k := new(Kernel)
	k.Boot(b, BootConfig{Interval: 10, Tasks: []FuncPtr{0x100}, Log: l})
	b.now = 10
	ctx := k.HandleTrap(uint64(timerCause), b.scratch, 0)
	first, _ := k.Scheduler.Context(0)
	if ctx != first {
		t.Errorf("raw timer cause should dispatch task 0")
	}
}
