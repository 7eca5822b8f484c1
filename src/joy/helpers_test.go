package joy

import (
	"testing"

	"hifive/src/lib/trust"
)

// fakeClint is a CLINT with a hand cranked clock.
type fakeClint struct {
	now     uint64
	cmp     uint64
	writes  int
	enabled bool
}

func (f *fakeClint) MTime() uint64 {
	return f.now
}

func (f *fakeClint) SetMTimeCmp(deadline uint64) {
	f.cmp = deadline
	f.writes++
}

func (f *fakeClint) EnableTimerInterrupt() {
	f.enabled = true
}

// fakeBoard records what the kernel asked for, in order.
type fakeBoard struct {
	fakeClint
	calls   []string
	scratch *RegisterSavedState
}

func (b *fakeBoard) EnableTimerInterrupt() {
	b.calls = append(b.calls, "mie.mtie")
	b.fakeClint.EnableTimerInterrupt()
}

func (b *fakeBoard) SetMTimeCmp(deadline uint64) {
	b.calls = append(b.calls, "mtimecmp")
	b.fakeClint.SetMTimeCmp(deadline)
}

func (b *fakeBoard) InstallTrapVector() {
	b.calls = append(b.calls, "mtvec")
}

func (b *fakeBoard) SetScratch(ctx *RegisterSavedState) {
	b.calls = append(b.calls, "mscratch")
	b.scratch = ctx
}

func (b *fakeBoard) EnableInterrupts() {
	b.calls = append(b.calls, "mstatus.mie")
}

func (b *fakeBoard) WaitForInterrupt() {}

type halted struct {
	code int
}

type lineSink struct {
	lines []string
}

func (s *lineSink) WriteLine(l trust.MaskLevel, line string) {
	s.lines = append(s.lines, trust.Prefix(l)+line)
}

// testLogger returns a logger whose Fatalf panics with halted, so a test
// can see the halt happen.
func testLogger() (*trust.Logger, *lineSink) {
	sink := &lineSink{}
	l := trust.NewLogger(sink)
	l.SetHalt(func(code int) { panic(halted{code}) })
	return l, sink
}

// expectHalt runs fn and returns the halt code it died with.
func expectHalt(t *testing.T, fn func()) (code int) {
	t.Helper()
	code = -1
	defer func() {
		r := recover()
		h, ok := r.(halted)
		if !ok {
			t.Fatalf("expected a halt but got %v", r)
		}
		code = h.code
	}()
	fn()
	return
}

func createTasks(t *testing.T, s *Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id, err := s.CreateTask(FuncPtr(0x8000_0000 + i*0x100))
		if err != JoyNoError {
			t.Fatalf("create task %d failed: %v", i, err)
		}
		if int(id) != i {
			t.Fatalf("expected task id %d but got %d", i, id)
		}
	}
}

func checkInvariant(t *testing.T, s *Scheduler) {
	t.Helper()
	if err := s.CheckInvariant(); err != JoyNoError {
		t.Fatalf("state invariant broken: %v", err)
	}
}
