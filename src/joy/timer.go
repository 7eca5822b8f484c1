package joy

// DefaultInterval is the preemption period in mtime ticks.
const DefaultInterval = 10000000

// Clint is the part of the core local interruptor the timer uses: the free
// running 64 bit mtime counter and the mtimecmp compare register.
type Clint interface {
	MTime() uint64
	SetMTimeCmp(deadline uint64)
}

// TimerInterruptEnabler sets MTIE in mie.
type TimerInterruptEnabler interface {
	EnableTimerInterrupt()
}

//
// Timer arms the machine timer and acknowledges its interrupts.  It does not
// decide anything about scheduling.
//
type Timer struct {
	clint    Clint
	irq      TimerInterruptEnabler
	interval uint64
	armed    bool
	deadline uint64
	ticks    uint64
}

func NewTimer(c Clint, irq TimerInterruptEnabler, interval uint64) *Timer {
	t := &Timer{}
	t.Setup(c, irq, interval)
	return t
}

// Setup attaches the hardware.  It does not arm anything; that's Init.
func (t *Timer) Setup(c Clint, irq TimerInterruptEnabler, interval uint64) {
	if interval == 0 {
		interval = DefaultInterval
	}
	t.clint = c
	t.irq = irq
	t.interval = interval
	t.armed = false
	t.deadline = 0
	t.ticks = 0
}

// Init enables the timer interrupt source and arms the first deadline.
func (t *Timer) Init() {
	t.irq.EnableTimerInterrupt()
	t.rearm()
	t.armed = true
}

// The next deadline is always relative to the time we read now, not to the
// previous deadline.  A late tick does not make the next one come early, at
// the price of drifting under sustained overrun.
func (t *Timer) rearm() {
	t.deadline = t.clint.MTime() + t.interval
	t.clint.SetMTimeCmp(t.deadline)
}

// HandleInterrupt acknowledges the current tick (writing mtimecmp clears
// MTIP) and arms the next one.  A tick before Init is a programming error.
func (t *Timer) HandleInterrupt() JoyError {
	if !t.armed {
		return MakeError(ErrorTimerMisconfiguration, NoTask)
	}
	t.rearm()
	t.ticks++
	return JoyNoError
}

// Pending reports whether mtime has reached the armed deadline.
func (t *Timer) Pending() bool {
	return t.armed && t.clint.MTime() >= t.deadline
}

func (t *Timer) Armed() bool {
	return t.armed
}

func (t *Timer) Deadline() uint64 {
	return t.deadline
}

func (t *Timer) Interval() uint64 {
	return t.interval
}

func (t *Timer) Ticks() uint64 {
	return t.ticks
}
