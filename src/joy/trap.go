package joy

import (
	"hifive/src/lib/trust"
	"hifive/src/lib/upbeat"
)

//
// Dispatcher is the Go half of the trap path.  trap_entry.S has already
// stored every register of the interrupted code into ctx (which is what
// mscratch pointed at) and will load every register from whatever context
// HandleTrap returns.  So a context switch is nothing more than returning a
// different pointer.
//
// Traps are not reentrant: MIE stays clear from trap entry until mret.
//
type Dispatcher struct {
	sched  *Scheduler
	timer  *Timer
	log    *trust.Logger
	traps  uint64
	others uint64
}

func NewDispatcher(s *Scheduler, t *Timer, l *trust.Logger) *Dispatcher {
	d := &Dispatcher{}
	d.Setup(s, t, l)
	return d
}

func (d *Dispatcher) Setup(s *Scheduler, t *Timer, l *trust.Logger) {
	if l == nil {
		l = trust.Default()
	}
	d.sched = s
	d.timer = t
	d.log = l
	d.traps = 0
	d.others = 0
}

// HandleTrap decodes mcause and returns the context to resume.  Exceptions
// and protocol violations are fatal and do not return on the board.
func (d *Dispatcher) HandleTrap(cause upbeat.Cause, ctx *RegisterSavedState, mtval uint64) *RegisterSavedState {
	d.traps++
	if ctx != d.sched.CurrentContext() {
		d.fatal(MakeError(ErrorTrapContextMismatch, d.currentID()),
			"trap saved into %p but current context is %p", ctx, d.sched.CurrentContext())
		return ctx
	}
	if !cause.IsInterrupt() {
		upbeat.PrintoutException(cause, ctx.PC, mtval, d.log)
		d.fatal(MakeError(ErrorUnhandledException, d.currentID()),
			"no recovery for %s at 0x%x", cause.String(), ctx.PC)
		return ctx
	}
	if cause.Code() != upbeat.MachineTimerInterrupt {
		d.others++
		d.log.Debugf("ignoring %s (%d)", cause.String(), cause.Code())
		return ctx
	}
	return d.timerTick(ctx)
}

func (d *Dispatcher) timerTick(ctx *RegisterSavedState) *RegisterSavedState {
	if err := d.timer.HandleInterrupt(); err != JoyNoError {
		d.fatal(err, "timer tick with no deadline armed")
		return ctx
	}
	prev := d.currentID()
	next, ok := d.sched.Schedule()
	if !ok {
		// nobody else is ready; resume whatever was interrupted, unless it
		// blocked, in which case we go back to idling
		return d.sched.ResumeContext()
	}
	if next != prev {
		d.log.Debugf("tick %d: switching from task %d to task %d", d.timer.Ticks(), prev, next)
	}
	return d.sched.ResumeContext()
}

func (d *Dispatcher) currentID() TaskID {
	id, _ := d.sched.Current()
	return id
}

func (d *Dispatcher) fatal(err JoyError, format string, params ...interface{}) {
	d.log.Errorf("%s", err.Error())
	d.log.Fatalf(int(err.Subsystem())<<8|int(err.Number()), format, params...)
}

// Traps is the number of traps handled, all kinds.
func (d *Dispatcher) Traps() uint64 {
	return d.traps
}

// OtherInterrupts is the number of interrupts that were not the timer.
func (d *Dispatcher) OtherInterrupts() uint64 {
	return d.others
}
