package joy

import (
	"hifive/src/lib/trust"
	"hifive/src/lib/upbeat"
)

// Board is everything the kernel needs from the machine.  The real one is
// in hardware/sifive, the simulated one in sim.
type Board interface {
	Clint
	TimerInterruptEnabler
	// InstallTrapVector points mtvec at trap_entry, direct mode.
	InstallTrapVector()
	// SetScratch points mscratch at the context trap_entry saves into.
	SetScratch(ctx *RegisterSavedState)
	// EnableInterrupts sets mstatus.MIE.
	EnableInterrupts()
	// WaitForInterrupt is wfi.
	WaitForInterrupt()
}

// Kernel ties the three singletons together.
type Kernel struct {
	Scheduler Scheduler
	Timer     Timer
	Trap      Dispatcher
	booted    bool
}

// theKernel is the one kernel on the board.  It lives in bss (the boot
// contract zeroes it), Boot fills it in before interrupts are enabled, and
// after that only trap context touches it.
var theKernel Kernel

// BootConfig is what the firmware's main hands to the kernel.  A zero
// Template.MStatus means the default (machine mode, interrupts on after
// mret); a zero Interval means DefaultInterval.
type BootConfig struct {
	Template TaskTemplate
	Interval uint64
	Tasks    []FuncPtr
	Log      *trust.Logger
}

func (c BootConfig) template() TaskTemplate {
	t := c.Template
	if t.MStatus == 0 {
		t.MStatus = DefaultTaskTemplate().MStatus
	}
	return t
}

// Boot brings the kernel up, in this order: tables, trap vector, tasks,
// timer, interrupts.  The trap vector has to be in place before the timer is
// armed and the timer has to be armed before anything can tick.  Tasks that
// don't fit are reported and skipped; the number created comes back.
func (k *Kernel) Boot(b Board, conf BootConfig) int {
	l := conf.Log
	if l == nil {
		l = trust.Default()
	}
	k.Scheduler.Init(conf.template())
	k.Timer.Setup(b, b, conf.Interval)
	k.Trap.Setup(&k.Scheduler, &k.Timer, l)

	b.SetScratch(k.Scheduler.IdleContext())
	b.InstallTrapVector()
	l.Infof("trap vector installed")

	created := 0
	for _, entry := range conf.Tasks {
		id, err := k.Scheduler.CreateTask(entry)
		if err != JoyNoError {
			l.Errorf("cannot create task at 0x%x: %s", uint64(entry), err.Error())
			continue
		}
		l.Infof("task %d created, entry 0x%x", id, uint64(entry))
		created++
	}

	k.Timer.Init()
	l.Infof("timer initialized, interval %d", k.Timer.Interval())
	k.booted = true
	b.EnableInterrupts()
	return created
}

// Idle is the boot path's final resting place.  Every trap taken from here
// saves into the idle context.
func (k *Kernel) Idle(b Board) {
	for {
		b.WaitForInterrupt()
	}
}

func (k *Kernel) Booted() bool {
	return k.booted
}

// HandleTrap is the entry from trap_entry.S for this kernel.
func (k *Kernel) HandleTrap(mcause uint64, ctx *RegisterSavedState, mtval uint64) *RegisterSavedState {
	return k.Trap.HandleTrap(upbeat.Cause(mcause), ctx, mtval)
}

// KernelMain boots the board's kernel and never returns.
func KernelMain(b Board, conf BootConfig) {
	n := theKernel.Boot(b, conf)
	trust.Infof("%d tasks created, entering idle loop", n)
	theKernel.Idle(b)
}

// handleTrap is called by trap_entry.S with mcause in a0, the saved context
// in a1 and mtval in a2.  It returns the context to restore in a0.
//
//export joy_handle_trap
func handleTrap(mcause uint64, ctx *RegisterSavedState, mtval uint64) *RegisterSavedState {
	return theKernel.HandleTrap(mcause, ctx, mtval)
}
