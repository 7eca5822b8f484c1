package sim

import (
	"errors"
	"fmt"
	"sync"

	"hifive/src/hardware/sifive"
	"hifive/src/joy"
	"hifive/src/lib/trust"
	"hifive/src/lib/upbeat"
)

var (
	// ErrHalted is returned once the kernel has halted the hart.
	ErrHalted = errors.New("hart halted")
	// ErrDeadlock is a wfi that no enabled interrupt can end.
	ErrDeadlock = errors.New("wfi with no interrupt able to wake the hart")
	// ErrNoTrapVector is a trap taken before mtvec was installed.
	ErrNoTrapVector = errors.New("trap taken with no trap vector installed")
	// ErrNotBooted is a step before Boot.
	ErrNotBooted = errors.New("machine not booted")
)

// HaltError carries the code the kernel halted with.
type HaltError struct {
	Code int
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("kernel halted with code 0x%x", e.Code)
}

func (e *HaltError) Is(target error) bool {
	return target == ErrHalted
}

// ContextError is a register that came back from a trap with a different
// value than it went in with.
type ContextError struct {
	Owner    int
	Register int
	Saved    uint64
	Restored uint64
}

func (e *ContextError) Error() string {
	what := fmt.Sprintf("x%d", e.Register)
	if e.Register == 32 {
		what = "pc"
	}
	return fmt.Sprintf("context of %s: %s saved as 0x%x, restored as 0x%x", ownerName(e.Owner), what, e.Saved, e.Restored)
}

func ownerName(o int) string {
	if o == Idle {
		return "idle"
	}
	return fmt.Sprintf("task %d", o)
}

type haltSignal struct {
	code int
}

// Options configures a Machine.  Zero values mean: the kernel's default
// interval, one mtime tick per instruction, the default trace length and
// trust's default logger.
type Options struct {
	Interval             uint64
	CyclesPerInstruction uint64
	TraceLimit           int
	Log                  *trust.Logger
}

type registers struct {
	x  [32]uint64
	pc uint64
}

// Machine is a hart, its CLINT and a kernel, plus the programs that stand in
// for the tasks' code.  Everything that touches the kernel happens on the
// goroutine that calls Step; other goroutines read the Status published
// after each trap.
type Machine struct {
	Hart   Hart
	Clint  *Clint
	Kernel joy.Kernel

	opts     Options
	log      *trust.Logger
	programs []Program
	runID    string

	booted    bool
	created   int
	steps     uint64
	idleSteps uint64
	executed  [joy.MaxTasks]uint64
	trace     *Trace
	saved     map[*joy.RegisterSavedState]registers
	err       error

	mu     sync.Mutex
	status Status
	recent []TrapRecord
}

// NewMachine builds a machine that will run progs as tasks 0, 1, ... in
// order.  Programs past the kernel's capacity are kept but never run.
func NewMachine(opts Options, progs ...Program) *Machine {
	if opts.CyclesPerInstruction == 0 {
		opts.CyclesPerInstruction = 1
	}
	if opts.Log == nil {
		opts.Log = trust.Default()
	}
	m := &Machine{
		Clint:    NewClint(),
		opts:     opts,
		log:      opts.Log,
		programs: progs,
		trace:    NewTrace(opts.TraceLimit),
		saved:    make(map[*joy.RegisterSavedState]registers),
	}
	m.log.SetHalt(func(code int) { panic(haltSignal{code}) })
	return m
}

// SetRunID labels the published status.
func (m *Machine) SetRunID(id string) {
	m.runID = id
	m.publish()
}

// Boot runs the kernel's boot path against this machine and leaves the
// hart in the idle loop.  It returns how many tasks the kernel created.
func (m *Machine) Boot() int {
	entries := make([]joy.FuncPtr, len(m.programs))
	for i := range m.programs {
		entries[i] = joy.FuncPtr(m.base(i))
	}
	m.Hart.X[joy.RegGP] = GlobalPointer
	m.created = m.Kernel.Boot(board{m}, joy.BootConfig{
		Template: joy.TaskTemplate{
			ExitPC:        joy.FuncPtr(ExitPC),
			GlobalPointer: GlobalPointer,
		},
		Interval: m.opts.Interval,
		Tasks:    entries,
		Log:      m.log,
	})
	m.Hart.PC = IdlePC
	m.booted = true
	m.publish()
	return m.created
}

func (m *Machine) base(i int) uint64 {
	return ProgramBase + uint64(i)*ProgramStride
}

// programAt finds the program whose region holds pc.
func (m *Machine) programAt(pc uint64) (int, Program, bool) {
	if pc < ProgramBase {
		return 0, nil, false
	}
	i := int((pc - ProgramBase) / ProgramStride)
	if i >= len(m.programs) {
		return 0, nil, false
	}
	return i, m.programs[i], true
}

// Step executes one instruction, or takes the pending interrupt instead.
// Once a step has failed every later one fails the same way.
func (m *Machine) Step() (err error) {
	if m.err != nil {
		return m.err
	}
	if !m.booted {
		return ErrNotBooted
	}
	defer func() {
		if r := recover(); r != nil {
			h, ok := r.(haltSignal)
			if !ok {
				panic(r)
			}
			err = &HaltError{Code: h.code}
		}
		if err != nil {
			m.err = err
			m.publish()
		}
	}()
	m.steps++
	if m.Hart.InterruptsEnabled() && m.Hart.TimerEnabled() && m.Clint.TimerPending(sifive.KernelHart) {
		return m.trap(upbeat.InterruptCause(upbeat.MachineTimerInterrupt), 0)
	}
	return m.execute()
}

func (m *Machine) execute() error {
	pc := m.Hart.PC
	if pc == IdlePC || pc == ExitPC {
		return m.wfi()
	}
	i, prog, ok := m.programAt(pc)
	if !ok {
		return m.trap(upbeat.ExceptionCause(upbeat.InstructionAccessFault), pc)
	}
	if f := prog.Exec(&m.Hart, (pc-m.base(i))%ProgramStride); f != nil {
		return m.trap(upbeat.ExceptionCause(f.Code), f.Value)
	}
	m.Hart.X[joy.RegZero] = 0
	if i < len(m.executed) {
		m.executed[i]++
	}
	m.Clint.Advance(m.opts.CyclesPerInstruction)
	return nil
}

// wfi sleeps until the timer fires.
func (m *Machine) wfi() error {
	if !m.Hart.InterruptsEnabled() || !m.Hart.TimerEnabled() {
		return ErrDeadlock
	}
	m.idleSteps++
	wait := m.Clint.UntilDeadline(sifive.KernelHart)
	if wait < m.opts.CyclesPerInstruction {
		wait = m.opts.CyclesPerInstruction
	}
	m.Clint.Advance(wait)
	return nil
}

// trap is the hardware trap followed by trap_entry.S, step for step: save
// through mscratch, call the kernel, restore from what it returned, mret.
// The registers are trashed while the kernel runs, as the Go handler would.
func (m *Machine) trap(cause upbeat.Cause, tval uint64) error {
	h := &m.Hart
	if h.MTVec&^upbeat.MTVecModeMask != TrapVector {
		return ErrNoTrapVector
	}
	from, fromOK := m.Kernel.Scheduler.Current()
	fromPC := h.PC
	h.enterTrap(uint64(cause), tval)

	ctx := h.Scratch
	h.saveTo(ctx)
	m.saved[ctx] = registers{x: ctx.X, pc: ctx.PC}
	h.clobber()

	next := m.Kernel.HandleTrap(h.MCause, ctx, h.MTVal)

	h.restoreFrom(next)
	h.mret()
	h.X[joy.RegZero] = 0

	to, toOK := m.Kernel.Scheduler.Current()
	m.trace.add(TrapRecord{
		Step:     m.steps,
		MTime:    m.Clint.mtime,
		Cause:    causeName(cause),
		From:     owner(from, fromOK),
		To:       owner(to, toOK),
		FromPC:   fromPC,
		ResumePC: h.PC,
	})
	if err := m.Kernel.Scheduler.CheckInvariant(); err != joy.JoyNoError {
		return fmt.Errorf("after trap %d: %w", m.trace.Total(), err)
	}
	if err := m.checkRestored(next, owner(to, toOK)); err != nil {
		return err
	}
	m.publish()
	return nil
}

// checkRestored compares the hart after mret with what was saved the last
// time this context was trapped out of.  A context never saved before is a
// fresh task and has nothing to compare.
func (m *Machine) checkRestored(ctx *joy.RegisterSavedState, who int) error {
	want, ok := m.saved[ctx]
	if !ok {
		return nil
	}
	for r := 1; r < 32; r++ {
		if m.Hart.X[r] != want.x[r] {
			return &ContextError{Owner: who, Register: r, Saved: want.x[r], Restored: m.Hart.X[r]}
		}
	}
	if m.Hart.PC != want.pc {
		return &ContextError{Owner: who, Register: 32, Saved: want.pc, Restored: m.Hart.PC}
	}
	return nil
}

// Run executes n steps, stopping early on an error.
func (m *Machine) Run(n uint64) error {
	for i := uint64(0); i < n; i++ {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunTicks runs until the kernel has seen n more timer ticks.  It gives up
// with an error if that takes far longer than the interval allows.
func (m *Machine) RunTicks(n uint64) error {
	target := m.Kernel.Timer.Ticks() + n
	perTick := m.Kernel.Timer.Interval()/m.opts.CyclesPerInstruction + 2
	budget := n*perTick + 16
	for m.Kernel.Timer.Ticks() < target {
		if budget == 0 {
			return fmt.Errorf("no timer tick after %d steps", n*perTick+16)
		}
		budget--
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// NextTrap runs until one more trap has been taken, within what one timer
// interval allows.
func (m *Machine) NextTrap() error {
	target := m.trace.Total() + 1
	limit := m.Kernel.Timer.Interval()/m.opts.CyclesPerInstruction + 18
	for budget := limit; m.trace.Total() < target; budget-- {
		if budget == 0 {
			return fmt.Errorf("no trap after %d steps", limit)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Err is the error that stopped the machine, if any.
func (m *Machine) Err() error {
	return m.err
}

func (m *Machine) Trace() *Trace {
	return m.trace
}

// Program returns the program behind task id.
func (m *Machine) Program(id int) Program {
	if id < 0 || id >= len(m.programs) {
		return nil
	}
	return m.programs[id]
}

// Executed is how many instructions task id has run.
func (m *Machine) Executed(id int) uint64 {
	if id < 0 || id >= len(m.executed) {
		return 0
	}
	return m.executed[id]
}

// Created is how many tasks the kernel accepted at boot.
func (m *Machine) Created() int {
	return m.created
}

// board is the Board the kernel boots against: the CLINT by address and
// the hart's CSRs.
type board struct {
	m *Machine
}

func (b board) MTime() uint64 {
	v, _ := b.m.Clint.Load64(sifive.MTimeAddr())
	return v
}

func (b board) SetMTimeCmp(deadline uint64) {
	b.m.Clint.Store64(sifive.MTimeCmpAddr(sifive.KernelHart), deadline)
}

func (b board) EnableTimerInterrupt() {
	b.m.Hart.MIE |= upbeat.MIEMTIE
}

func (b board) InstallTrapVector() {
	b.m.Hart.MTVec = uint64(upbeat.MTVecDirect(uintptr(TrapVector)))
}

func (b board) SetScratch(ctx *joy.RegisterSavedState) {
	b.m.Hart.Scratch = ctx
}

func (b board) EnableInterrupts() {
	b.m.Hart.MStatus |= upbeat.MStatusMIE
}

func (b board) WaitForInterrupt() {
	b.m.wfi()
}
