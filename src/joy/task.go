package joy

import (
	"unsafe"
)

// FuncPtr is the machine address of code to start a task at.  It has to
// point to a simple machine address, not something like a closure!  There is
// no checking.
type FuncPtr uint64

// TaskID is the index of a task in the task table.
type TaskID uint16

// NoTask means "nobody", i.e. the processor is idling in the boot context.
const NoTask TaskID = 0xffff

// StackSize is the size of each task's private stack.
const StackSize = 4096

// FrameReserve is how much of the top of a fresh stack is kept free for a
// full register frame.
const FrameReserve = ContextSize

// TaskState is where a task is in its lifecycle.
//
//	Available -> Ready       CreateTask
//	Ready     -> Running     Schedule picks it
//	Running   -> Ready       Schedule picks somebody else
//	Running   -> Blocked     Block
//	Blocked   -> Ready       Unblock
//
// Nothing goes back to Available.
type TaskState uint8

const (
	TaskAvailable TaskState = iota
	TaskReady
	TaskRunning
	TaskBlocked
)

func (s TaskState) String() string {
	switch s {
	case TaskAvailable:
		return "available"
	case TaskReady:
		return "ready"
	case TaskRunning:
		return "running"
	case TaskBlocked:
		return "blocked"
	}
	return "invalid"
}

func canTransition(from, to TaskState) bool {
	switch from {
	case TaskAvailable:
		return to == TaskReady
	case TaskReady:
		return to == TaskRunning
	case TaskRunning:
		return to == TaskReady || to == TaskBlocked
	case TaskBlocked:
		return to == TaskReady
	}
	return false
}

//
// Task is one slot of the task table.  RSS must stay the first field: the
// trap entry code gets a pointer to it from mscratch and that pointer is
// also the pointer to the task.
//
type Task struct {
	RSS      RegisterSavedState
	id       TaskID
	state    TaskState
	entry    FuncPtr
	switches uint64
	stack    [StackSize]byte
}

func (t *Task) ID() TaskID {
	return t.id
}

func (t *Task) State() TaskState {
	return t.state
}

func (t *Task) setState(to TaskState) bool {
	if !canTransition(t.state, to) {
		return false
	}
	t.state = to
	return true
}

// stackTop is one past the highest byte of the task's stack.
func (t *Task) stackTop() uintptr {
	return uintptr(unsafe.Pointer(&t.stack[0])) + StackSize
}

func (t *Task) stackBottom() uintptr {
	return uintptr(unsafe.Pointer(&t.stack[0]))
}

// initialContext builds the registers that the first mret into this task
// will load: start at entry, on our own stack, with interrupts on.
func (t *Task) initialContext(entry FuncPtr, tmpl TaskTemplate) {
	t.RSS.Clear()
	sp := (t.stackTop() - FrameReserve) &^ 15
	t.RSS.X[RegSP] = uint64(sp)
	t.RSS.X[RegRA] = uint64(tmpl.ExitPC)
	t.RSS.X[RegGP] = tmpl.GlobalPointer
	t.RSS.X[RegA0] = uint64(t.id)
	t.RSS.PC = uint64(entry)
	t.RSS.MStatus = tmpl.MStatus
	t.entry = entry
}

// TaskInfo is a copy of the interesting parts of a Task, for diagnostics.
type TaskInfo struct {
	ID       TaskID
	State    TaskState
	Entry    FuncPtr
	Switches uint64
	PC       uint64
	SP       uint64
}

func (t *Task) info() TaskInfo {
	return TaskInfo{
		ID:       t.id,
		State:    t.state,
		Entry:    t.entry,
		Switches: t.switches,
		PC:       t.RSS.PC,
		SP:       t.RSS.X[RegSP],
	}
}
