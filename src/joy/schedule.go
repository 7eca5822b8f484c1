package joy

import (
	"hifive/src/lib/upbeat"
)

// MaxTasks is the size of the task table.  It never grows.
const MaxTasks = 16

// TaskTemplate holds the parts of a fresh task's registers that come from
// the board rather than from the task itself.
type TaskTemplate struct {
	// ExitPC is put in ra, so a task function that returns lands somewhere
	// harmless instead of at address zero.
	ExitPC FuncPtr
	// GlobalPointer is copied into gp; linker relaxation relies on it.
	GlobalPointer uint64
	// MStatus is what mret will install when the task first runs.
	MStatus uint64
}

// DefaultTaskTemplate enters tasks in machine mode with interrupts enabled.
func DefaultTaskTemplate() TaskTemplate {
	return TaskTemplate{MStatus: upbeat.TaskMStatus}
}

//
// Scheduler owns the task table and the round robin cursor.  The table is
// only changed from trap context, or from the boot path before interrupts
// are enabled; task code never touches it.  That single writer rule is the
// whole locking story: anything new that wants to mutate the table (a
// syscall, say) has to come in through the trap path too.
//
type Scheduler struct {
	tasks    [MaxTasks]Task
	current  TaskID
	idle     RegisterSavedState
	template TaskTemplate
}

// NewScheduler returns an initialized scheduler with every slot available.
func NewScheduler(tmpl TaskTemplate) *Scheduler {
	s := &Scheduler{}
	s.Init(tmpl)
	return s
}

// Init resets the table.  Used on the statically allocated singleton so the
// table never comes from a heap.
func (s *Scheduler) Init(tmpl TaskTemplate) {
	for i := range s.tasks {
		t := &s.tasks[i]
		t.RSS.Clear()
		t.id = TaskID(i)
		t.state = TaskAvailable
		t.entry = 0
		t.switches = 0
	}
	s.current = NoTask
	s.idle.Clear()
	s.template = tmpl
}

// CreateTask takes the first available slot and prepares it so that the
// first dispatch starts executing at entry on the slot's own stack.  If
// there is no available slot, ErrorSchedulerFull comes back and the table
// is not touched.
func (s *Scheduler) CreateTask(entry FuncPtr) (TaskID, JoyError) {
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.state != TaskAvailable {
			continue
		}
		t.initialContext(entry, s.template)
		t.setState(TaskReady)
		return t.id, JoyNoError
	}
	return NoTask, MakeError(ErrorSchedulerFull, NoTask)
}

// Schedule is plain round robin: starting just after the current task, look
// at every slot once and take the first Ready one.  If there is none,
// nothing changes and the caller keeps running whatever it was running.
func (s *Scheduler) Schedule() (TaskID, bool) {
	start := 0
	if s.current != NoTask {
		start = int(s.current) + 1
	}
	for i := 0; i < MaxTasks; i++ {
		next := &s.tasks[(start+i)%MaxTasks]
		if next.state != TaskReady {
			continue
		}
		if s.current != NoTask {
			prev := &s.tasks[s.current]
			if prev.state == TaskRunning {
				prev.setState(TaskReady)
			}
		}
		next.setState(TaskRunning)
		next.switches++
		s.current = next.id
		return next.id, true
	}
	return NoTask, false
}

// Current is the task holding the processor, if any.
func (s *Scheduler) Current() (TaskID, bool) {
	if s.current == NoTask {
		return NoTask, false
	}
	return s.current, true
}

// CurrentContext is where the trap entry code is supposed to have saved the
// interrupted registers: the current task's context, or the idle context.
func (s *Scheduler) CurrentContext() *RegisterSavedState {
	if s.current == NoTask {
		return &s.idle
	}
	return &s.tasks[s.current].RSS
}

// ResumeContext is the context the trap exit path has to load.  If the
// current task is not running any more (it blocked), the processor goes back
// to the idle context.
func (s *Scheduler) ResumeContext() *RegisterSavedState {
	if s.current != NoTask && s.tasks[s.current].state == TaskRunning {
		return &s.tasks[s.current].RSS
	}
	s.current = NoTask
	return &s.idle
}

// IdleContext is the context of the boot path once it is waiting for
// interrupts.  It is what mscratch points to before the first switch.
func (s *Scheduler) IdleContext() *RegisterSavedState {
	return &s.idle
}

func (s *Scheduler) State(id TaskID) (TaskState, JoyError) {
	if int(id) >= MaxTasks {
		return TaskAvailable, MakeError(ErrorSchedulerBadTask, id)
	}
	return s.tasks[id].state, JoyNoError
}

// Context returns the saved registers of a task.  Only meaningful while the
// task is not the one on the processor.
func (s *Scheduler) Context(id TaskID) (*RegisterSavedState, JoyError) {
	if int(id) >= MaxTasks {
		return nil, MakeError(ErrorSchedulerBadTask, id)
	}
	return &s.tasks[id].RSS, JoyNoError
}

// Block moves the running task to Blocked.  There are no blocking
// primitives yet; this is the hook they will use.
func (s *Scheduler) Block(id TaskID) JoyError {
	if int(id) >= MaxTasks {
		return MakeError(ErrorSchedulerBadTask, id)
	}
	if id != s.current || !s.tasks[id].setState(TaskBlocked) {
		return MakeError(ErrorSchedulerBadTransition, id)
	}
	return JoyNoError
}

// Unblock makes a blocked task eligible for Schedule again.
func (s *Scheduler) Unblock(id TaskID) JoyError {
	if int(id) >= MaxTasks {
		return MakeError(ErrorSchedulerBadTask, id)
	}
	if s.tasks[id].state != TaskBlocked || !s.tasks[id].setState(TaskReady) {
		return MakeError(ErrorSchedulerBadTransition, id)
	}
	return JoyNoError
}

// Snapshot copies the table for diagnostics.  It returns an array, not a
// slice, so it does not allocate.
func (s *Scheduler) Snapshot() [MaxTasks]TaskInfo {
	var result [MaxTasks]TaskInfo
	for i := range s.tasks {
		result[i] = s.tasks[i].info()
	}
	return result
}

// CheckInvariant verifies that at most one task is running and that it is
// the current one.
func (s *Scheduler) CheckInvariant() JoyError {
	running := NoTask
	for i := range s.tasks {
		if s.tasks[i].state != TaskRunning {
			continue
		}
		if running != NoTask {
			return MakeError(ErrorSchedulerBadTransition, TaskID(i))
		}
		running = TaskID(i)
	}
	if running != NoTask && running != s.current {
		return MakeError(ErrorSchedulerBadTransition, running)
	}
	return JoyNoError
}
