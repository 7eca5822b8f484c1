package sim

import (
	"hifive/src/joy"
)

// recentTraps is how much of the trace goes out with each published status.
const recentTraps = 256

// TaskStatus is one row of the published task table.
type TaskStatus struct {
	ID       int    `json:"id"`
	State    string `json:"state"`
	Program  string `json:"program"`
	Entry    uint64 `json:"entry"`
	Switches uint64 `json:"switches"`
	PC       uint64 `json:"pc"`
	SP       uint64 `json:"sp"`
	Executed uint64 `json:"executed"`
}

// Status is a copy of the machine taken on the stepping goroutine after a
// trap.  Nothing in it points back into the kernel.
type Status struct {
	RunID     string       `json:"run_id"`
	Steps     uint64       `json:"steps"`
	IdleSteps uint64       `json:"idle_steps"`
	MTime     uint64       `json:"mtime"`
	Ticks     uint64       `json:"ticks"`
	Traps     uint64       `json:"traps"`
	Current   int          `json:"current"`
	Stopped   string       `json:"stopped,omitempty"`
	Tasks     []TaskStatus `json:"tasks"`
}

func (m *Machine) snapshot() Status {
	st := Status{
		RunID:     m.runID,
		Steps:     m.steps,
		IdleSteps: m.idleSteps,
		MTime:     m.Clint.mtime,
		Ticks:     m.Kernel.Timer.Ticks(),
		Traps:     m.trace.Total(),
		Current:   owner(m.Kernel.Scheduler.Current()),
	}
	if m.err != nil {
		st.Stopped = m.err.Error()
	}
	table := m.Kernel.Scheduler.Snapshot()
	for _, info := range table {
		if info.State == joy.TaskAvailable {
			continue
		}
		id := int(info.ID)
		ts := TaskStatus{
			ID:       id,
			State:    info.State.String(),
			Entry:    uint64(info.Entry),
			Switches: info.Switches,
			PC:       info.PC,
			SP:       info.SP,
			Executed: m.Executed(id),
		}
		if p := m.Program(id); p != nil {
			ts.Program = p.Name()
		}
		st.Tasks = append(st.Tasks, ts)
	}
	return st
}

// publish makes the current state visible to Status and RecentTraps.
func (m *Machine) publish() {
	st := m.snapshot()
	all := m.trace.Tail(recentTraps)
	m.mu.Lock()
	m.status = st
	m.recent = all
	m.mu.Unlock()
}

// Refresh publishes now instead of waiting for the next trap.  Call it
// from the stepping goroutine.
func (m *Machine) Refresh() {
	m.publish()
}

// Status returns the last published status.  Safe from any goroutine.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status
	st.Tasks = append([]TaskStatus(nil), m.status.Tasks...)
	return st
}

// RecentTraps returns the tail of the trace as last published.  Safe from
// any goroutine.
func (m *Machine) RecentTraps() []TrapRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TrapRecord(nil), m.recent...)
}
