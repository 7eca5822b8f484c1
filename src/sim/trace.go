package sim

import (
	"hifive/src/joy"
	"hifive/src/lib/upbeat"
)

// Idle is the owner recorded for the idle loop in a TrapRecord.
const Idle = -1

// TrapRecord is one trap as seen from outside: when it happened, why, and
// who had the processor before and after.
type TrapRecord struct {
	Seq      uint64 `json:"seq"`
	Step     uint64 `json:"step"`
	MTime    uint64 `json:"mtime"`
	Cause    string `json:"cause"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	FromPC   uint64 `json:"from_pc"`
	ResumePC uint64 `json:"resume_pc"`
}

// Switched is true when the trap resumed someone else.
func (r TrapRecord) Switched() bool {
	return r.From != r.To
}

// Trace keeps the most recent traps, up to a limit.
type Trace struct {
	limit   int
	seq     uint64
	records []TrapRecord
}

// DefaultTraceLimit applies when a Trace is asked for a limit of zero.
const DefaultTraceLimit = 4096

func NewTrace(limit int) *Trace {
	if limit <= 0 {
		limit = DefaultTraceLimit
	}
	return &Trace{limit: limit}
}

func (t *Trace) add(r TrapRecord) {
	t.seq++
	r.Seq = t.seq
	if len(t.records) == t.limit {
		copy(t.records, t.records[1:])
		t.records = t.records[:len(t.records)-1]
	}
	t.records = append(t.records, r)
}

// Records returns a copy, oldest first.
func (t *Trace) Records() []TrapRecord {
	out := make([]TrapRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Tail returns a copy of at most the n newest records, oldest first.
func (t *Trace) Tail(n int) []TrapRecord {
	if n > len(t.records) {
		n = len(t.records)
	}
	out := make([]TrapRecord, n)
	copy(out, t.records[len(t.records)-n:])
	return out
}

// Total is the number of traps ever recorded, including dropped ones.
func (t *Trace) Total() uint64 {
	return t.seq
}

func owner(id joy.TaskID, ok bool) int {
	if !ok {
		return Idle
	}
	return int(id)
}

func causeName(c upbeat.Cause) string {
	if c.IsInterrupt() {
		return "interrupt: " + c.String()
	}
	return "exception: " + c.String()
}
