package joy

// Register numbers in the integer register file, by ABI name.  Only the ones
// the kernel touches on its own are named.
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegGP   = 3
	RegTP   = 4
	RegT0   = 5
	RegA0   = 10
	RegA1   = 11
	RegT6   = 31
)

//
// RegisterSavedState is the saved registers from the last time the task
// was executing.  The layout is shared with trap_entry.S: x0..x31 at 8*n,
// then mepc, then mstatus.  Do not reorder.
//
type RegisterSavedState struct {
	X       [32]uint64
	PC      uint64
	MStatus uint64
}

const (
	ContextPCOffset      = 32 * 8
	ContextMStatusOffset = 33 * 8
	ContextSize          = 34 * 8
)

func (r *RegisterSavedState) SP() uint64 {
	return r.X[RegSP]
}

// Clear zeros everything, including the (always zero) x0 slot.
func (r *RegisterSavedState) Clear() {
	*r = RegisterSavedState{}
}
