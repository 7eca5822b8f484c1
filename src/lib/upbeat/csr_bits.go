package upbeat

// mstatus bits (machine mode view).
const (
	MStatusMIE      = 1 << 3
	MStatusMPIE     = 1 << 7
	MStatusMPPShift = 11
	MStatusMPPMask  = 3 << MStatusMPPShift
	MStatusMPPM     = 3 << MStatusMPPShift
)

// mie / mip bits.
const (
	MIEMSIE = 1 << MachineSoftwareInterrupt
	MIEMTIE = 1 << MachineTimerInterrupt
	MIEMEIE = 1 << MachineExternalInterrupt
)

// mtvec mode lives in the low two bits.
const (
	MTVecModeDirect   = 0
	MTVecModeVectored = 1
	MTVecModeMask     = 3
)

// MTVecDirect is the value to put in mtvec for a direct mode handler at
// addr.  The handler must be 4 byte aligned, so the mode bits are free.
func MTVecDirect(addr uintptr) uintptr {
	return (addr &^ MTVecModeMask) | MTVecModeDirect
}

// TaskMStatus is the mstatus a fresh task is entered with via mret: stay in
// machine mode and come out with interrupts on.
const TaskMStatus = MStatusMPPM | MStatusMPIE
