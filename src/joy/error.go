package joy

const subsystemMask = 0x00ff_0000_0000_0000
const taskIDMask = 0x0000_ffff_0000_0000
const errorNumberMask = 0x0000_0000_0000_ffff

const JoyNoError = JoyError(0)

// Scheduler Errors
const SchedulerSubsystem = 1
const SchedulerFull = 1
const SchedulerBadTransition = 2
const SchedulerBadTask = 3

var ErrorSchedulerFull = errorValue(SchedulerSubsystem, SchedulerFull)
var ErrorSchedulerBadTransition = errorValue(SchedulerSubsystem, SchedulerBadTransition)
var ErrorSchedulerBadTask = errorValue(SchedulerSubsystem, SchedulerBadTask)

// Trap Errors
const TrapSubsystem = 2
const TrapUnhandledException = 1
const TrapContextMismatch = 2

var ErrorUnhandledException = errorValue(TrapSubsystem, TrapUnhandledException)
var ErrorTrapContextMismatch = errorValue(TrapSubsystem, TrapContextMismatch)

// Timer Errors
const TimerSubsystem = 3
const TimerMisconfiguration = 1

var ErrorTimerMisconfiguration = errorValue(TimerSubsystem, TimerMisconfiguration)

// JoyError is a subsystem, an error number and (optionally) the task that
// was involved, packed in one word so it can be produced in trap context
// without allocating.
type JoyError uint64
type RawJoyError uint64 // error with just the constant part of the value filled in

var errorText = [...]struct {
	raw  RawJoyError
	text string
}{
	{ErrorSchedulerFull, "scheduler full: no available task slot"},
	{ErrorSchedulerBadTransition, "task state transition not allowed"},
	{ErrorSchedulerBadTask, "no such task"},
	{ErrorUnhandledException, "unhandled synchronous exception"},
	{ErrorTrapContextMismatch, "trap saved into a context that is not current"},
	{ErrorTimerMisconfiguration, "timer interrupt before the timer was initialized"},
}

func errorValue(subsys byte, errorNumber uint16) RawJoyError {
	ss := subsystemMask & (uint64(subsys) << 48)
	en := errorNumberMask & (uint64(errorNumber) << 0)
	return RawJoyError(ss | en)
}

// MakeError adds the dynamic fields (the task involved) to the error value.
// Pass NoTask if no task is involved.
func MakeError(rawError RawJoyError, id TaskID) JoyError {
	raw := uint64(rawError)
	tid := (uint64(id) << 32) & taskIDMask
	return JoyError(raw | tid)
}

// Raw strips the task id, so errors can be compared with the Error* values.
func (j JoyError) Raw() RawJoyError {
	return RawJoyError(uint64(j) &^ taskIDMask)
}

func (j JoyError) Is(raw RawJoyError) bool {
	return j.Raw() == raw
}

func (j JoyError) Subsystem() byte {
	return byte((uint64(j) & subsystemMask) >> 48)
}

func (j JoyError) Number() uint16 {
	return uint16(uint64(j) & errorNumberMask)
}

func (j JoyError) Task() TaskID {
	return TaskID((uint64(j) & taskIDMask) >> 32)
}

// Error makes JoyError usable as an error on the host side.
func (j JoyError) Error() string {
	if j == JoyNoError {
		return "no error"
	}
	text := "unknown error code"
	for _, e := range errorText {
		if e.raw == j.Raw() {
			text = e.text
			break
		}
	}
	if j.Task() == NoTask {
		return text
	}
	return "task " + itoa(uint64(j.Task())) + ": " + text
}

// itoa without strconv; this is called from trap context on the way to a
// halt.
func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
