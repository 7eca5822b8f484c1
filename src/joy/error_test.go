package joy

import "testing"

func TestErrorFields(t *testing.T) {
	err := MakeError(ErrorSchedulerBadTransition, 5)
	if err.Subsystem() != SchedulerSubsystem {
		t.Errorf("expected subsystem %d but got %d", SchedulerSubsystem, err.Subsystem())
	}
	if err.Number() != SchedulerBadTransition {
		t.Errorf("expected number %d but got %d", SchedulerBadTransition, err.Number())
	}
	if err.Task() != 5 {
		t.Errorf("expected task 5 but got %d", err.Task())
	}
	if !err.Is(ErrorSchedulerBadTransition) || err.Is(ErrorSchedulerBadTask) {
		t.Errorf("Is should ignore the task and nothing else")
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  JoyError
		text string
	}{
		{JoyNoError, "no error"},
		{MakeError(ErrorSchedulerFull, NoTask), "scheduler full: no available task slot"},
		{MakeError(ErrorUnhandledException, 12), "task 12: unhandled synchronous exception"},
		{MakeError(ErrorTimerMisconfiguration, 0), "task 0: timer interrupt before the timer was initialized"},
		{JoyError(errorValue(9, 9)) | JoyError(uint64(NoTask)<<32), "unknown error code"},
	}
	for _, test := range tests {
		if got := test.err.Error(); got != test.text {
			t.Errorf("expected %q but got %q", test.text, got)
		}
	}
}
