package trustzap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hifive/src/lib/trust"
)

func TestSinkMapsLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := trust.NewLogger(New(zap.New(core)))
	l.SetHalt(func(int) {})

	l.Errorf("cannot create task at 0x%x", 0x100)
	l.Warnf("careful")
	l.Infof("timer initialized, interval %d", 1000)
	l.Debugf("switch %d -> %d", 0, 1)
	l.Statsf("sched", "switches=%d", 7)
	l.Fatalf(2, "no recovery")

	entries := logs.AllUntimed()
	require.Len(t, entries, 6)
	want := []zapcore.Level{
		zapcore.ErrorLevel, zapcore.WarnLevel, zapcore.InfoLevel,
		zapcore.DebugLevel, zapcore.DebugLevel, zapcore.ErrorLevel,
	}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Level, "entry %d: %s", i, e.Message)
	}
	assert.Equal(t, "cannot create task at 0x100", entries[0].Message)
	assert.Equal(t, "[sched] switches=7", entries[4].Message)
	assert.Equal(t, true, entries[4].ContextMap()["stats"])
	assert.Equal(t, true, entries[5].ContextMap()["fatal"])
}

func TestSinkRespectsZapLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := trust.NewLogger(New(zap.New(core)))
	l.Debugf("dropped")
	l.Infof("kept")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}
