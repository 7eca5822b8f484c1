package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLineReaderStripsControlCharacters(t *testing.T) {
	lr := newLineReader(strings.NewReader(" INFO:trap vector installed\r\nTask 1 running\r\n\x00\r\n"), 64)
	line, err := lr.Read()
	require.NoError(t, err)
	assert.Equal(t, " INFO:trap vector installed", line)
	line, err = lr.Read()
	require.NoError(t, err)
	assert.Equal(t, "Task 1 running", line)
	line, err = lr.Read()
	require.NoError(t, err)
	assert.Equal(t, "", line)
	_, err = lr.Read()
	assert.Equal(t, io.EOF, err)
}

func TestLineReaderTruncates(t *testing.T) {
	lr := newLineReader(strings.NewReader("abcdefghij\nxy\n"), 4)
	line, err := lr.Read()
	require.NoError(t, err)
	assert.Equal(t, "abcd", line)
	assert.Equal(t, 6, lr.Dropped())
	line, err = lr.Read()
	require.NoError(t, err)
	assert.Equal(t, "xy", line)
	assert.Zero(t, lr.Dropped())
}

func TestLineReaderReturnsPartialLastLine(t *testing.T) {
	lr := newLineReader(strings.NewReader("FATAL:no recov"), 64)
	line, err := lr.Read()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "FATAL:no recov", line)
}

func TestRelayKeepsKernelLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	relay(log, "ERROR:task 3: scheduler full: no available task slot")
	relay(log, " WARN:careful")
	relay(log, "DEBUG:switch 0 -> 1")
	relay(log, "FATAL:no recovery for illegal instruction at 0x80004444")
	relay(log, "Task 2 running")

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "task 3: scheduler full: no available task slot", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, true, entries[3].ContextMap()["fatal"])
	assert.Equal(t, "Task 2 running", entries[4].Message)
	assert.Equal(t, "console", entries[4].ContextMap()["source"])
}
