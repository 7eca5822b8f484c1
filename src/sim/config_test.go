package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
interval = 500
cycles_per_instruction = 5
ticks = 40

[[task]]
program = "counter"
magic = 0x5a5a

[[task]]
program = "returner"
steps = 12

[[task]]
program = "faulter"
steps = 3
`

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(sampleConfig), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(500), c.Interval)
	assert.Equal(t, uint64(5), c.CyclesPerInstruction)
	assert.Equal(t, uint64(40), c.Ticks)
	assert.Equal(t, DefaultTraceLimit, c.TraceLimit, "unset keys keep the base value")
	require.Len(t, c.Tasks, 3)
	assert.Equal(t, uint64(0x5a5a), c.Tasks[0].Magic)

	progs, err := c.Programs()
	require.NoError(t, err)
	require.Len(t, progs, 3)
	assert.Equal(t, "counter", progs[0].Name())
	assert.Equal(t, uint64(0x5a5a), progs[0].(*Counter).Magic)
	assert.Equal(t, uint64(12), progs[1].(*Returner).Steps)
	assert.Equal(t, uint64(3), progs[2].(*Faulter).Steps)
}

func TestParseConfigWithoutTasksKeepsBase(t *testing.T) {
	c, err := ParseConfig([]byte("ticks = 9\n"), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), c.Ticks)
	assert.Equal(t, DefaultConfig().Tasks, c.Tasks)
}

func TestParseConfigRejects(t *testing.T) {
	for name, text := range map[string]string{
		"unknown key":     "intervall = 3\n",
		"unknown program": "[[task]]\nprogram = \"fork\"\n",
		"zero cycles":     "cycles_per_instruction = 0\n",
		"bad toml":        "interval = \n",
	} {
		_, err := ParseConfig([]byte(text), DefaultConfig())
		assert.Error(t, err, name)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	c, err := LoadConfig(path, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, c.Tasks, 3)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), DefaultConfig())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv(EnvTicks, "77")
	t.Setenv(EnvInterval, "0x100")
	c, err := LoadEnv(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(77), c.Ticks)
	assert.Equal(t, uint64(0x100), c.Interval)
	assert.Equal(t, uint64(1), c.CyclesPerInstruction)

	t.Setenv(EnvTicks, "many")
	_, err = LoadEnv(DefaultConfig())
	assert.Error(t, err)
}

func TestLoadEnvReadsDotenvFile(t *testing.T) {
	require.NoError(t, os.Unsetenv(EnvCycles))
	t.Cleanup(func() { os.Unsetenv(EnvCycles) })
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvCycles+"=4\n"), 0o644))

	c, err := LoadEnv(DefaultConfig(), filepath.Join(dir, "absent.env"), path)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), c.CyclesPerInstruction)
}
