package sim

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpansMergeAndClose(t *testing.T) {
	records := []TrapRecord{
		{MTime: 100, From: Idle, To: 0},
		{MTime: 200, From: 0, To: 1},
		{MTime: 300, From: 1, To: 1},
		{MTime: 400, From: 1, To: 0},
	}
	spans := Spans(records, 450)
	assert.Equal(t, []Span{
		{Owner: 0, Start: 100, End: 200},
		{Owner: 1, Start: 200, End: 400},
		{Owner: 0, Start: 400, End: 450},
	}, spans)
}

func TestSaveTimeline(t *testing.T) {
	m, _ := newMachine(t, 100, counters(3)...)
	require.NoError(t, m.RunTicks(12))
	path := filepath.Join(t.TempDir(), "timeline.png")
	require.NoError(t, m.SaveTimeline(path, 640))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 4*timelineRow+2*timelineMargin, img.Bounds().Dy())
}

func TestRenderEmptyTimeline(t *testing.T) {
	img := RenderTimeline(nil, 2, 200)
	assert.Equal(t, 200, img.Bounds().Dx())
}
