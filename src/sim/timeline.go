package sim

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

const (
	timelineRow    = 24
	timelineLabel  = 64
	timelineMargin = 8
)

var timelinePalette = []color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff},
	{0xff, 0x7f, 0x0e, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0xd6, 0x27, 0x28, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x8c, 0x56, 0x4b, 0xff},
	{0xe3, 0x77, 0xc2, 0xff},
	{0xbc, 0xbd, 0x22, 0xff},
}

var timelineIdle = color.RGBA{0xc0, 0xc0, 0xc0, 0xff}

// Span is a stretch of mtime during which one owner had the processor.
type Span struct {
	Owner int
	Start uint64
	End   uint64
}

// Spans turns a trace into who-ran-when.  The last owner's span runs to
// end.  Traps before the first record are not known, so the first span
// starts at the first trap.
func Spans(records []TrapRecord, end uint64) []Span {
	var spans []Span
	for i, r := range records {
		stop := end
		if i+1 < len(records) {
			stop = records[i+1].MTime
		}
		if stop <= r.MTime {
			continue
		}
		if n := len(spans); n > 0 && spans[n-1].Owner == r.To && spans[n-1].End == r.MTime {
			spans[n-1].End = stop
			continue
		}
		spans = append(spans, Span{Owner: r.To, Start: r.MTime, End: stop})
	}
	return spans
}

// RenderTimeline draws one row for the idle loop and one per task, with a
// bar wherever that row owned the processor.
func RenderTimeline(spans []Span, tasks int, width int) image.Image {
	rows := tasks + 1
	height := rows*timelineRow + 2*timelineMargin
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if len(spans) == 0 {
		return dc.Image()
	}
	first, last := spans[0].Start, spans[len(spans)-1].End
	plot := float64(width - timelineLabel - 2*timelineMargin)
	scale := plot / float64(last-first)

	for row := 0; row < rows; row++ {
		y := float64(timelineMargin + row*timelineRow)
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(ownerName(row-1), timelineMargin, y+timelineRow/2, 0, 0.5)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawLine(timelineLabel, y+timelineRow, float64(width-timelineMargin), y+timelineRow)
		dc.Stroke()
	}
	for _, s := range spans {
		row := s.Owner + 1
		if row < 0 || row >= rows {
			continue
		}
		x := timelineLabel + float64(s.Start-first)*scale
		w := float64(s.End-s.Start) * scale
		if w < 1 {
			w = 1
		}
		dc.SetColor(ownerColor(s.Owner))
		dc.DrawRectangle(x, float64(timelineMargin+row*timelineRow+3), w, timelineRow-6)
		dc.Fill()
	}
	return dc.Image()
}

// SaveTimeline renders the machine's trace as a PNG.
func (m *Machine) SaveTimeline(path string, width int) error {
	spans := Spans(m.trace.Records(), m.Clint.mtime)
	img := RenderTimeline(spans, m.created, width)
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("saving timeline: %w", err)
	}
	return nil
}

func ownerColor(o int) color.Color {
	if o == Idle {
		return timelineIdle
	}
	return timelinePalette[o%len(timelinePalette)]
}
