package main

import (
	"io"

	"go.uber.org/zap"

	"hifive/src/lib/trust"
	"hifive/src/lib/trust/trustzap"
)

// lineReader pulls newline terminated lines off the serial port.  Control
// characters (the \r of \r\n included) are dropped, and so is anything past
// the end of the buffer.
type lineReader struct {
	in      io.Reader
	buf     []byte
	dropped int
}

func newLineReader(in io.Reader, max int) *lineReader {
	return &lineReader{in: in, buf: make([]byte, max)}
}

// Read returns the next line without its terminator.  A line cut off by
// the end of input is returned along with io.EOF.
func (l *lineReader) Read() (string, error) {
	count := 0
	l.dropped = 0
	var one [1]byte
	for {
		r, err := l.in.Read(one[:])
		if r == 1 {
			c := one[0]
			switch {
			case c == '\n':
				return string(l.buf[:count]), nil
			case c < 32 && c != '\t':
			case count == len(l.buf):
				l.dropped++
			default:
				l.buf[count] = c
				count++
			}
		}
		if err != nil {
			if count > 0 && err == io.EOF {
				return string(l.buf[:count]), io.EOF
			}
			return "", err
		}
	}
}

// Dropped is how many characters the last line lost to the buffer limit.
func (l *lineReader) Dropped() int {
	return l.dropped
}

// relay re-emits one line from the board.  Lines the kernel's logger wrote
// keep their level, anything else (the tasks write straight to the UART)
// comes out at info as console output.
func relay(log *zap.Logger, line string) {
	level, msg, ok := trust.ParsePrefix(line)
	if !ok {
		log.Info(line, zap.String("source", "console"))
		return
	}
	fields := []zap.Field{zap.String("source", "kernel")}
	if trust.IsFatal(level) {
		fields = append(fields, zap.Bool("fatal", true))
	}
	if ce := log.Check(trustzap.Level(level), msg); ce != nil {
		ce.Write(fields...)
	}
}
