package trust

import (
	"fmt"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	StatsMask MaskLevel = 0x10
	fatalMask MaskLevel = 0x80
)

// Sink is where formatted lines end up.  The line never carries a trailing
// newline and the level is always exactly one of the masks above (or the
// fatal mask).  On the board this is the UART, on the host it's whatever
// logger the tool is using.
type Sink interface {
	WriteLine(l MaskLevel, line string)
}

// Logger is a leveled, masked logger over a Sink.  The zero value drops
// everything except fatal messages on the floor.
type Logger struct {
	sink  Sink
	level MaskLevel
	halt  func(exitCode int)
}

// NewLogger returns a logger that prints every level to s.
func NewLogger(s Sink) *Logger {
	return &Logger{
		sink:  s,
		level: fatalMask | StatsMask | ErrorMask | WarnMask | InfoMask | DebugMask,
		halt:  spin,
	}
}

var std = NewLogger(nil)

// Default is the logger used by the package level functions.
func Default() *Logger {
	return std
}

// SetSink changes the output of the package level logger.  Called once, at
// boot, before anything interesting can go wrong.
func SetSink(s Sink) {
	std.sink = s
}

// SetHalt changes what Fatalf does after printing.  The board installs a
// wfi loop, tests install something that panics so they can observe it.
func SetHalt(fn func(exitCode int)) {
	std.SetHalt(fn)
}

// SetLevel lets you set an error mask directly. You can pass in something like
// ErrorMask | DebugMask to control exactly what gets printed.  It returns the
// previous mask.
func SetLevel(mask MaskLevel) MaskLevel {
	return std.SetLevel(mask)
}

func Level() MaskLevel {
	return std.level
}

func (l *Logger) SetHalt(fn func(exitCode int)) {
	if fn == nil {
		fn = spin
	}
	l.halt = fn
}

func (l *Logger) SetLevel(mask MaskLevel) MaskLevel {
	if mask&0x1f == 0 {
		l.emit(WarnMask, "trust.SetLevel is turning off log messages")
	}
	r := l.level & 0x1f
	l.level = (mask & 0x1f) | fatalMask
	return r
}

// LevelToString is the human readable form of the mask, lowest level last.
func (l *Logger) LevelToString() string {
	result := ""
	if l.level&ErrorMask > 0 {
		result += "error "
	}
	if l.level&WarnMask > 0 {
		result += "warn "
	}
	if l.level&InfoMask > 0 {
		result += "info "
	}
	if l.level&DebugMask > 0 {
		result += "debug "
	}
	if l.level&StatsMask > 0 {
		result += "stats"
	}
	return result
}

func (l *Logger) logf(m MaskLevel, format string, params ...interface{}) {
	if l.level&m == 0 {
		return
	}
	l.emit(m, fmt.Sprintf(format, params...))
}

func (l *Logger) emit(m MaskLevel, line string) {
	if l.sink == nil {
		return
	}
	for len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	l.sink.WriteLine(m, line)
}

// Fatalf prints the given log message (format + params) and then halts with
// the exitCode provided.  Fatalf is not maskable.  On the board it does not
// return.
func (l *Logger) Fatalf(exitCode int, format string, params ...interface{}) {
	l.logf(fatalMask, format, params...)
	l.halt(exitCode)
}

// Errorf prints the given log message (format + params) using the ErrorMask level.
func (l *Logger) Errorf(format string, params ...interface{}) {
	l.logf(ErrorMask, format, params...)
}

// Warnf prints the given log message (format + params) using the WarnMask level.
func (l *Logger) Warnf(format string, params ...interface{}) {
	l.logf(WarnMask, format, params...)
}

// Infof prints the given log message (format + params) using the InfoMask level.
func (l *Logger) Infof(format string, params ...interface{}) {
	l.logf(InfoMask, format, params...)
}

// Debugf prints the given log message (format + params) using the DebugMask level.
func (l *Logger) Debugf(format string, params ...interface{}) {
	l.logf(DebugMask, format, params...)
}

// Statsf takes an extra parameter that will be visible in the log message as
// the category of stats that is reported.
func (l *Logger) Statsf(category string, format string, params ...interface{}) {
	l.logf(StatsMask, "["+category+"] "+format, params...)
}

func Fatalf(exitCode int, format string, params ...interface{}) {
	std.Fatalf(exitCode, format, params...)
}

func Errorf(format string, params ...interface{}) {
	std.Errorf(format, params...)
}

func Warnf(format string, params ...interface{}) {
	std.Warnf(format, params...)
}

func Infof(format string, params ...interface{}) {
	std.Infof(format, params...)
}

func Debugf(format string, params ...interface{}) {
	std.Debugf(format, params...)
}

func Statsf(category string, format string, params ...interface{}) {
	std.Statsf(category, format, params...)
}

// spin is the default halt: there is nowhere to go back to.
func spin(int) {
	for {
	}
}
