package trust

// StringWriter is the least a byte-at-a-time device has to offer to be a
// text sink.  The UART driver satisfies it.
type StringWriter interface {
	WriteString(s string) (int, error)
}

type textSink struct {
	w StringWriter
}

// NewTextSink produces lines of the form "ERROR:message\n" on w.  Write
// errors are ignored, there is nobody to report them to.
func NewTextSink(w StringWriter) Sink {
	return &textSink{w: w}
}

func (t *textSink) WriteLine(l MaskLevel, line string) {
	_, _ = t.w.WriteString(Prefix(l) + line + "\n")
}

// Prefix is the fixed width marker put in front of text lines.
func Prefix(l MaskLevel) string {
	switch {
	case l&fatalMask > 0:
		return "FATAL:"
	case l&ErrorMask > 0:
		return "ERROR:"
	case l&WarnMask > 0:
		return " WARN:"
	case l&InfoMask > 0:
		return " INFO:"
	case l&DebugMask > 0:
		return "DEBUG:"
	case l&StatsMask > 0:
		return "STATS:"
	}
	return "     :"
}

// IsFatal reports whether a level handed to a Sink came from Fatalf.
func IsFatal(l MaskLevel) bool {
	return l&fatalMask > 0
}

// ParsePrefix undoes Prefix on a line read back from a text sink.  ok is
// false when the line does not start with a known marker.
func ParsePrefix(line string) (l MaskLevel, msg string, ok bool) {
	if len(line) < 6 {
		return Nothing, line, false
	}
	switch line[:6] {
	case "FATAL:":
		l = fatalMask
	case "ERROR:":
		l = ErrorMask
	case " WARN:":
		l = WarnMask
	case " INFO:":
		l = InfoMask
	case "DEBUG:":
		l = DebugMask
	case "STATS:":
		l = StatsMask
	default:
		return Nothing, line, false
	}
	return l, line[6:], true
}
