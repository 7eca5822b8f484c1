// Package trustzap sends trust's lines to a zap logger, for the host side
// tools that run kernel code.
package trustzap

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hifive/src/lib/trust"
)

// Sink is a trust.Sink backed by zap.  Stats lines go out at debug with a
// "stats" field.
type Sink struct {
	log *zap.Logger
}

func New(l *zap.Logger) *Sink {
	return &Sink{log: l}
}

// Level maps a trust mask level onto zap's.
func Level(l trust.MaskLevel) zapcore.Level {
	switch {
	case trust.IsFatal(l):
		return zapcore.ErrorLevel
	case l == trust.ErrorMask:
		return zapcore.ErrorLevel
	case l == trust.WarnMask:
		return zapcore.WarnLevel
	case l == trust.InfoMask:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

func (s *Sink) WriteLine(l trust.MaskLevel, line string) {
	ce := s.log.Check(Level(l), line)
	if ce == nil {
		return
	}
	var fields []zap.Field
	switch {
	case trust.IsFatal(l):
		fields = append(fields, zap.Bool("fatal", true))
	case l == trust.StatsMask:
		fields = append(fields, zap.Bool("stats", true))
	}
	ce.Write(fields...)
}
