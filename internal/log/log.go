// Package log is the ambient structured-logging facade shared by the space and
// syclop packages. It gives each component a named logger
// without the full appender/level-registry machinery, since nothing in this
// module needs dynamic log-level reconfiguration at runtime.
package log

import "go.uber.org/zap"

// Logger is a named structured logger. The zero value is not usable; construct one
// with New or Nop.
type Logger struct {
	sugar *zap.SugaredLogger
	name  string
}

// New returns a production logger (Info level and above, JSON-encoded) named
// after the component that owns it.
func New(name string) *Logger {
	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{sugar: zl.Sugar().Named(name), name: name}
}

// Nop returns a logger that discards everything. Components default to this when
// constructed without an explicit logger.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), name: "nop"}
}

// Named returns a child logger scoped under the given name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return Nop().Named(name)
	}
	return &Logger{sugar: l.sugar.Named(name), name: l.name + "." + name}
}

func (l *Logger) Info(args ...interface{})  { l.orNop().sugar.Info(args...) }
func (l *Logger) Debug(args ...interface{}) { l.orNop().sugar.Debug(args...) }
func (l *Logger) Error(args ...interface{}) { l.orNop().sugar.Error(args...) }

func (l *Logger) Infof(template string, args ...interface{})  { l.orNop().sugar.Infof(template, args...) }
func (l *Logger) Debugf(template string, args ...interface{}) { l.orNop().sugar.Debugf(template, args...) }
func (l *Logger) Errorf(template string, args ...interface{}) { l.orNop().sugar.Errorf(template, args...) }

func (l *Logger) orNop() *Logger {
	if l == nil || l.sugar == nil {
		return Nop()
	}
	return l
}
