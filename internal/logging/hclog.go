package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
	"github.com/sirupsen/logrus"
)

// hclogger implements hclog.Logger on top of a logrus logger so libraries
// that log through hclog share the process format and level.
type hclogger struct {
	name    string
	logger  *logrus.Logger
	implied []interface{}
	entry   *logrus.Entry
}

func NewHCLogrusLogger(name string, logger *logrus.Logger) hclog.Logger {
	return &hclogger{
		name:   name,
		logger: logger,
		entry:  logrus.NewEntry(logger).WithField("component", name),
	}
}

func (l *hclogger) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.NoLevel, hclog.Off:
		return
	}
	lvl := logrusLevel(level)
	if !l.logger.IsLevelEnabled(lvl) {
		return
	}
	l.entry.WithFields(fields(args)).Log(lvl, msg)
}

func (l *hclogger) Trace(msg string, args ...interface{}) { l.Log(hclog.Trace, msg, args...) }
func (l *hclogger) Debug(msg string, args ...interface{}) { l.Log(hclog.Debug, msg, args...) }
func (l *hclogger) Info(msg string, args ...interface{})  { l.Log(hclog.Info, msg, args...) }
func (l *hclogger) Warn(msg string, args ...interface{})  { l.Log(hclog.Warn, msg, args...) }
func (l *hclogger) Error(msg string, args ...interface{}) { l.Log(hclog.Error, msg, args...) }

func (l *hclogger) IsTrace() bool { return l.logger.IsLevelEnabled(logrus.TraceLevel) }
func (l *hclogger) IsDebug() bool { return l.logger.IsLevelEnabled(logrus.DebugLevel) }
func (l *hclogger) IsInfo() bool  { return l.logger.IsLevelEnabled(logrus.InfoLevel) }
func (l *hclogger) IsWarn() bool  { return l.logger.IsLevelEnabled(logrus.WarnLevel) }
func (l *hclogger) IsError() bool { return l.logger.IsLevelEnabled(logrus.ErrorLevel) }

func (l *hclogger) ImpliedArgs() []interface{} {
	return append([]interface{}(nil), l.implied...)
}

func (l *hclogger) With(args ...interface{}) hclog.Logger {
	implied := append(l.ImpliedArgs(), args...)
	return &hclogger{
		name:    l.name,
		logger:  l.logger,
		implied: implied,
		entry:   l.entry.WithFields(fields(args)),
	}
}

func (l *hclogger) Name() string { return l.name }

func (l *hclogger) Named(name string) hclog.Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return l.ResetNamed(name)
}

func (l *hclogger) ResetNamed(name string) hclog.Logger {
	return &hclogger{
		name:    name,
		logger:  l.logger,
		implied: l.ImpliedArgs(),
		entry:   l.entry.WithField("component", name),
	}
}

// SetLevel is a no-op, the level is owned by the logrus logger.
func (l *hclogger) SetLevel(hclog.Level) {}

func (l *hclogger) GetLevel() hclog.Level { return hclogLevel(l.logger.GetLevel()) }

func (l *hclogger) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(l.StandardWriter(opts), "", 0)
}

func (l *hclogger) StandardWriter(*hclog.StandardLoggerOptions) io.Writer {
	return l.entry.WriterLevel(logrus.InfoLevel)
}

// fields turns hclog key/value pairs into logrus fields. A trailing key
// without a value is kept under EXTRA_VALUE_AT_END, as hclog does.
func fields(args []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(args)/2+1)
	for i := 0; i+1 < len(args); i += 2 {
		f[fmt.Sprint(args[i])] = args[i+1]
	}
	if len(args)%2 == 1 {
		f["EXTRA_VALUE_AT_END"] = args[len(args)-1]
	}
	return f
}

func logrusLevel(l hclog.Level) logrus.Level {
	switch l {
	case hclog.Trace:
		return logrus.TraceLevel
	case hclog.Debug:
		return logrus.DebugLevel
	case hclog.Info:
		return logrus.InfoLevel
	case hclog.Warn:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}
