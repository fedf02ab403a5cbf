package logwrap

import (
	"fmt"
	"log"
	"log/syslog"
	"os"
)

// wrapperTag attributes the wrapper's own lines (dispositions, setup
// failures) as opposed to the child's output, which carries the invocation
// tag.
const wrapperTag = "logwrapper"

// Priority classifies a log line for the sink.
type Priority int

const (
	PriorityInfo Priority = iota
	PriorityError
)

func (p Priority) String() string {
	if p == PriorityError {
		return "E"
	}
	return "I"
}

// Sink receives one call per complete line relayed from the child, plus at
// most one disposition line and any setup/runtime error lines. Implementations
// must be safe for use from multiple invocations running on different
// goroutines.
type Sink interface {
	Log(p Priority, tag, format string, args ...any)
}

// StderrSink writes tagged lines to standard error through a stdlib logger.
// It is the default sink when an invocation does not supply one.
type StderrSink struct {
	logger *log.Logger
}

func NewStderrSink() *StderrSink {
	return &StderrSink{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *StderrSink) Log(p Priority, tag, format string, args ...any) {
	s.logger.Printf("%s %s: %s", p, tag, fmt.Sprintf(format, args...))
}

// SyslogSink routes lines to the local syslog daemon. The line tag travels in
// the message body because a syslog connection carries a single fixed tag.
type SyslogSink struct {
	writer *syslog.Writer
}

func NewSyslogSink() (*SyslogSink, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, wrapperTag)
	if err != nil {
		return nil, fmt.Errorf("connect to syslog: %w", err)
	}
	return &SyslogSink{writer: w}, nil
}

func (s *SyslogSink) Log(p Priority, tag, format string, args ...any) {
	msg := fmt.Sprintf("%s: %s", tag, fmt.Sprintf(format, args...))
	if p == PriorityError {
		_ = s.writer.Err(msg)
		return
	}
	_ = s.writer.Info(msg)
}

// Close releases the syslog connection.
func (s *SyslogSink) Close() error {
	return s.writer.Close()
}
