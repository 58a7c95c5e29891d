// Package logx defines the lifecycle-scoped logging interface used across
// the module. There is no package-level logger: every component that needs
// to log takes a Logger through its constructor, so the core never depends
// on process-global state.
package logx

import (
	"fmt"
	"log"
	"os"
)

// Logger is the minimal surface components depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Nop discards everything. Useful as a zero-value default and in tests.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}

// Std writes level-prefixed lines to an *log.Logger, defaulting to stderr.
type Std struct {
	logger *log.Logger
	debug  bool
}

// NewStd builds a Std logger. debug controls whether Debugf lines are
// emitted; Infof/Warnf/Errorf always are.
func NewStd(debug bool) *Std {
	return &Std{logger: log.New(os.Stderr, "", log.LstdFlags), debug: debug}
}

func (s *Std) Debugf(format string, args ...any) {
	if s.debug {
		s.logger.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
	}
}

func (s *Std) Infof(format string, args ...any) {
	s.logger.Output(2, "INFO  "+fmt.Sprintf(format, args...))
}

func (s *Std) Warnf(format string, args ...any) {
	s.logger.Output(2, "WARN  "+fmt.Sprintf(format, args...))
}

func (s *Std) Errorf(format string, args ...any) {
	s.logger.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}
