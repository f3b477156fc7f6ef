// Package trace implements the "Logging sink" collaborator spec.md §1
// describes only by its boundary contract: it receives debug trace lines
// when verbose mode is enabled. It wraps github.com/tliron/commonlog (the
// logging library used by the teacher's LSP server, server/lsp.go),
// registering the simple stderr sink the way that file does with its
// blank _ "github.com/tliron/commonlog/simple" import.
package trace

import (
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const defaultVerbosity = 1

var configureOnce sync.Once

// Sink is a named, optionally-enabled debug trace destination. A Sink
// with enabled=false costs nothing beyond the branch in Instruction.
type Sink struct {
	logger  commonlog.Logger
	enabled bool
}

// New returns a Sink named name. Passing enabled=false (the default when
// a State is not running in verbose mode) makes every method a no-op.
func New(name string, enabled bool) *Sink {
	configureOnce.Do(func() {
		commonlog.Configure(defaultVerbosity, nil)
	})
	return &Sink{logger: commonlog.GetLogger(name), enabled: enabled}
}

// Instruction logs one dispatched opcode: the run correlation id (see
// internal/progcache), the instruction pointer, the opcode name, and the
// resulting stack depth.
func (s *Sink) Instruction(runID string, ip int, op string, depth int) {
	if s == nil || !s.enabled {
		return
	}
	s.logger.Debugf("run=%s ip=%04d op=%-12s depth=%d", runID, ip, op, depth)
}

// Errorf logs a VM-level error. Unlike Instruction this always logs,
// regardless of verbose mode — errors are never silent.
func (s *Sink) Errorf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	s.logger.Errorf(format, args...)
}
