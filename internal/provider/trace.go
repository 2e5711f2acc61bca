package provider

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Trace records the ordered, human-readable steps of one pipeline run and
// mirrors each line to the structured logger.
type Trace struct {
	mu     sync.Mutex
	prefix string
	lines  []string
	logger *zap.Logger
}

// NewTrace starts a trace whose lines are prefixed with "[name]".
func NewTrace(name string, logger *zap.Logger) *Trace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trace{prefix: "[" + name + "] ", logger: logger}
}

// Addf appends a formatted line.
func (t *Trace) Addf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.logger.Info(msg)

	t.mu.Lock()
	t.lines = append(t.lines, t.prefix+msg)
	t.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (t *Trace) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.lines...)
}
