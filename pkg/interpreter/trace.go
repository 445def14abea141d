package interpreter

import (
	"fmt"
	"io"

	"github.com/samber/lo"
)

// TraceSink consumes machine states in emission order.
type TraceSink interface {
	Emit(State) error
}

// SinkFunc adapts a function to TraceSink.
type SinkFunc func(State) error

func (f SinkFunc) Emit(state State) error {
	return f(state)
}

// Recorder keeps every emitted state.
type Recorder struct {
	States []State
}

func (r *Recorder) Emit(state State) error {
	r.States = append(r.States, state)
	return nil
}

// Lines renders the recorded states as trace lines.
func (r *Recorder) Lines() []string {
	return lo.Map(r.States, func(state State, _ int) string {
		return state.String()
	})
}

// Last returns the final recorded state.
func (r *Recorder) Last() (State, bool) {
	if len(r.States) == 0 {
		return State{}, false
	}
	return r.States[len(r.States)-1], true
}

// WriterSink prints one `statement, {environment}` line per state.
type WriterSink struct {
	w        io.Writer
	numbered bool
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Numbered prefixes each line with its step number.
func (s *WriterSink) Numbered() *WriterSink {
	s.numbered = true
	return s
}

func (s *WriterSink) Emit(state State) error {
	var err error
	if s.numbered {
		_, err = fmt.Fprintf(s.w, "%4d  %s\n", state.Step, state.String())
	} else {
		_, err = fmt.Fprintln(s.w, state.String())
	}
	return err
}
