package interpreter

import (
	"context"
	"fmt"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/driver"
	"simple/interpreter-go/pkg/runtime"
)

// Outcome is the result of running a program document on a Machine.
type Outcome struct {
	Final State
	Steps int
	Err   error
}

// Value returns the final node when the program was an expression that reached a value.
func (o Outcome) Value() (ast.Value, bool) {
	value, ok := o.Final.Node.(ast.Value)
	return value, ok
}

// ProgramOptions turns a document's limits into machine options. Options passed later to
// NewMachine override these.
func ProgramOptions(program *driver.Program) []Option {
	if program == nil {
		return nil
	}
	return []Option{
		WithMaxSteps(program.Limits.MaxSteps),
		WithTimeout(program.Limits.Timeout),
	}
}

// RunProgram drives program to its normal form, emitting every state to sink.
func RunProgram(ctx context.Context, program *driver.Program, sink TraceSink, opts ...Option) Outcome {
	if program == nil || program.Root == nil {
		return Outcome{Err: fmt.Errorf("run: empty program")}
	}
	options := append(ProgramOptions(program), opts...)
	machine := NewMachine(program.Root, program.Environment, options...)
	final, err := machine.Run(ctx, sink)
	return Outcome{Final: final, Steps: machine.Steps(), Err: err}
}

// Verify compares the outcome with expect and returns one line per mismatch.
func (o Outcome) Verify(expect *driver.Expectation) []string {
	if expect == nil {
		if o.Err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", o.Err)}
		}
		return nil
	}
	var problems []string
	if expect.Error != "" {
		kind, ok := runtime.KindOf(o.Err)
		switch {
		case o.Err == nil:
			problems = append(problems, fmt.Sprintf("expected %s error, program completed", expect.Error))
		case !ok || kind != expect.Error:
			problems = append(problems, fmt.Sprintf("expected %s error, got %v", expect.Error, o.Err))
		}
		return problems
	}
	if o.Err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", o.Err)}
	}
	if expect.Environment != nil {
		for _, diff := range o.Final.Environment.Diff(expect.Environment) {
			problems = append(problems, "environment "+diff)
		}
	}
	if expect.Value != nil {
		if !ast.Equal(o.Final.Node, expect.Value) {
			problems = append(problems, fmt.Sprintf("value %s != %s", ast.Format(o.Final.Node), ast.Format(expect.Value)))
		}
	}
	if expect.Steps > 0 && o.Steps != expect.Steps {
		problems = append(problems, fmt.Sprintf("steps %d != %d", o.Steps, expect.Steps))
	}
	return problems
}
