package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"simple/interpreter-go/pkg/driver"
	"simple/interpreter-go/pkg/interpreter"
	"simple/interpreter-go/pkg/runtime"
)

const debugPrompt = "simple> "

const debugHelp = `Commands:
  step [n]   perform n transitions (default 1)
  run        reduce to normal form
  state      show the current state
  env        show the current environment
  reset      start over from the initial state
  quit       leave the debugger`

// debugSession steps one program under manual control.
type debugSession struct {
	program *driver.Program
	options []interpreter.Option
	machine *interpreter.Machine
	out     io.Writer
}

func newDebugSession(program *driver.Program, options []interpreter.Option, out io.Writer) *debugSession {
	s := &debugSession{program: program, options: options, out: out}
	s.reset()
	return s
}

func (s *debugSession) reset() {
	s.machine = interpreter.NewMachine(s.program.Root, s.program.Environment, s.options...)
}

func (s *debugSession) printState() {
	state := s.machine.State()
	marker := ""
	if state.Terminal() {
		marker = "  (normal form)"
	}
	fmt.Fprintf(s.out, "%4d  %s%s\n", state.Step, state, marker)
}

func (s *debugSession) report(err error) {
	if err == nil {
		return
	}
	if _, ok := runtime.KindOf(err); !ok {
		fmt.Fprintf(s.out, "stopped: %v\n", err)
		return
	}
	diag := interpreter.BuildRuntimeDiagnostic(err, s.program.Path, s.machine.State().Node)
	fmt.Fprintln(s.out, interpreter.DescribeRuntimeDiagnostic(diag))
}

// execute handles one debugger command and reports whether the session should end.
func (s *debugSession) execute(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "step", "s":
		count := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				fmt.Fprintln(s.out, "step expects a positive count")
				return false
			}
			count = n
		}
		for i := 0; i < count; i++ {
			if err := s.machine.Step(); err != nil {
				s.report(err)
				break
			}
			s.printState()
		}
	case "run", "r":
		start := s.machine.Steps()
		sink := interpreter.SinkFunc(func(state interpreter.State) error {
			if state.Step == start {
				return nil
			}
			_, err := fmt.Fprintf(s.out, "%4d  %s\n", state.Step, state)
			return err
		})
		if _, err := s.machine.Run(context.Background(), sink); err != nil {
			s.report(err)
			return false
		}
		fmt.Fprintf(s.out, "normal form after %d steps\n", s.machine.Steps())
	case "state", "p":
		s.printState()
	case "env", "e":
		fmt.Fprintln(s.out, s.machine.State().Environment)
	case "reset":
		s.reset()
		s.printState()
	case "help", "h", "?":
		fmt.Fprintln(s.out, debugHelp)
	case "quit", "q", "exit":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", fields[0])
	}
	return false
}

func runDebug(args []string, opts cliOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "simple debug expects exactly one program document or demo name")
		return 1
	}
	program, err := loadTarget(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "simple debug: %v\n", err)
		return 1
	}

	session := newDebugSession(program, opts.programMachineOptions(program), os.Stdout)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	fmt.Fprintf(os.Stdout, "Debugging %s. Type help for commands.\n", program.Name)
	session.printState()
	for {
		input, err := ln.Prompt(debugPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "simple debug: %v\n", err)
			return 1
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		ln.AppendHistory(input)
		if session.execute(input) {
			return 0
		}
	}
}
