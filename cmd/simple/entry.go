package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/driver"
	"simple/interpreter-go/pkg/interpreter"
	"simple/interpreter-go/pkg/runtime"
)

func runEntry(args []string, opts cliOptions, mode executionMode) int {
	label := modeCommandLabel(mode)
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s expects exactly one program document or demo name\n", label)
		return 1
	}
	program, err := loadTarget(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", label, err)
		return 1
	}

	switch mode {
	case modeEval:
		return evalProgram(program)
	case modeCheck:
		return checkProgram(program, opts)
	default:
		return runProgram(program, opts)
	}
}

// loadTarget reads a program document, falling back to the built-in demo of that name.
func loadTarget(target string) (*driver.Program, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("empty program target")
	}
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("%s is a directory (use `simple test` to run a workspace)", target)
	case err == nil:
		return driver.LoadProgram(target)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	if demo, ok := driver.Demo(target); ok {
		return demo, nil
	}
	if driver.IsProgramFile(target) {
		return nil, fmt.Errorf("program document %s not found", target)
	}
	return nil, fmt.Errorf("no program document or demo named %q (see `simple demos`)", target)
}

func runProgram(program *driver.Program, opts cliOptions) int {
	sink := interpreter.NewWriterSink(os.Stdout)
	outcome := interpreter.RunProgram(context.Background(), program, sink, opts.machineOptions()...)
	if outcome.Err != nil {
		reportFailure("simple run", program, outcome.Err, outcome.Final.Node)
		return 1
	}
	return 0
}

func evalProgram(program *driver.Program) int {
	value, env, err := interpreter.EvaluateNode(program.Root, program.Environment)
	if err != nil {
		reportFailure("simple eval", program, err, nil)
		return 1
	}
	if value != nil {
		fmt.Fprintln(os.Stdout, ast.Format(value))
		return 0
	}
	fmt.Fprintln(os.Stdout, env.String())
	return 0
}

func checkProgram(program *driver.Program, opts cliOptions) int {
	result, err := interpreter.CrossCheck(context.Background(), program.Root, program.Environment, opts.programMachineOptions(program)...)
	if err != nil {
		reportFailure("simple check", program, err, result.SmallStep.Node)
		return 1
	}
	if !result.Consistent() {
		fmt.Fprintf(os.Stderr, "simple check: %s: small-step and big-step results differ\n", program.Name)
		for _, diff := range result.Diffs {
			fmt.Fprintf(os.Stderr, "  %s\n", diff)
		}
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s: consistent after %d steps: %s\n", program.Name, result.Steps, result.SmallStep)
	return 0
}

// reportFailure prints runtime errors as located diagnostics and anything else with the
// command prefix.
func reportFailure(label string, program *driver.Program, err error, current ast.Node) {
	if _, ok := runtime.KindOf(err); ok {
		diag := interpreter.BuildRuntimeDiagnostic(err, program.Path, current)
		fmt.Fprintln(os.Stderr, interpreter.DescribeRuntimeDiagnostic(diag))
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", label, err)
}
