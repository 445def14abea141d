package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"simple/interpreter-go/pkg/driver"
	"simple/interpreter-go/pkg/interpreter"
)

type cliOptions struct {
	maxSteps int
	timeout  time.Duration
	verbose  bool
}

// defaultOptions seeds the global options from SIMPLE_MAX_STEPS and SIMPLE_LOG.
func defaultOptions() (cliOptions, error) {
	var opts cliOptions
	if raw := strings.TrimSpace(os.Getenv("SIMPLE_MAX_STEPS")); raw != "" {
		steps, err := parsePositiveInt(raw, "SIMPLE_MAX_STEPS", 1)
		if err != nil {
			return opts, err
		}
		opts.maxSteps = steps
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SIMPLE_LOG"))) {
	case "debug", "1", "true":
		opts.verbose = true
	}
	return opts, nil
}

func parseGlobalOptions(args []string) (cliOptions, []string, error) {
	opts, err := defaultOptions()
	if err != nil {
		return opts, nil, err
	}
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		switch {
		case arg == "--verbose" || arg == "-v":
			opts.verbose = true
		case arg == "--max-steps":
			value, err := expectFlagValue(arg, nextArg(args, &i))
			if err != nil {
				return opts, nil, err
			}
			if opts.maxSteps, err = parsePositiveInt(value, "--max-steps", 1); err != nil {
				return opts, nil, err
			}
		case strings.HasPrefix(arg, "--max-steps="):
			if opts.maxSteps, err = parsePositiveInt(strings.TrimPrefix(arg, "--max-steps="), "--max-steps", 1); err != nil {
				return opts, nil, err
			}
		case arg == "--timeout":
			value, err := expectFlagValue(arg, nextArg(args, &i))
			if err != nil {
				return opts, nil, err
			}
			if opts.timeout, err = parseTimeout(value); err != nil {
				return opts, nil, err
			}
		case strings.HasPrefix(arg, "--timeout="):
			if opts.timeout, err = parseTimeout(strings.TrimPrefix(arg, "--timeout=")); err != nil {
				return opts, nil, err
			}
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

// machineOptions returns the overrides the command line places on top of a program's own
// limits.
func (o cliOptions) machineOptions() []interpreter.Option {
	var options []interpreter.Option
	if o.maxSteps > 0 {
		options = append(options, interpreter.WithMaxSteps(o.maxSteps))
	}
	if o.timeout > 0 {
		options = append(options, interpreter.WithTimeout(o.timeout))
	}
	if o.verbose {
		options = append(options, interpreter.WithLogger(newLogger(os.Stderr)))
	}
	return options
}

// programMachineOptions combines the program's limits with the command-line overrides.
func (o cliOptions) programMachineOptions(program *driver.Program) []interpreter.Option {
	return append(interpreter.ProgramOptions(program), o.machineOptions()...)
}

func newLogger(w *os.File) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func nextArg(args []string, index *int) string {
	*index = *index + 1
	if *index >= len(args) {
		return ""
	}
	return args[*index]
}

func expectFlagValue(flag string, value string) (string, error) {
	if value == "" || strings.HasPrefix(value, "-") {
		return "", fmt.Errorf("%s expects a value", flag)
	}
	return value, nil
}

func parsePositiveInt(value string, flag string, min int) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < min {
		return 0, fmt.Errorf("%s expects an integer >= %d", flag, min)
	}
	return parsed, nil
}

func parseTimeout(value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("--timeout expects a positive duration such as 500ms or 2s")
	}
	return d, nil
}
