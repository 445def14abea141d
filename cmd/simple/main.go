package main

import (
	"fmt"
	"os"
)

const cliToolVersion = "simple-cli 0.0.0-dev"

type executionMode int

const (
	modeRun executionMode = iota
	modeEval
	modeCheck
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	opts, remaining, err := parseGlobalOptions(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(remaining[1:], opts, modeRun)
	case "eval":
		return runEntry(remaining[1:], opts, modeEval)
	case "check":
		return runEntry(remaining[1:], opts, modeCheck)
	case "debug":
		return runDebug(remaining[1:], opts)
	case "test":
		return runTest(remaining[1:], opts)
	case "demos":
		return runDemos(remaining[1:])
	case "export":
		return runExport(remaining[1:])
	case "deps":
		return runDeps(remaining[1:])
	default:
		return runEntry(remaining, opts, modeRun)
	}
}
