package main

import (
	"fmt"
	"os"
)

func modeCommandLabel(mode executionMode) string {
	switch mode {
	case modeEval:
		return "simple eval"
	case modeCheck:
		return "simple check"
	default:
		return "simple run"
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  simple [--max-steps=N] [--timeout=D] [--verbose] run <program.simple.yml|demo>")
	fmt.Fprintln(os.Stderr, "  simple [--max-steps=N] [--timeout=D] [--verbose] <program.simple.yml|demo>")
	fmt.Fprintln(os.Stderr, "  simple eval <program.simple.yml|demo>")
	fmt.Fprintln(os.Stderr, "  simple [--max-steps=N] [--timeout=D] check <program.simple.yml|demo>")
	fmt.Fprintln(os.Stderr, "  simple [--max-steps=N] [--timeout=D] debug <program.simple.yml|demo>")
	fmt.Fprintln(os.Stderr, "  simple [--max-steps=N] [--timeout=D] test [--list] [--fail-fast] [--filter text] [dir|file ...]")
	fmt.Fprintln(os.Stderr, "  simple demos")
	fmt.Fprintln(os.Stderr, "  simple export <demo> <file>")
	fmt.Fprintln(os.Stderr, "  simple deps install")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintln(os.Stderr, "  SIMPLE_MAX_STEPS  default step bound")
	fmt.Fprintln(os.Stderr, "  SIMPLE_LOG=debug  log every transition to stderr")
	fmt.Fprintln(os.Stderr, "  SIMPLE_CACHE      directory for fetched program sources (default ~/.simple)")
}
