package main

import (
	"fmt"
	"os"
	"strings"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/driver"
)

func runDemos(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "simple demos does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	for _, name := range driver.DemoNames() {
		demo, _ := driver.Demo(name)
		fmt.Fprintf(os.Stdout, "%-12s %s\n", name, ast.Format(demo.Root))
	}
	return 0
}

func runExport(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "simple export expects a demo name and an output file")
		return 1
	}
	demo, ok := driver.Demo(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "simple export: unknown demo %q (available: %s)\n", args[0], strings.Join(driver.DemoNames(), ", "))
		return 1
	}
	path := args[1]
	if !driver.IsProgramFile(path) {
		path += driver.ProgramExtension
	}
	if err := driver.WriteProgram(demo, path); err != nil {
		fmt.Fprintf(os.Stderr, "simple export: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return 0
}
