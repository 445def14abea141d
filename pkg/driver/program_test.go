package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

func writeProgram(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o644); err != nil {
		t.Fatalf("write program: %v", err)
	}
	return path
}

func TestLoadProgramBasic(t *testing.T) {
	path := writeProgram(t, "triple.simple.yml", `
description: x = x * 3 while x < 5
environment:
  x: 1
program:
  while:
    condition: {lt: [{var: x}, 5]}
    body:
      assign: {name: x, value: {mul: [{var: x}, 3]}}
limits:
  max_steps: 100
  timeout: 2s
expect:
  environment: {x: 9}
  steps: 20
`)
	program, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram returned error: %v", err)
	}
	if program.Name != "triple" {
		t.Fatalf("Name = %q, want triple", program.Name)
	}
	want := ast.While(ast.Lt(ast.Var("x"), ast.Num(5)), ast.Assign("x", ast.Mul(ast.Var("x"), ast.Num(3))))
	if !ast.Equal(program.Root, want) {
		t.Fatalf("Root = %s, want %s", ast.Format(program.Root), ast.Format(want))
	}
	if program.Environment.String() != "{x: 1}" {
		t.Fatalf("Environment = %s", program.Environment)
	}
	if program.Limits.MaxSteps != 100 || program.Limits.Timeout != 2*time.Second {
		t.Fatalf("Limits = %+v", program.Limits)
	}
	if program.Expect == nil || program.Expect.Steps != 20 || program.Expect.Environment.String() != "{x: 9}" {
		t.Fatalf("Expect = %+v", program.Expect)
	}
	if span := program.Root.Span(); span.Start.Line != 5 || span.Start.Column != 3 {
		t.Fatalf("root span = %v, want 5:3", span)
	}
}

func TestParseProgramSequenceForms(t *testing.T) {
	program, err := ParseProgram([]byte(`
program:
  - assign: {name: x, value: 1}
  - seq:
      - do-nothing
      - assign: {name: y, value: true}
`), "seq.simple.yml")
	if err != nil {
		t.Fatalf("ParseProgram returned error: %v", err)
	}
	want := ast.Seq(ast.Assign("x", ast.Num(1)), ast.Seq(ast.Noop(), ast.Assign("y", ast.Bool(true))))
	if !ast.Equal(program.Root, want) {
		t.Fatalf("Root = %s, want %s", ast.Inspect(program.Root), ast.Inspect(want))
	}
}

func TestParseProgramExpression(t *testing.T) {
	program, err := ParseProgram([]byte(`
program: {add: [{num: 1}, {mul: [2, 3]}]}
expect:
  value: 7
`), "expr.simple.yml")
	if err != nil {
		t.Fatalf("ParseProgram returned error: %v", err)
	}
	if _, ok := program.Root.(ast.Expression); !ok {
		t.Fatalf("Root = %s, want an expression", ast.Inspect(program.Root))
	}
	if !ast.Equal(program.Expect.Value, ast.Num(7)) {
		t.Fatalf("expected value = %v", program.Expect.Value)
	}
}

func TestParseProgramNodeErrorsCarryLocation(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		message string
	}{
		{"unknown kind", "program:\n  sub: [1, 2]\n", `x.simple.yml:2:3: unknown node kind "sub"`},
		{"statement in expression", "program:\n  add: [1, do-nothing]\n", "x.simple.yml:2:12: expected an expression, found DoNothing"},
		{"expression as loop body", "program:\n  while:\n    condition: true\n    body: 1\n", "x.simple.yml:4:11: expected a statement, found Number"},
		{"missing field", "program:\n  assign: {name: x}\n", `x.simple.yml:2:11: assign: missing field "value"`},
		{"unknown field", "program:\n  while: {condition: true, body: do-nothing, step: 1}\n", `x.simple.yml:2:46: while: unknown field "step"`},
		{"string literal", "program:\n  assign: {name: x, value: hello}\n", `x.simple.yml:2:28: expected an integer or boolean, found "hello"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProgram([]byte(tc.source), "x.simple.yml")
			var diagErr *DocumentDiagnosticError
			if !errors.As(err, &diagErr) {
				t.Fatalf("expected a document diagnostic, got %v", err)
			}
			if err.Error() != tc.message {
				t.Fatalf("error = %q, want %q", err.Error(), tc.message)
			}
		})
	}
}

func TestParseProgramValidationAggregates(t *testing.T) {
	_, err := ParseProgram([]byte(`
limits:
  max_steps: -1
  timeout: soon
expect:
  error: Overflow
`), "bad.simple.yml")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(validation.Issues), validation.Issues)
	}
	msg := err.Error()
	for _, fragment := range []string{"program must be provided", "max_steps", "limits.timeout", `unknown error kind "Overflow"`} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("validation error missing %q:\n%s", fragment, msg)
		}
	}
}

func TestParseProgramRejectsUnknownTopLevelFields(t *testing.T) {
	_, err := ParseProgram([]byte("program: do-nothing\nsteps: 3\n"), "x.simple.yml")
	if err == nil || !strings.Contains(err.Error(), "field steps not found") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestParseProgramEmpty(t *testing.T) {
	_, err := ParseProgram(nil, "empty.simple.yml")
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty document error, got %v", err)
	}
}

func TestWriteProgramRoundTrip(t *testing.T) {
	for _, name := range DemoNames() {
		t.Run(name, func(t *testing.T) {
			demo, _ := Demo(name)
			demo.Limits = Limits{MaxSteps: 500, Timeout: time.Second}
			path := filepath.Join(t.TempDir(), name+ProgramExtension)
			if err := WriteProgram(demo, path); err != nil {
				t.Fatalf("WriteProgram returned error: %v", err)
			}
			loaded, err := LoadProgram(path)
			if err != nil {
				data, _ := os.ReadFile(path)
				t.Fatalf("LoadProgram returned error: %v\n%s", err, data)
			}
			if !ast.Equal(loaded.Root, demo.Root) {
				t.Fatalf("Root = %s, want %s", ast.Inspect(loaded.Root), ast.Inspect(demo.Root))
			}
			if !loaded.Environment.Equal(demo.Environment) {
				t.Fatalf("Environment = %s, want %s", loaded.Environment, demo.Environment)
			}
			if loaded.Name != demo.Name || loaded.Description != demo.Description || loaded.Limits != demo.Limits {
				t.Fatalf("metadata changed: %+v", loaded)
			}
			if loaded.Expect.Error != demo.Expect.Error || loaded.Expect.Steps != demo.Expect.Steps {
				t.Fatalf("Expect = %+v, want %+v", loaded.Expect, demo.Expect)
			}
		})
	}
}

func TestEncodeNodeIfWithoutElse(t *testing.T) {
	stmt := ast.If(ast.Var("x"), ast.Assign("y", ast.Num(1)), ast.Noop())
	node := EncodeNode(stmt)
	decoded, err := DecodeStatement(node, "")
	if err != nil {
		t.Fatalf("DecodeStatement returned error: %v", err)
	}
	if !ast.Equal(decoded, stmt) {
		t.Fatalf("decoded %s, want %s", ast.Format(decoded), ast.Format(stmt))
	}
	body := node.Content[1]
	if len(body.Content) != 4 {
		t.Fatalf("expected else to be omitted, got %d entries", len(body.Content)/2)
	}
}

func TestDecodeEnvironmentRejectsDuplicates(t *testing.T) {
	_, err := ParseProgram([]byte("environment:\n  x: 1\n  x: 2\nprogram: do-nothing\n"), "dup.simple.yml")
	if err == nil {
		t.Fatalf("expected duplicate environment name to fail")
	}
	if kind, ok := runtime.KindOf(err); ok {
		t.Fatalf("document errors must not be runtime errors, got %s", kind)
	}
}
