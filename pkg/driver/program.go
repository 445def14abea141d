package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

// ProgramExtension marks program documents on disk.
const ProgramExtension = ".simple.yml"

// Program is a decoded program document: a node tree, the environment it starts in, run
// limits, and optional expectations checked by `simple test`.
type Program struct {
	Path        string
	Name        string
	Description string
	Environment *runtime.Environment
	Root        ast.Node
	Limits      Limits
	Expect      *Expectation
}

// Limits bounds a machine run. Zero values mean unbounded.
type Limits struct {
	MaxSteps int
	Timeout  time.Duration
}

// Expectation describes the outcome a program document promises. Zero fields are not
// checked.
type Expectation struct {
	Environment *runtime.Environment
	Value       ast.Value
	Steps       int
	Error       runtime.ErrorKind
}

// ValidationError aggregates document validation failures.
type ValidationError struct {
	Subject string
	Issues  []string
}

func (e *ValidationError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "document"
	}
	if len(e.Issues) == 0 {
		return subject + ": invalid configuration"
	}
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString(" validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type programFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Environment yaml.Node   `yaml:"environment"`
	Program     yaml.Node   `yaml:"program"`
	Limits      limitsYAML  `yaml:"limits"`
	Expect      *expectYAML `yaml:"expect"`
}

type limitsYAML struct {
	MaxSteps int    `yaml:"max_steps"`
	Timeout  string `yaml:"timeout"`
}

type expectYAML struct {
	Environment yaml.Node `yaml:"environment"`
	Value       yaml.Node `yaml:"value"`
	Steps       int       `yaml:"steps"`
	Error       string    `yaml:"error"`
}

// LoadProgram reads and validates the program document at path.
func LoadProgram(path string) (*Program, error) {
	if path == "" {
		return nil, fmt.Errorf("program: empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", path, err)
	}
	return ParseProgram(data, path)
}

// ParseProgram decodes a program document. path is used for diagnostics and as the
// default name.
func ParseProgram(data []byte, path string) (*Program, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw programFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("program: %s is empty", path)
		}
		return nil, fmt.Errorf("program: parse %s: %w", path, err)
	}
	return raw.toProgram(path)
}

func (pf programFile) toProgram(path string) (*Program, error) {
	errs := ValidationError{Subject: "program " + path}
	program := &Program{
		Path:        path,
		Name:        strings.TrimSpace(pf.Name),
		Description: strings.TrimSpace(pf.Description),
		Limits:      Limits{MaxSteps: pf.Limits.MaxSteps},
	}
	if program.Name == "" {
		program.Name = programNameFromPath(path)
	}

	env, err := decodeEnvironment(&pf.Environment, path)
	if err != nil {
		return nil, err
	}
	program.Environment = env

	if pf.Program.Kind == 0 {
		errs.Issues = append(errs.Issues, "program must be provided")
	} else {
		root, err := DecodeNode(&pf.Program, path)
		if err != nil {
			return nil, err
		}
		program.Root = root
	}

	if pf.Limits.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, "limits.max_steps must not be negative")
	}
	if timeout := strings.TrimSpace(pf.Limits.Timeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		switch {
		case err != nil:
			errs.Issues = append(errs.Issues, fmt.Sprintf("limits.timeout: %v", err))
		case d < 0:
			errs.Issues = append(errs.Issues, "limits.timeout must not be negative")
		default:
			program.Limits.Timeout = d
		}
	}

	if pf.Expect != nil {
		expect, issues, err := pf.Expect.toExpectation(path)
		if err != nil {
			return nil, err
		}
		errs.Issues = append(errs.Issues, issues...)
		if expect.Value != nil {
			if _, ok := program.Root.(ast.Expression); program.Root != nil && !ok {
				errs.Issues = append(errs.Issues, "expect.value applies only to expression programs")
			}
		}
		program.Expect = expect
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return program, nil
}

func (ey expectYAML) toExpectation(path string) (*Expectation, []string, error) {
	var issues []string
	expect := &Expectation{Steps: ey.Steps}
	if ey.Steps < 0 {
		issues = append(issues, "expect.steps must not be negative")
	}
	if ey.Environment.Kind != 0 {
		env, err := decodeEnvironment(&ey.Environment, path)
		if err != nil {
			return nil, nil, err
		}
		expect.Environment = env
	}
	if ey.Value.Kind != 0 {
		value, err := DecodeValue(&ey.Value, path)
		if err != nil {
			return nil, nil, err
		}
		expect.Value = value
	}
	if kind := strings.TrimSpace(ey.Error); kind != "" {
		switch runtime.ErrorKind(kind) {
		case runtime.KindUnboundVariable, runtime.KindTypeMismatch, runtime.KindNotReducible:
			expect.Error = runtime.ErrorKind(kind)
		default:
			issues = append(issues, fmt.Sprintf("expect.error: unknown error kind %q", kind))
		}
	}
	return expect, issues, nil
}

func decodeEnvironment(value *yaml.Node, path string) (*runtime.Environment, error) {
	value = resolveAlias(value)
	if value == nil || value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		return runtime.EmptyEnvironment(), nil
	}
	d := nodeDecoder{path: path}
	if value.Kind != yaml.MappingNode {
		return nil, d.fail(value, "environment must be a mapping of names to values")
	}
	bindings := make(map[string]ast.Value, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := strings.TrimSpace(value.Content[i].Value)
		if name == "" {
			return nil, d.fail(value.Content[i], "environment names must be non-empty")
		}
		if _, dup := bindings[name]; dup {
			return nil, d.fail(value.Content[i], "environment: duplicate name %q", name)
		}
		v, err := DecodeValue(value.Content[i+1], path)
		if err != nil {
			return nil, err
		}
		bindings[name] = v
	}
	return runtime.NewEnvironment(bindings), nil
}

func programNameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ProgramExtension)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MarshalProgram renders program as a document that ParseProgram reads back.
func MarshalProgram(program *Program) ([]byte, error) {
	if program == nil || program.Root == nil {
		return nil, fmt.Errorf("program: nothing to write")
	}
	doc := mapping()
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, scalarString(key), value)
	}
	if program.Name != "" {
		add("name", scalarString(program.Name))
	}
	if program.Description != "" {
		add("description", scalarString(program.Description))
	}
	if program.Environment.Len() > 0 {
		add("environment", encodeEnvironment(program.Environment))
	}
	add("program", EncodeNode(program.Root))
	if program.Limits.MaxSteps > 0 || program.Limits.Timeout > 0 {
		limits := mapping()
		if program.Limits.MaxSteps > 0 {
			limits.Content = append(limits.Content, scalarString("max_steps"), intNode(program.Limits.MaxSteps))
		}
		if program.Limits.Timeout > 0 {
			limits.Content = append(limits.Content, scalarString("timeout"), scalarString(program.Limits.Timeout.String()))
		}
		add("limits", limits)
	}
	if expect := program.Expect; expect != nil {
		body := mapping()
		if expect.Environment != nil {
			body.Content = append(body.Content, scalarString("environment"), encodeEnvironment(expect.Environment))
		}
		if expect.Value != nil {
			body.Content = append(body.Content, scalarString("value"), EncodeNode(expect.Value))
		}
		if expect.Steps > 0 {
			body.Content = append(body.Content, scalarString("steps"), intNode(expect.Steps))
		}
		if expect.Error != "" {
			body.Content = append(body.Content, scalarString("error"), scalarString(string(expect.Error)))
		}
		add("expect", body)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("program: encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("program: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteProgram writes program to path.
func WriteProgram(program *Program, path string) error {
	data, err := MarshalProgram(program)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("program: ensure directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("program: write %s: %w", path, err)
	}
	return nil
}

func encodeEnvironment(env *runtime.Environment) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	for _, name := range env.Names() {
		value, _ := env.Lookup(name)
		node.Content = append(node.Content, scalarString(name), EncodeNode(value))
	}
	return node
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", n)}
}
