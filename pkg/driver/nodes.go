package driver

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"simple/interpreter-go/pkg/ast"
)

// Program trees are written as YAML. Integers and booleans stand for themselves, the
// scalar `do-nothing` is the empty statement, and every other node is a single-key
// mapping naming its kind:
//
//	var: x
//	add: [left, right]            (also mul, lt)
//	assign: {name: x, value: expr}
//	if: {condition: expr, then: stmt, else: stmt}
//	seq: [stmt, stmt, ...]        (a bare list means the same)
//	while: {condition: expr, body: stmt}
const doNothingScalar = "do-nothing"

type nodeDecoder struct {
	path string
}

func (d nodeDecoder) fail(value *yaml.Node, format string, args ...any) error {
	loc := DiagnosticLocation{Path: d.path}
	if value != nil {
		loc.Line = value.Line
		loc.Column = value.Column
	}
	return &DocumentDiagnosticError{Diagnostic: DocumentDiagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}}
}

func spanOf(value *yaml.Node) ast.Span {
	pos := ast.Position{Line: value.Line, Column: value.Column}
	return ast.Span{Start: pos, End: pos}
}

func withSpan[T ast.Node](node T, value *yaml.Node) T {
	ast.SetSpan(node, spanOf(value))
	return node
}

// DecodeNode decodes either an expression or a statement.
func DecodeNode(value *yaml.Node, path string) (ast.Node, error) {
	return nodeDecoder{path: path}.node(value)
}

// DecodeStatement decodes a node that must be a statement.
func DecodeStatement(value *yaml.Node, path string) (ast.Statement, error) {
	return nodeDecoder{path: path}.statement(value)
}

// DecodeExpression decodes a node that must be an expression.
func DecodeExpression(value *yaml.Node, path string) (ast.Expression, error) {
	return nodeDecoder{path: path}.expression(value)
}

func (d nodeDecoder) node(value *yaml.Node) (ast.Node, error) {
	value = resolveAlias(value)
	if value == nil || value.Kind == 0 {
		return nil, d.fail(value, "missing node")
	}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!str" && strings.TrimSpace(value.Value) == doNothingScalar {
			return withSpan(ast.NewDoNothing(), value), nil
		}
		return d.scalar(value)
	case yaml.SequenceNode:
		return d.sequence(value, value.Content)
	case yaml.MappingNode:
		kind, body, err := d.single(value)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "num", "bool", "var", "add", "mul", "lt":
			return d.expressionOf(value, kind, body)
		case "assign", "if", "seq", "while", "noop":
			return d.statementOf(value, kind, body)
		default:
			return nil, d.fail(value, "unknown node kind %q", kind)
		}
	default:
		return nil, d.fail(value, "unexpected %s where a node was expected", value.ShortTag())
	}
}

func (d nodeDecoder) expression(value *yaml.Node) (ast.Expression, error) {
	node, err := d.node(value)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expression)
	if !ok {
		return nil, d.fail(value, "expected an expression, found %s", node.NodeType())
	}
	return expr, nil
}

func (d nodeDecoder) statement(value *yaml.Node) (ast.Statement, error) {
	node, err := d.node(value)
	if err != nil {
		return nil, err
	}
	stmt, ok := node.(ast.Statement)
	if !ok {
		return nil, d.fail(value, "expected a statement, found %s", node.NodeType())
	}
	return stmt, nil
}

// DecodeValue decodes an integer or boolean scalar.
func DecodeValue(value *yaml.Node, path string) (ast.Value, error) {
	d := nodeDecoder{path: path}
	value = resolveAlias(value)
	if value == nil || value.Kind != yaml.ScalarNode {
		return nil, d.fail(value, "expected an integer or boolean")
	}
	return d.scalar(value)
}

func (d nodeDecoder) scalar(value *yaml.Node) (ast.Value, error) {
	switch value.Tag {
	case "!!int":
		n, err := strconv.ParseInt(value.Value, 0, 64)
		if err != nil {
			return nil, d.fail(value, "invalid integer %q: %v", value.Value, err)
		}
		return withSpan(ast.NewNumber(n), value), nil
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return nil, d.fail(value, "invalid boolean %q", value.Value)
		}
		return withSpan(ast.NewBoolean(b), value), nil
	default:
		return nil, d.fail(value, "expected an integer or boolean, found %q", value.Value)
	}
}

// single splits a one-key mapping into its key and value.
func (d nodeDecoder) single(value *yaml.Node) (string, *yaml.Node, error) {
	if len(value.Content) != 2 {
		return "", nil, d.fail(value, "node mapping must have exactly one key, found %d", len(value.Content)/2)
	}
	return strings.TrimSpace(value.Content[0].Value), resolveAlias(value.Content[1]), nil
}

func (d nodeDecoder) expressionOf(at *yaml.Node, kind string, body *yaml.Node) (ast.Expression, error) {
	switch kind {
	case "num", "bool":
		v, err := d.scalar(body)
		if err != nil {
			return nil, err
		}
		if (kind == "num") != (v.NodeType() == ast.NodeNumber) {
			return nil, d.fail(body, "%s expects a %s literal", kind, map[string]string{"num": "integer", "bool": "boolean"}[kind])
		}
		return withSpan(v, at), nil
	case "var":
		if body.Kind != yaml.ScalarNode || strings.TrimSpace(body.Value) == "" {
			return nil, d.fail(body, "var expects a variable name")
		}
		return withSpan(ast.NewVariable(strings.TrimSpace(body.Value)), at), nil
	}
	if body.Kind != yaml.SequenceNode || len(body.Content) != 2 {
		return nil, d.fail(body, "%s expects a list of two operands", kind)
	}
	left, err := d.expression(body.Content[0])
	if err != nil {
		return nil, err
	}
	right, err := d.expression(body.Content[1])
	if err != nil {
		return nil, err
	}
	switch kind {
	case "add":
		return withSpan(ast.NewAdd(left, right), at), nil
	case "mul":
		return withSpan(ast.NewMultiply(left, right), at), nil
	default:
		return withSpan(ast.NewLessThan(left, right), at), nil
	}
}

func (d nodeDecoder) statementOf(at *yaml.Node, kind string, body *yaml.Node) (ast.Statement, error) {
	switch kind {
	case "noop":
		return withSpan(ast.NewDoNothing(), at), nil
	case "seq":
		if body.Kind != yaml.SequenceNode {
			return nil, d.fail(body, "seq expects a list of statements")
		}
		return d.sequence(at, body.Content)
	}
	fields, err := d.fields(body, kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "assign":
		nameNode, err := d.require(body, fields, kind, "name")
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(nameNode.Value)
		if nameNode.Kind != yaml.ScalarNode || name == "" {
			return nil, d.fail(nameNode, "assign name must be a non-empty string")
		}
		valueNode, err := d.require(body, fields, kind, "value")
		if err != nil {
			return nil, err
		}
		expr, err := d.expression(valueNode)
		if err != nil {
			return nil, err
		}
		return withSpan(ast.NewAssign(name, expr), at), nil
	case "if":
		condNode, err := d.require(body, fields, kind, "condition")
		if err != nil {
			return nil, err
		}
		cond, err := d.expression(condNode)
		if err != nil {
			return nil, err
		}
		thenNode, err := d.require(body, fields, kind, "then")
		if err != nil {
			return nil, err
		}
		consequence, err := d.statement(thenNode)
		if err != nil {
			return nil, err
		}
		var alternative ast.Statement = ast.NewDoNothing()
		if elseNode, ok := fields["else"]; ok {
			if alternative, err = d.statement(elseNode); err != nil {
				return nil, err
			}
		}
		return withSpan(ast.NewIf(cond, consequence, alternative), at), nil
	default:
		condNode, err := d.require(body, fields, kind, "condition")
		if err != nil {
			return nil, err
		}
		cond, err := d.expression(condNode)
		if err != nil {
			return nil, err
		}
		bodyNode, err := d.require(body, fields, kind, "body")
		if err != nil {
			return nil, err
		}
		loopBody, err := d.statement(bodyNode)
		if err != nil {
			return nil, err
		}
		return withSpan(ast.NewWhile(cond, loopBody), at), nil
	}
}

var statementFields = map[string][]string{
	"assign": {"name", "value"},
	"if":     {"condition", "then", "else"},
	"while":  {"condition", "body"},
}

// fields indexes a statement body mapping and rejects unknown keys.
func (d nodeDecoder) fields(body *yaml.Node, kind string) (map[string]*yaml.Node, error) {
	if body.Kind != yaml.MappingNode {
		return nil, d.fail(body, "%s expects a mapping", kind)
	}
	allowed := statementFields[kind]
	out := make(map[string]*yaml.Node, len(body.Content)/2)
	for i := 0; i+1 < len(body.Content); i += 2 {
		key := strings.TrimSpace(body.Content[i].Value)
		known := false
		for _, name := range allowed {
			if name == key {
				known = true
				break
			}
		}
		if !known {
			return nil, d.fail(body.Content[i], "%s: unknown field %q", kind, key)
		}
		if _, dup := out[key]; dup {
			return nil, d.fail(body.Content[i], "%s: duplicate field %q", kind, key)
		}
		out[key] = resolveAlias(body.Content[i+1])
	}
	return out, nil
}

func (d nodeDecoder) require(body *yaml.Node, fields map[string]*yaml.Node, kind, name string) (*yaml.Node, error) {
	value, ok := fields[name]
	if !ok {
		return nil, d.fail(body, "%s: missing field %q", kind, name)
	}
	return value, nil
}

func (d nodeDecoder) sequence(at *yaml.Node, items []*yaml.Node) (ast.Statement, error) {
	statements := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		stmt, err := d.statement(item)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	stmt := ast.Seq(statements...)
	if _, ok := stmt.(*ast.SequenceStatement); ok || len(statements) == 0 {
		ast.SetSpan(stmt, spanOf(at))
	}
	return stmt, nil
}

func resolveAlias(value *yaml.Node) *yaml.Node {
	for value != nil && value.Kind == yaml.AliasNode {
		value = value.Alias
	}
	return value
}

// EncodeNode renders node in the document form DecodeNode reads. Right-nested sequences
// flatten to a single list.
func EncodeNode(node ast.Node) *yaml.Node {
	switch n := node.(type) {
	case *ast.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(n.Value, 10)}
	case *ast.Boolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(n.Value)}
	case *ast.Variable:
		return kindNode("var", scalarString(n.Name))
	case *ast.AddExpression:
		return kindNode("add", flowList(EncodeNode(n.Left), EncodeNode(n.Right)))
	case *ast.MultiplyExpression:
		return kindNode("mul", flowList(EncodeNode(n.Left), EncodeNode(n.Right)))
	case *ast.LessThanExpression:
		return kindNode("lt", flowList(EncodeNode(n.Left), EncodeNode(n.Right)))
	case *ast.DoNothing:
		return scalarString(doNothingScalar)
	case *ast.AssignStatement:
		return kindNode("assign", mapping("name", scalarString(n.Name), "value", EncodeNode(n.Expression)))
	case *ast.IfStatement:
		body := mapping("condition", EncodeNode(n.Condition), "then", EncodeNode(n.Consequence))
		if !ast.IsDoNothing(n.Alternative) {
			body.Content = append(body.Content, scalarString("else"), EncodeNode(n.Alternative))
		}
		return kindNode("if", body)
	case *ast.SequenceStatement:
		list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		var current ast.Statement = n
		for {
			seq, ok := current.(*ast.SequenceStatement)
			if !ok {
				list.Content = append(list.Content, EncodeNode(current))
				break
			}
			list.Content = append(list.Content, EncodeNode(seq.First))
			current = seq.Second
		}
		return kindNode("seq", list)
	case *ast.WhileLoop:
		return kindNode("while", mapping("condition", EncodeNode(n.Condition), "body", EncodeNode(n.Body)))
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func scalarString(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func kindNode(kind string, body *yaml.Node) *yaml.Node {
	return mapping(kind, body)
}

func mapping(pairs ...any) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(pairs); i += 2 {
		node.Content = append(node.Content, scalarString(pairs[i].(string)), pairs[i+1].(*yaml.Node))
	}
	return node
}

func flowList(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle, Content: items}
}
