package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a node as SIMPLE source, e.g. `while (x < 5) { x = x * 3 }`.
func Format(node Node) string {
	var b strings.Builder
	writeSource(&b, node)
	return b.String()
}

// Inspect renders a node as an s-expression naming each kind, e.g. `(Add (Number 1) (Variable x))`.
func Inspect(node Node) string {
	var b strings.Builder
	writeInspect(&b, node)
	return b.String()
}

func writeSource(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Number:
		b.WriteString(strconv.FormatInt(n.Value, 10))
	case *Boolean:
		b.WriteString(strconv.FormatBool(n.Value))
	case *Variable:
		b.WriteString(n.Name)
	case *AddExpression:
		writeBinary(b, n.Left, "+", n.Right)
	case *MultiplyExpression:
		writeBinary(b, n.Left, "*", n.Right)
	case *LessThanExpression:
		writeBinary(b, n.Left, "<", n.Right)
	case *DoNothing:
		b.WriteString("do-nothing")
	case *AssignStatement:
		b.WriteString(n.Name)
		b.WriteString(" = ")
		writeSource(b, n.Expression)
	case *IfStatement:
		b.WriteString("if ")
		writeSource(b, n.Condition)
		b.WriteString(" { ")
		writeSource(b, n.Consequence)
		b.WriteString(" } else { ")
		writeSource(b, n.Alternative)
		b.WriteString(" }")
	case *SequenceStatement:
		writeSource(b, n.First)
		b.WriteString("; ")
		writeSource(b, n.Second)
	case *WhileLoop:
		b.WriteString("while (")
		writeSource(b, n.Condition)
		b.WriteString(") { ")
		writeSource(b, n.Body)
		b.WriteString(" }")
	case nil:
		b.WriteString("<nil>")
	default:
		fmt.Fprintf(b, "<%T>", node)
	}
}

func writeBinary(b *strings.Builder, left Node, op string, right Node) {
	writeSource(b, left)
	b.WriteByte(' ')
	b.WriteString(op)
	b.WriteByte(' ')
	writeSource(b, right)
}

func writeInspect(b *strings.Builder, node Node) {
	if node == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteByte('(')
	b.WriteString(string(node.NodeType()))
	switch n := node.(type) {
	case *Number:
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(n.Value, 10))
	case *Boolean:
		b.WriteByte(' ')
		b.WriteString(strconv.FormatBool(n.Value))
	case *Variable:
		b.WriteByte(' ')
		b.WriteString(n.Name)
	case *AddExpression:
		writeInspectChildren(b, n.Left, n.Right)
	case *MultiplyExpression:
		writeInspectChildren(b, n.Left, n.Right)
	case *LessThanExpression:
		writeInspectChildren(b, n.Left, n.Right)
	case *DoNothing:
	case *AssignStatement:
		b.WriteByte(' ')
		b.WriteString(n.Name)
		writeInspectChildren(b, n.Expression)
	case *IfStatement:
		writeInspectChildren(b, n.Condition, n.Consequence, n.Alternative)
	case *SequenceStatement:
		writeInspectChildren(b, n.First, n.Second)
	case *WhileLoop:
		writeInspectChildren(b, n.Condition, n.Body)
	}
	b.WriteByte(')')
}

func writeInspectChildren(b *strings.Builder, children ...Node) {
	for _, child := range children {
		b.WriteByte(' ')
		writeInspect(b, child)
	}
}
