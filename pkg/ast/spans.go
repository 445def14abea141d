package ast

import "fmt"

// Position is a 1-based line/column location inside a program document.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span records where a node was declared. Nodes built in code carry the zero span.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// InheritSpan copies the span of src onto dst when dst has none, so rebuilt nodes keep
// pointing at the declaration they were rewritten from.
func InheritSpan[T Node](dst T, src Node) T {
	if src == nil {
		return dst
	}
	if span := src.Span(); !span.IsZero() && dst.Span().IsZero() {
		SetSpan(dst, span)
	}
	return dst
}
