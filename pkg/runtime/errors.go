package runtime

import (
	"errors"
	"fmt"

	"simple/interpreter-go/pkg/ast"
)

// ErrorKind classifies failures raised while reducing or evaluating a program.
type ErrorKind string

const (
	KindUnboundVariable ErrorKind = "UnboundVariable"
	KindTypeMismatch    ErrorKind = "TypeMismatch"
	KindNotReducible    ErrorKind = "NotReducible"
)

// Error is raised at the reduction or evaluation call that detects the problem. Node is
// the offending node, when one exists.
type Error struct {
	Kind    ErrorKind
	Message string
	Node    ast.Node
}

var (
	ErrUnboundVariable = &Error{Kind: KindUnboundVariable}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrNotReducible    = &Error{Kind: KindNotReducible}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any error of the same kind, so errors.Is(err, ErrTypeMismatch) works
// regardless of message or node.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewUnboundVariableError(node ast.Node, name string) error {
	return &Error{
		Kind:    KindUnboundVariable,
		Message: fmt.Sprintf("unbound variable '%s'", name),
		Node:    node,
	}
}

// NewTypeMismatchError reports that got appeared where a value of kind want was required.
func NewTypeMismatchError(node ast.Node, want ast.NodeType, got ast.Node) error {
	return &Error{
		Kind:    KindTypeMismatch,
		Message: fmt.Sprintf("type mismatch: expected %s, got %s", want, describe(got)),
		Node:    node,
	}
}

func NewNotReducibleError(node ast.Node) error {
	return &Error{
		Kind:    KindNotReducible,
		Message: fmt.Sprintf("%s is not reducible", describe(node)),
		Node:    node,
	}
}

// KindOf extracts the kind of a runtime error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Kind, true
	}
	return "", false
}

func describe(node ast.Node) string {
	if node == nil {
		return "nothing"
	}
	return fmt.Sprintf("%s (%s)", ast.Format(node), node.NodeType())
}
