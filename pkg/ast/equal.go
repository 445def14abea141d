package ast

// Equal reports whether a and b are the same tree. Spans are ignored and shared
// sub-nodes short-circuit, so comparing an unrolled loop against its source is cheap.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if a.NodeType() != b.NodeType() {
		return false
	}
	switch x := a.(type) {
	case *Number:
		return x.Value == b.(*Number).Value
	case *Boolean:
		return x.Value == b.(*Boolean).Value
	case *Variable:
		return x.Name == b.(*Variable).Name
	case *AddExpression:
		y := b.(*AddExpression)
		return Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *MultiplyExpression:
		y := b.(*MultiplyExpression)
		return Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *LessThanExpression:
		y := b.(*LessThanExpression)
		return Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *DoNothing:
		return true
	case *AssignStatement:
		y := b.(*AssignStatement)
		return x.Name == y.Name && Equal(x.Expression, y.Expression)
	case *IfStatement:
		y := b.(*IfStatement)
		return Equal(x.Condition, y.Condition) &&
			Equal(x.Consequence, y.Consequence) &&
			Equal(x.Alternative, y.Alternative)
	case *SequenceStatement:
		y := b.(*SequenceStatement)
		return Equal(x.First, y.First) && Equal(x.Second, y.Second)
	case *WhileLoop:
		y := b.(*WhileLoop)
		return Equal(x.Condition, y.Condition) && Equal(x.Body, y.Body)
	default:
		return false
	}
}
