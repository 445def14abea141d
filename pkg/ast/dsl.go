package ast

// Value helpers.

func Num(value int64) *Number {
	return NewNumber(value)
}

func Bool(value bool) *Boolean {
	return NewBoolean(value)
}

// Expression helpers.

func Var(name string) *Variable {
	return NewVariable(name)
}

func Add(left, right Expression) *AddExpression {
	return NewAdd(left, right)
}

func Mul(left, right Expression) *MultiplyExpression {
	return NewMultiply(left, right)
}

func Lt(left, right Expression) *LessThanExpression {
	return NewLessThan(left, right)
}

// Statement helpers.

func Noop() *DoNothing {
	return NewDoNothing()
}

func Assign(name string, expression Expression) *AssignStatement {
	return NewAssign(name, expression)
}

func If(condition Expression, consequence, alternative Statement) *IfStatement {
	return NewIf(condition, consequence, alternative)
}

// Seq chains statements left to right: Seq(a, b, c) is Sequence(a, Sequence(b, c)).
// An empty call yields DoNothing.
func Seq(statements ...Statement) Statement {
	switch len(statements) {
	case 0:
		return NewDoNothing()
	case 1:
		return statements[0]
	}
	return NewSequence(statements[0], Seq(statements[1:]...))
}

func While(condition Expression, body Statement) *WhileLoop {
	return NewWhile(condition, body)
}
