package interpreter

import (
	"fmt"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

// Evaluate computes the value of expr in one recursive pass. Operands are evaluated left
// to right and must be Numbers for Add, Multiply and LessThan.
func Evaluate(expr ast.Expression, env *runtime.Environment) (ast.Value, error) {
	switch n := expr.(type) {
	case *ast.Number:
		return n, nil
	case *ast.Boolean:
		return n, nil
	case *ast.Variable:
		value, ok := env.Lookup(n.Name)
		if !ok {
			return nil, runtime.NewUnboundVariableError(n, n.Name)
		}
		return value, nil
	case *ast.AddExpression:
		a, b, err := evaluateOperands(n, n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		return ast.NewNumber(a + b), nil
	case *ast.MultiplyExpression:
		a, b, err := evaluateOperands(n, n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		return ast.NewNumber(a * b), nil
	case *ast.LessThanExpression:
		a, b, err := evaluateOperands(n, n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		return ast.NewBoolean(a < b), nil
	case nil:
		return nil, fmt.Errorf("evaluate: nil expression")
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", expr.NodeType())
	}
}

func evaluateOperands(node ast.Expression, left, right ast.Expression, env *runtime.Environment) (int64, int64, error) {
	lv, err := Evaluate(left, env)
	if err != nil {
		return 0, 0, err
	}
	rv, err := Evaluate(right, env)
	if err != nil {
		return 0, 0, err
	}
	a, ok := lv.(*ast.Number)
	if !ok {
		return 0, 0, runtime.NewTypeMismatchError(node, ast.NodeNumber, lv)
	}
	b, ok := rv.(*ast.Number)
	if !ok {
		return 0, 0, runtime.NewTypeMismatchError(node, ast.NodeNumber, rv)
	}
	return a.Value, b.Value, nil
}

// Execute runs stmt to completion and returns the resulting environment. The input
// environment is never modified.
func Execute(stmt ast.Statement, env *runtime.Environment) (*runtime.Environment, error) {
	if env == nil {
		env = runtime.EmptyEnvironment()
	}
	switch n := stmt.(type) {
	case *ast.DoNothing:
		return env, nil
	case *ast.AssignStatement:
		value, err := Evaluate(n.Expression, env)
		if err != nil {
			return nil, err
		}
		return env.Set(n.Name, value), nil
	case *ast.IfStatement:
		branch, err := chooseBranch(n, n.Condition, env)
		if err != nil {
			return nil, err
		}
		if branch {
			return Execute(n.Consequence, env)
		}
		return Execute(n.Alternative, env)
	case *ast.SequenceStatement:
		next, err := Execute(n.First, env)
		if err != nil {
			return nil, err
		}
		return Execute(n.Second, next)
	case *ast.WhileLoop:
		for {
			again, err := chooseBranch(n, n.Condition, env)
			if err != nil {
				return nil, err
			}
			if !again {
				return env, nil
			}
			env, err = Execute(n.Body, env)
			if err != nil {
				return nil, err
			}
		}
	case nil:
		return nil, fmt.Errorf("execute: nil statement")
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", stmt.NodeType())
	}
}

// chooseBranch tests the condition for true and, failing that, evaluates it again and tests
// for false. A non-Boolean condition is a TypeMismatch on node.
func chooseBranch(node ast.Statement, cond ast.Expression, env *runtime.Environment) (bool, error) {
	value, err := Evaluate(cond, env)
	if err != nil {
		return false, err
	}
	if b, ok := value.(*ast.Boolean); ok && b.Value {
		return true, nil
	}
	value, err = Evaluate(cond, env)
	if err != nil {
		return false, err
	}
	if b, ok := value.(*ast.Boolean); ok && !b.Value {
		return false, nil
	}
	return false, runtime.NewTypeMismatchError(node, ast.NodeBoolean, value)
}

// EvaluateNode runs either kind of node with the big-step rules. Expressions yield their
// value and leave env as is; statements yield a nil value and the final environment.
func EvaluateNode(node ast.Node, env *runtime.Environment) (ast.Value, *runtime.Environment, error) {
	if env == nil {
		env = runtime.EmptyEnvironment()
	}
	switch n := node.(type) {
	case ast.Expression:
		value, err := Evaluate(n, env)
		if err != nil {
			return nil, nil, err
		}
		return value, env, nil
	case ast.Statement:
		next, err := Execute(n, env)
		if err != nil {
			return nil, nil, err
		}
		return nil, next, nil
	default:
		return nil, nil, fmt.Errorf("evaluate: unsupported node %T", node)
	}
}
