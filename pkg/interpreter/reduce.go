package interpreter

import (
	"fmt"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

// Reduce performs exactly one small-step rewrite of node under env and returns the next
// node and environment. Normal forms (Number, Boolean, DoNothing) fail with NotReducible.
// On failure neither the node nor the environment is returned.
func Reduce(node ast.Node, env *runtime.Environment) (ast.Node, *runtime.Environment, error) {
	switch n := node.(type) {
	case ast.Expression:
		next, nextEnv, err := reduceExpression(n, env)
		if err != nil {
			return nil, nil, err
		}
		return next, nextEnv, nil
	case ast.Statement:
		next, nextEnv, err := reduceStatement(n, env)
		if err != nil {
			return nil, nil, err
		}
		return next, nextEnv, nil
	case nil:
		return nil, nil, fmt.Errorf("reduce: nil node")
	default:
		return nil, nil, fmt.Errorf("unsupported node type: %s", n.NodeType())
	}
}

func reduceExpression(expr ast.Expression, env *runtime.Environment) (ast.Expression, *runtime.Environment, error) {
	switch n := expr.(type) {
	case *ast.Number, *ast.Boolean:
		return nil, nil, runtime.NewNotReducibleError(n)
	case *ast.Variable:
		value, ok := env.Lookup(n.Name)
		if !ok {
			return nil, nil, runtime.NewUnboundVariableError(n, n.Name)
		}
		return value, env, nil
	case *ast.AddExpression:
		return reduceBinary(n, n.Left, n.Right, env,
			func(left, right ast.Expression) ast.Expression { return ast.NewAdd(left, right) },
			func(a, b int64) ast.Expression { return ast.NewNumber(a + b) })
	case *ast.MultiplyExpression:
		return reduceBinary(n, n.Left, n.Right, env,
			func(left, right ast.Expression) ast.Expression { return ast.NewMultiply(left, right) },
			func(a, b int64) ast.Expression { return ast.NewNumber(a * b) })
	case *ast.LessThanExpression:
		return reduceBinary(n, n.Left, n.Right, env,
			func(left, right ast.Expression) ast.Expression { return ast.NewLessThan(left, right) },
			func(a, b int64) ast.Expression { return ast.NewBoolean(a < b) })
	default:
		return nil, nil, fmt.Errorf("unsupported expression type: %s", expr.NodeType())
	}
}

// reduceBinary steps the left operand until it is a value, then the right one, and only
// then combines them. Each call advances a single operand by a single step.
func reduceBinary(
	node ast.Expression,
	left, right ast.Expression,
	env *runtime.Environment,
	rebuild func(left, right ast.Expression) ast.Expression,
	combine func(a, b int64) ast.Expression,
) (ast.Expression, *runtime.Environment, error) {
	if ast.IsReducible(left) {
		next, nextEnv, err := reduceExpression(left, env)
		if err != nil {
			return nil, nil, err
		}
		return ast.InheritSpan(rebuild(next, right), node), nextEnv, nil
	}
	if ast.IsReducible(right) {
		next, nextEnv, err := reduceExpression(right, env)
		if err != nil {
			return nil, nil, err
		}
		return ast.InheritSpan(rebuild(left, next), node), nextEnv, nil
	}
	a, ok := left.(*ast.Number)
	if !ok {
		return nil, nil, runtime.NewTypeMismatchError(node, ast.NodeNumber, left)
	}
	b, ok := right.(*ast.Number)
	if !ok {
		return nil, nil, runtime.NewTypeMismatchError(node, ast.NodeNumber, right)
	}
	return ast.InheritSpan(combine(a.Value, b.Value), node), env, nil
}

func reduceStatement(stmt ast.Statement, env *runtime.Environment) (ast.Statement, *runtime.Environment, error) {
	switch n := stmt.(type) {
	case *ast.DoNothing:
		return nil, nil, runtime.NewNotReducibleError(n)
	case *ast.AssignStatement:
		if ast.IsReducible(n.Expression) {
			next, nextEnv, err := reduceExpression(n.Expression, env)
			if err != nil {
				return nil, nil, err
			}
			return ast.InheritSpan(ast.NewAssign(n.Name, next), n), nextEnv, nil
		}
		value, ok := n.Expression.(ast.Value)
		if !ok {
			return nil, nil, runtime.NewTypeMismatchError(n, ast.NodeNumber, n.Expression)
		}
		return ast.InheritSpan(ast.NewDoNothing(), n), env.Set(n.Name, value), nil
	case *ast.IfStatement:
		if ast.IsReducible(n.Condition) {
			next, nextEnv, err := reduceExpression(n.Condition, env)
			if err != nil {
				return nil, nil, err
			}
			return ast.InheritSpan(ast.NewIf(next, n.Consequence, n.Alternative), n), nextEnv, nil
		}
		cond, ok := n.Condition.(*ast.Boolean)
		if !ok {
			return nil, nil, runtime.NewTypeMismatchError(n, ast.NodeBoolean, n.Condition)
		}
		if cond.Value {
			return n.Consequence, env, nil
		}
		return n.Alternative, env, nil
	case *ast.SequenceStatement:
		if ast.IsDoNothing(n.First) {
			return n.Second, env, nil
		}
		next, nextEnv, err := reduceStatement(n.First, env)
		if err != nil {
			return nil, nil, err
		}
		return ast.InheritSpan(ast.NewSequence(next, n.Second), n), nextEnv, nil
	case *ast.WhileLoop:
		// The loop node itself is the tail of the unrolled sequence, so the same While is
		// reconsidered after the body runs.
		body := ast.InheritSpan(ast.NewSequence(n.Body, n), n)
		return ast.InheritSpan(ast.NewIf(n.Condition, body, ast.NewDoNothing()), n), env, nil
	default:
		return nil, nil, fmt.Errorf("unsupported statement type: %s", stmt.NodeType())
	}
}
