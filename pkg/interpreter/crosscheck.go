package interpreter

import (
	"context"
	"fmt"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

// CrossCheckResult compares a small-step run with a big-step evaluation of the same node.
type CrossCheckResult struct {
	Steps       int
	SmallStep   State
	BigStepEnv  *runtime.Environment
	BigStepNode ast.Value
	Diffs       []string
}

// Consistent reports whether both engines agreed.
func (r CrossCheckResult) Consistent() bool {
	return len(r.Diffs) == 0
}

// CrossCheck runs node on a Machine built with opts and through EvaluateNode, then diffs
// the outcomes. When both engines fail the small-step error is returned; a program that
// fails in only one engine is reported as a diff. A run stopped by a bound or by ctx is
// returned without evaluating.
func CrossCheck(ctx context.Context, node ast.Node, env *runtime.Environment, opts ...Option) (CrossCheckResult, error) {
	if env == nil {
		env = runtime.EmptyEnvironment()
	}
	machine := NewMachine(node, env, opts...)
	final, runErr := machine.Run(ctx, nil)
	result := CrossCheckResult{Steps: machine.Steps(), SmallStep: final}
	if runErr != nil {
		if _, ok := runtime.KindOf(runErr); !ok {
			// Bounded out: the big-step engine has no bounds and may never return.
			return result, runErr
		}
	}

	value, bigEnv, evalErr := EvaluateNode(node, env)
	result.BigStepEnv = bigEnv
	result.BigStepNode = value
	switch {
	case runErr != nil && evalErr != nil:
		smallKind, _ := runtime.KindOf(runErr)
		bigKind, _ := runtime.KindOf(evalErr)
		if smallKind != bigKind {
			result.Diffs = append(result.Diffs, fmt.Sprintf("error: %v != %v", runErr, evalErr))
		}
		return result, runErr
	case runErr != nil:
		result.Diffs = append(result.Diffs, fmt.Sprintf("error: %v != <none>", runErr))
		return result, nil
	case evalErr != nil:
		result.Diffs = append(result.Diffs, fmt.Sprintf("error: <none> != %v", evalErr))
		return result, nil
	}

	if value != nil {
		if !ast.Equal(final.Node, value) {
			result.Diffs = append(result.Diffs, fmt.Sprintf("value: %s != %s", ast.Format(final.Node), ast.Format(value)))
		}
		return result, nil
	}
	result.Diffs = append(result.Diffs, final.Environment.Diff(bigEnv)...)
	return result, nil
}
