package driver

import (
	"golang.org/x/exp/slices"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

type demoBuilder func() *Program

var demos = map[string]demoBuilder{
	"arithmetic": func() *Program {
		return &Program{
			Description: "1 * 2 + 3 * 4 reduced one operation at a time",
			Environment: runtime.EmptyEnvironment(),
			Root:        ast.Add(ast.Mul(ast.Num(1), ast.Num(2)), ast.Mul(ast.Num(3), ast.Num(4))),
			Expect:      &Expectation{Value: ast.Num(14), Steps: 3},
		}
	},
	"compare": func() *Program {
		return &Program{
			Description: "5 < 2 + 2",
			Environment: runtime.EmptyEnvironment(),
			Root:        ast.Lt(ast.Num(5), ast.Add(ast.Num(2), ast.Num(2))),
			Expect:      &Expectation{Value: ast.Bool(false), Steps: 2},
		}
	},
	"assign": func() *Program {
		return &Program{
			Description: "x = x + 1 starting from x = 2",
			Environment: env(map[string]ast.Value{"x": ast.Num(2)}),
			Root:        ast.Assign("x", ast.Add(ast.Var("x"), ast.Num(1))),
			Expect: &Expectation{
				Environment: env(map[string]ast.Value{"x": ast.Num(3)}),
				Steps:       3,
			},
		}
	},
	"conditional": func() *Program {
		return &Program{
			Description: "if x { y = 1 } else { y = 2 } with x = true",
			Environment: env(map[string]ast.Value{"x": ast.Bool(true)}),
			Root:        ast.If(ast.Var("x"), ast.Assign("y", ast.Num(1)), ast.Assign("y", ast.Num(2))),
			Expect: &Expectation{
				Environment: env(map[string]ast.Value{"x": ast.Bool(true), "y": ast.Num(1)}),
				Steps:       3,
			},
		}
	},
	"sequence": func() *Program {
		return &Program{
			Description: "x = 1 + 1; y = x + 3",
			Environment: runtime.EmptyEnvironment(),
			Root: ast.Seq(
				ast.Assign("x", ast.Add(ast.Num(1), ast.Num(1))),
				ast.Assign("y", ast.Add(ast.Var("x"), ast.Num(3))),
			),
			Expect: &Expectation{
				Environment: env(map[string]ast.Value{"x": ast.Num(2), "y": ast.Num(5)}),
				Steps:       6,
			},
		}
	},
	"triple": func() *Program {
		return &Program{
			Description: "while (x < 5) { x = x * 3 } starting from x = 1",
			Environment: env(map[string]ast.Value{"x": ast.Num(1)}),
			Root:        ast.While(ast.Lt(ast.Var("x"), ast.Num(5)), ast.Assign("x", ast.Mul(ast.Var("x"), ast.Num(3)))),
			Expect: &Expectation{
				Environment: env(map[string]ast.Value{"x": ast.Num(9)}),
				Steps:       20,
			},
		}
	},
	"unbound": func() *Program {
		return &Program{
			Description: "y = z + 1 with z never assigned",
			Environment: runtime.EmptyEnvironment(),
			Root:        ast.Assign("y", ast.Add(ast.Var("z"), ast.Num(1))),
			Expect:      &Expectation{Error: runtime.KindUnboundVariable},
		}
	},
}

// DemoNames lists the built-in demonstration programs.
func DemoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Demo returns a fresh copy of the named demonstration program.
func Demo(name string) (*Program, bool) {
	build, ok := demos[name]
	if !ok {
		return nil, false
	}
	program := build()
	program.Name = name
	return program, true
}

func env(bindings map[string]ast.Value) *runtime.Environment {
	return runtime.NewEnvironment(bindings)
}
