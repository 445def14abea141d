package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/runtime"
)

// ErrStepLimitExceeded is returned by Run when the machine's step bound is reached before
// a normal form.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// ErrNilNode is returned by Step and Run when the machine was started without a node.
var ErrNilNode = errors.New("machine: nil node")

// State is one (node, environment) pair of a machine run. Step counts the transitions
// taken to reach it.
type State struct {
	Step        int
	Node        ast.Node
	Environment *runtime.Environment
}

// Terminal reports whether the state is in normal form.
func (s State) Terminal() bool {
	return !ast.IsReducible(s.Node)
}

// String renders the state the way traces print it: `x = x * 3, {x: 1}`.
func (s State) String() string {
	return ast.Format(s.Node) + ", " + s.Environment.String()
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxSteps bounds the number of transitions a single call to Run may take. Steps taken
// before the call do not count against it. Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxSteps = n
		}
	}
}

// WithTimeout bounds the wall-clock time of Run. Zero means unbounded.
func WithTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger logs every transition at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// Machine drives a node to normal form one reduction at a time. It owns its current
// (node, environment) pair; kind-specific behaviour lives entirely in Reduce.
type Machine struct {
	node     ast.Node
	env      *runtime.Environment
	steps    int
	maxSteps int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewMachine starts a machine at (node, env). A nil env is treated as empty.
func NewMachine(node ast.Node, env *runtime.Environment, opts ...Option) *Machine {
	if env == nil {
		env = runtime.EmptyEnvironment()
	}
	m := &Machine{node: node, env: env}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current pair.
func (m *Machine) State() State {
	return State{Step: m.steps, Node: m.node, Environment: m.env}
}

// Steps returns the number of transitions taken so far.
func (m *Machine) Steps() int {
	return m.steps
}

// Step performs exactly one transition. It fails with NotReducible in a terminal state and
// leaves the machine unchanged on any failure.
func (m *Machine) Step() error {
	if m.node == nil {
		return ErrNilNode
	}
	if !ast.IsReducible(m.node) {
		return runtime.NewNotReducibleError(m.node)
	}
	next, env, err := Reduce(m.node, m.env)
	if err != nil {
		return err
	}
	m.node = next
	m.env = env
	m.steps++
	if m.logger != nil {
		m.logger.Debug("reduced", "step", m.steps, "kind", string(next.NodeType()), "node", ast.Format(next))
	}
	return nil
}

// Run emits the current state to sink, stops once it is terminal, and otherwise steps.
// The terminal state is always the last emission. Step failures are returned unchanged.
// Bounds and ctx are checked between steps only; without them a program that never
// reaches a normal form keeps Run going forever.
func (m *Machine) Run(ctx context.Context, sink TraceSink) (State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.node == nil {
		return m.State(), ErrNilNode
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	start := m.steps
	for {
		state := m.State()
		if sink != nil {
			if err := sink.Emit(state); err != nil {
				return state, fmt.Errorf("trace sink: %w", err)
			}
		}
		if state.Terminal() {
			if m.logger != nil {
				m.logger.Debug("normal form", "steps", m.steps, "environment", m.env.String())
			}
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("stopped after %d steps: %w", m.steps, err)
		}
		if m.maxSteps > 0 && m.steps-start >= m.maxSteps {
			return state, fmt.Errorf("%w: %d", ErrStepLimitExceeded, m.maxSteps)
		}
		if err := m.Step(); err != nil {
			return state, err
		}
	}
}
