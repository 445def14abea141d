package runtime

import (
	"hash/fnv"
	"strings"

	"github.com/raviqqe/hamt"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"simple/interpreter-go/pkg/ast"
)

// Environment is a persistent mapping from variable names to values. Set returns a new
// environment and leaves the receiver untouched, so older snapshots stay valid after later
// steps. A nil *Environment behaves as the empty environment.
type Environment struct {
	bindings hamt.Map
}

type nameKey string

func (k nameKey) Hash() uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k))
	return h.Sum32()
}

func (k nameKey) Equal(other hamt.Entry) bool {
	o, ok := other.(nameKey)
	return ok && o == k
}

// NewEnvironment builds an environment holding the provided bindings.
func NewEnvironment(bindings map[string]ast.Value) *Environment {
	m := hamt.NewMap()
	for name, value := range bindings {
		m = m.Insert(nameKey(name), value)
	}
	return &Environment{bindings: m}
}

// EmptyEnvironment returns an environment with no bindings.
func EmptyEnvironment() *Environment {
	return &Environment{bindings: hamt.NewMap()}
}

func (e *Environment) table() hamt.Map {
	if e == nil {
		return hamt.NewMap()
	}
	return e.bindings
}

// Lookup returns the value bound to name.
func (e *Environment) Lookup(name string) (ast.Value, bool) {
	found := e.table().Find(nameKey(name))
	if found == nil {
		return nil, false
	}
	value, ok := found.(ast.Value)
	return value, ok
}

// Get returns the value bound to name or an UnboundVariable error.
func (e *Environment) Get(name string) (ast.Value, error) {
	if value, ok := e.Lookup(name); ok {
		return value, nil
	}
	return nil, NewUnboundVariableError(nil, name)
}

// Set returns a new environment with name bound to value.
func (e *Environment) Set(name string, value ast.Value) *Environment {
	return &Environment{bindings: e.table().Insert(nameKey(name), value)}
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	return e.table().Size()
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, e.Len())
	rest := e.table()
	for rest.Size() > 0 {
		var key hamt.Entry
		key, _, rest = rest.FirstRest()
		names = append(names, string(key.(nameKey)))
	}
	slices.Sort(names)
	return names
}

// Snapshot returns a plain copy of the current bindings.
func (e *Environment) Snapshot() map[string]ast.Value {
	out := make(map[string]ast.Value, e.Len())
	for _, name := range e.Names() {
		out[name], _ = e.Lookup(name)
	}
	return out
}

// Equal reports whether both environments bind the same names to equal values.
func (e *Environment) Equal(other *Environment) bool {
	return len(e.Diff(other)) == 0
}

// Diff describes every binding that differs between e and other, in name order.
func (e *Environment) Diff(other *Environment) []string {
	names := lo.Uniq(append(e.Names(), other.Names()...))
	slices.Sort(names)
	var diffs []string
	for _, name := range names {
		mine, inMine := e.Lookup(name)
		theirs, inTheirs := other.Lookup(name)
		switch {
		case !inTheirs:
			diffs = append(diffs, name+": "+ast.Format(mine)+" != <unbound>")
		case !inMine:
			diffs = append(diffs, name+": <unbound> != "+ast.Format(theirs))
		case !ast.Equal(mine, theirs):
			diffs = append(diffs, name+": "+ast.Format(mine)+" != "+ast.Format(theirs))
		}
	}
	return diffs
}

// String renders the bindings in name order, e.g. `{x: 9, y: true}`.
func (e *Environment) String() string {
	entries := lo.Map(e.Names(), func(name string, _ int) string {
		value, _ := e.Lookup(name)
		return name + ": " + ast.Format(value)
	})
	return "{" + strings.Join(entries, ", ") + "}"
}
