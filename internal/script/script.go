// Package script exposes a flat, namespaced function table as the scripting
// boundary. Host bindings register functions under "namespace.name"; the
// embedding layer dispatches calls with JSON-decoded argument lists and gets
// back JSON-encodable results. No scripting state lives on this side.
package script

import (
	"fmt"
	"sort"
	"sync"
)

// Func is one host function. Args arrive as decoded JSON values (float64 for
// numbers, string, bool, nil, []any, map[string]any).
type Func func(args []any) (any, error)

// ErrUnknownFunction is wrapped by Call for unregistered names.
var ErrUnknownFunction = fmt.Errorf("script: unknown function")

// Table maps qualified names to host functions. Registration happens at
// startup; Call is safe for concurrent use afterwards.
type Table struct {
	mu  sync.RWMutex
	fns map[string]Func
}

func NewTable() *Table {
	return &Table{fns: make(map[string]Func)}
}

// Register adds a function under namespace.name. Re-registering a name is a
// programming error and panics.
func (t *Table) Register(namespace, name string, fn Func) {
	if namespace == "" || name == "" || fn == nil {
		panic("script: invalid registration")
	}
	key := namespace + "." + name
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.fns[key]; dup {
		panic(fmt.Sprintf("script: duplicate function %q", key))
	}
	t.fns[key] = fn
}

// Call invokes a qualified function name.
func (t *Table) Call(qualified string, args []any) (any, error) {
	t.mu.RLock()
	fn, ok := t.fns[qualified]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, qualified)
	}
	return fn(args)
}

// Names returns all registered qualified names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.fns))
	for k := range t.fns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// argInt extracts args[i] as an int, accepting the float64 JSON numbers
// produce.
func argInt(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("script: missing argument %d", i)
	}
	switch v := args[i].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("script: argument %d: %v is not an integer", i, v)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("script: argument %d: expected number, got %T", i, args[i])
	}
}

func argString(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("script: missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("script: argument %d: expected string, got %T", i, args[i])
	}
	return s, nil
}

// argMap extracts args[i] as a JSON object, or nil when absent.
func argMap(args []any, i int) (map[string]any, error) {
	if i >= len(args) || args[i] == nil {
		return nil, nil
	}
	m, ok := args[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("script: argument %d: expected object, got %T", i, args[i])
	}
	return m, nil
}
