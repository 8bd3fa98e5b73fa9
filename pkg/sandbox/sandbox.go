// Package sandbox is the restricted-evaluation capability the endpoint
// dispatcher delegates to. Callers construct the allow-listed scope; the
// evaluator guarantees a snippet can reach nothing outside of it.
package sandbox

import "context"

// ResultVar is the variable a snippet must bind its outcome to.
const ResultVar = "result"

// Func is a host function exposed to snippets through the scope. Returning
// an error aborts the evaluation; the dispatcher inspects the error type.
type Func func(args ...any) (any, error)

// Scope is the complete set of names visible to a snippet. Values may be
// strings, numbers, bools, time.Time, []any, nested map[string]any, or Func.
type Scope map[string]any

// Evaluator executes snippet source in exec mode: assignment, branching,
// and calls into scope values are all supported. It returns the value the
// snippet bound to ResultVar, or nil when the snippet left it unbound.
type Evaluator interface {
	Eval(ctx context.Context, src string, scope Scope) (any, error)
}
