package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
)

// TengoEvaluator runs snippets on the Tengo VM. No module imports are
// installed, so the scope handed to Eval is the entire reachable surface.
type TengoEvaluator struct {
	// MaxDuration bounds a single evaluation; zero means no limit.
	MaxDuration time.Duration
	// MaxAllocs bounds object allocations per evaluation; zero means no limit.
	MaxAllocs int64
}

// NewTengoEvaluator returns an evaluator with conservative limits.
func NewTengoEvaluator() *TengoEvaluator {
	return &TengoEvaluator{
		MaxDuration: 5 * time.Second,
		MaxAllocs:   1_000_000,
	}
}

func (t *TengoEvaluator) Eval(ctx context.Context, src string, scope Scope) (any, error) {
	script := tengo.NewScript([]byte(src))
	script.SetImports(nil)
	script.EnableFileImport(false)
	if t.MaxAllocs > 0 {
		script.SetMaxAllocs(t.MaxAllocs)
	}
	for name, v := range scope {
		obj, err := toObject(v)
		if err != nil {
			return nil, fmt.Errorf("scope value %q: %w", name, err)
		}
		if err := script.Add(name, obj); err != nil {
			return nil, fmt.Errorf("scope value %q: %w", name, err)
		}
	}

	if t.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.MaxDuration)
		defer cancel()
	}
	compiled, err := script.RunContext(ctx)
	if err != nil {
		return nil, err
	}

	v := compiled.Get(ResultVar)
	if v == nil || v.IsUndefined() {
		return nil, nil
	}
	return v.Value(), nil
}

// toObject converts a scope value into a Tengo object. Maps become
// immutable so a snippet cannot mutate the host's view of the scope.
func toObject(v any) (tengo.Object, error) {
	switch x := v.(type) {
	case nil:
		return tengo.UndefinedValue, nil
	case Func:
		return &tengo.UserFunction{Value: wrapFunc(x)}, nil
	case func(args ...any) (any, error):
		return &tengo.UserFunction{Value: wrapFunc(x)}, nil
	case map[string]any:
		m := make(map[string]tengo.Object, len(x))
		for k, mv := range x {
			o, err := toObject(mv)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			m[k] = o
		}
		return &tengo.ImmutableMap{Value: m}, nil
	case []any:
		arr := make([]tengo.Object, 0, len(x))
		for i, av := range x {
			o, err := toObject(av)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, o)
		}
		return &tengo.ImmutableArray{Value: arr}, nil
	default:
		return tengo.FromInterface(v)
	}
}

func wrapFunc(fn Func) tengo.CallableFunc {
	return func(args ...tengo.Object) (tengo.Object, error) {
		goArgs := make([]any, 0, len(args))
		for _, a := range args {
			goArgs = append(goArgs, tengo.ToInterface(a))
		}
		out, err := fn(goArgs...)
		if err != nil {
			return nil, err
		}
		return toObject(out)
	}
}
