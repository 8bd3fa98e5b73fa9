package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalResultBinding(t *testing.T) {
	ev := NewTengoEvaluator()
	out, err := ev.Eval(context.Background(), `result := {payload: "ok", status_code: 201}`, nil)
	require.NoError(t, err)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", m["payload"])
	assert.Equal(t, int64(201), m["status_code"])
}

func TestEvalNoResultIsNil(t *testing.T) {
	ev := NewTengoEvaluator()
	out, err := ev.Eval(context.Background(), `x := 1 + 1`, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEvalScopeValues(t *testing.T) {
	ev := NewTengoEvaluator()
	scope := Scope{
		"params": map[string]any{"qty": int64(3)},
	}
	out, err := ev.Eval(context.Background(), `result := {payload: params.qty * 2}`, scope)
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, int64(6), m["payload"])
}

func TestEvalHostFunction(t *testing.T) {
	ev := NewTengoEvaluator()
	scope := Scope{
		"greet": Func(func(args ...any) (any, error) {
			name, _ := args[0].(string)
			return "hello " + name, nil
		}),
	}
	out, err := ev.Eval(context.Background(), `result := {payload: greet("world")}`, scope)
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "hello world", m["payload"])
}

func TestEvalHostErrorAborts(t *testing.T) {
	boom := errors.New("backend down")
	ev := NewTengoEvaluator()
	scope := Scope{
		"fail": Func(func(args ...any) (any, error) { return nil, boom }),
	}
	_, err := ev.Eval(context.Background(), `fail(); result := {payload: "unreached"}`, scope)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom, "host error must surface unwrapped-able")
}

func TestEvalBranchingAndConditionals(t *testing.T) {
	ev := NewTengoEvaluator()
	src := `
qty := params.qty
status := 200
if qty > 10 {
    status = 400
}
result := {payload: qty, status_code: status}
`
	out, err := ev.Eval(context.Background(), src, Scope{"params": map[string]any{"qty": int64(12)}})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, int64(400), m["status_code"])
}

func TestEvalTimeout(t *testing.T) {
	ev := &TengoEvaluator{MaxDuration: 50 * time.Millisecond}
	_, err := ev.Eval(context.Background(), `for { }`, nil)
	assert.Error(t, err)
}

func TestEvalNoImports(t *testing.T) {
	ev := NewTengoEvaluator()
	_, err := ev.Eval(context.Background(), `os := import("os"); result := {payload: 1}`, nil)
	assert.Error(t, err, "module imports are disabled")
}
