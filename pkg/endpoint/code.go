package endpoint

import (
	"context"

	"github.com/ursais/web-api/pkg/sandbox"
)

// CodeHandler services ModeCode endpoints by evaluating the stored snippet
// in the restricted evaluator.
type CodeHandler struct {
	Eval sandbox.Evaluator
	Env  ScopeEnv
	Sink LogSink
}

func NewCodeHandler(eval sandbox.Evaluator, env ScopeEnv, sink LogSink) *CodeHandler {
	if sink == nil {
		sink = NopSink{}
	}
	return &CodeHandler{Eval: eval, Env: env, Sink: sink}
}

func (h *CodeHandler) Mode() ExecMode { return ModeCode }

func (h *CodeHandler) Handle(ctx context.Context, call *Call) (Result, error) {
	if !call.Endpoint.SnippetValued() {
		return Result{}, nil
	}
	scope := BuildScope(ctx, call, h.Env, h.Sink)
	scope["params"] = paramsScope(call.Params)

	out, err := h.Eval.Eval(ctx, call.Endpoint.CodeSnippet, scope)
	if err != nil {
		return Result{}, err
	}
	return ParseResult(out)
}

func paramsScope(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	return params
}
