package lang

import (
	"context"
	"errors"

	"github.com/ardnew/stargn/gn"
)

// recorder is an Engine that records every call it receives.
type recorder struct {
	declared  []*gn.FunctionCallNode
	imported  []string
	templates map[string][]string
	fail      map[string]error
	onDeclare func(call *gn.FunctionCallNode)
}

func newRecorder() *recorder {
	return &recorder{templates: map[string][]string{}, fail: map[string]error{}}
}

func (r *recorder) ExecuteDeclaration(ctx context.Context, call *gn.FunctionCallNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.onDeclare != nil {
		r.onDeclare(call)
	}

	if err, ok := r.fail[call.Function.Value]; ok {
		return err
	}

	r.declared = append(r.declared, call)

	return nil
}

func (r *recorder) ExecuteImport(_ context.Context, call *gn.FunctionCallNode) ([]string, error) {
	lit := call.Args.Contents[0].(*gn.LiteralNode)

	module, ok := gn.Unquote(lit.Value.Value)
	if !ok {
		return nil, errors.New("bad import literal")
	}

	r.imported = append(r.imported, module)

	names, ok := r.templates[module]
	if !ok {
		return nil, &gn.Err{Message: "Unable to load import.", Help: module}
	}

	return names, nil
}

func (r *recorder) names() []string {
	out := make([]string, len(r.declared))
	for i, call := range r.declared {
		out[i] = call.Function.Value + ":" + call.Args.Contents[0].(*gn.LiteralNode).Value.Value
	}

	return out
}
