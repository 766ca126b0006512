package envelope

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// AdjustPolicy gates amount adjustment at the envelope. The core leaves
// fix_amount open to any caller; hosts that want an ownership rule compile
// one here, e.g. `invoker == sender`.
//
// Amounts are exposed as decimal strings: they are 128-bit quantities and do
// not fit CEL's int.
type AdjustPolicy struct {
	prg cel.Program
}

// AdjustInput is the evaluation input for one fix_amount attempt.
type AdjustInput struct {
	Invoker   string
	Sender    string
	OldAmount string
	NewAmount string
}

// CompileAdjustPolicy compiles a CEL expression over the variables
// invoker, sender, old_amount and new_amount. The expression must evaluate
// to a bool.
func CompileAdjustPolicy(expr string) (*AdjustPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("invoker", cel.StringType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("old_amount", cel.StringType),
		cel.Variable("new_amount", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile policy: %w", iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy program: %w", err)
	}

	return &AdjustPolicy{prg: prg}, nil
}

// Allow evaluates the policy. Evaluation errors deny (fail closed).
func (p *AdjustPolicy) Allow(in AdjustInput) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		"invoker":    in.Invoker,
		"sender":     in.Sender,
		"old_amount": in.OldAmount,
		"new_amount": in.NewAmount,
	})
	if err != nil {
		return false, fmt.Errorf("policy evaluation failed: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy did not evaluate to bool, got %T", out.Value())
	}
	return allowed, nil
}
