// Package envelope is the invocation envelope: it identifies who is calling
// an engine operation and carries that identity on the context. It also holds
// the host-side adjust policy. The core engine itself never restricts callers
// beyond rejecting contract-originated invocations.
package envelope

import "context"

// Kind classifies the resolved caller.
type Kind string

const (
	// KindAccount is an individually-attributable account.
	KindAccount Kind = "account"
	// KindContract is a contract-to-contract caller.
	KindContract Kind = "contract"
)

// Invoker is the resolved calling identity of one invocation.
type Invoker struct {
	Kind Kind
	ID   string
}

// IsAccount reports whether the invoker is an attributable account.
func (i Invoker) IsAccount() bool {
	return i.Kind == KindAccount && i.ID != ""
}

type invokerKey struct{}

// WithInvoker returns a context carrying the resolved invoker.
func WithInvoker(ctx context.Context, inv Invoker) context.Context {
	return context.WithValue(ctx, invokerKey{}, inv)
}

// InvokerFrom extracts the invoker placed on the context by the host.
func InvokerFrom(ctx context.Context) (Invoker, bool) {
	inv, ok := ctx.Value(invokerKey{}).(Invoker)
	return inv, ok
}
