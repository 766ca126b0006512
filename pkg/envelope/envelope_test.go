package envelope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvokerContext(t *testing.T) {
	ctx := context.Background()

	_, ok := InvokerFrom(ctx)
	assert.False(t, ok)

	inv := Invoker{Kind: KindAccount, ID: "acct-1"}
	ctx = WithInvoker(ctx, inv)

	got, ok := InvokerFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, inv, got)
}

func TestIsAccount(t *testing.T) {
	assert.True(t, Invoker{Kind: KindAccount, ID: "acct-1"}.IsAccount())
	assert.False(t, Invoker{Kind: KindContract, ID: "contract-1"}.IsAccount())
	assert.False(t, Invoker{Kind: KindAccount}.IsAccount(), "empty ID is not attributable")
	assert.False(t, Invoker{}.IsAccount())
}
