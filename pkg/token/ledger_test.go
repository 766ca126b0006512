package token

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerTransferFrom(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	l.Mint("owner", big.NewInt(1000))
	l.Approve("owner", "spender", big.NewInt(300))

	assert.Equal(t, big.NewInt(300), l.Allowance("owner", "spender"))

	svc := l.AsSpender("spender")
	require.NoError(t, svc.TransferFrom(ctx, "owner", "payee", big.NewInt(200)))

	assert.Equal(t, big.NewInt(800), l.BalanceOf("owner"))
	assert.Equal(t, big.NewInt(200), l.BalanceOf("payee"))
	assert.Equal(t, big.NewInt(100), l.Allowance("owner", "spender"))
}

func TestLedgerInsufficientAllowance(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	l.Mint("owner", big.NewInt(1000))
	l.Approve("owner", "spender", big.NewInt(50))

	err := l.AsSpender("spender").TransferFrom(ctx, "owner", "payee", big.NewInt(51))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, big.NewInt(1000), l.BalanceOf("owner"))
	assert.Equal(t, big.NewInt(0), l.BalanceOf("payee"))
}

func TestLedgerInsufficientBalance(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	l.Mint("owner", big.NewInt(10))
	l.Approve("owner", "spender", big.NewInt(100))

	err := l.AsSpender("spender").TransferFrom(ctx, "owner", "payee", big.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, big.NewInt(100), l.Allowance("owner", "spender"), "failed transfer must not burn allowance")
}

func TestLedgerInvalidAmount(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()
	svc := l.AsSpender("spender")

	assert.ErrorIs(t, svc.TransferFrom(ctx, "a", "b", nil), ErrInvalidAmount)
	assert.ErrorIs(t, svc.TransferFrom(ctx, "a", "b", big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, svc.TransferFrom(ctx, "a", "b", big.NewInt(-5)), ErrInvalidAmount)
}

func TestLedgerIncrAllowance(t *testing.T) {
	l := NewLedger()

	l.IncrAllowance("owner", "spender", big.NewInt(40))
	l.IncrAllowance("owner", "spender", big.NewInt(60))
	assert.Equal(t, big.NewInt(100), l.Allowance("owner", "spender"))
}

// Transfers conserve total supply.
func TestLedgerConservation(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	l.Mint("owner", big.NewInt(500))
	l.Approve("owner", "spender", big.NewInt(500))
	svc := l.AsSpender("spender")

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.TransferFrom(ctx, "owner", "payee", big.NewInt(100)))
	}

	total := new(big.Int).Add(l.BalanceOf("owner"), l.BalanceOf("payee"))
	assert.Equal(t, big.NewInt(500), total)
	assert.Equal(t, big.NewInt(0), l.Allowance("owner", "spender"))
}
