package gate_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fairwater-Labs/drip/pkg/envelope"
	"github.com/Fairwater-Labs/drip/pkg/gate"
	"github.com/Fairwater-Labs/drip/pkg/revenue"
	"github.com/Fairwater-Labs/drip/pkg/store"
	"github.com/Fairwater-Labs/drip/pkg/token"
)

const (
	senderID   = "GACC-SENDER"
	receiverID = "GACC-RECEIVER"
	engineID   = "drip-engine"
	assetID    = "CUSD"

	startEpoch = int64(1669593600)
	payment    = int64(10_000_000)
	week       = int64(604800)
)

type env struct {
	store  *store.MemoryStore
	ledger *token.Ledger
	now    int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:  store.NewMemoryStore(),
		ledger: token.NewLedger(),
		now:    startEpoch + 10,
	}
	e.ledger.Mint(senderID, big.NewInt(1_000_000_000))
	e.ledger.IncrAllowance(senderID, engineID, big.NewInt(5_000_000_000))
	return e
}

func (e *env) engine() *revenue.Engine {
	return revenue.New(e.store, e.ledger.AsSpender(engineID),
		revenue.WithClock(func() int64 { return e.now }))
}

func accountCtx(id string) context.Context {
	return envelope.WithInvoker(context.Background(), envelope.Invoker{
		Kind: envelope.KindAccount,
		ID:   id,
	})
}

func initParams() revenue.InitParams {
	return revenue.InitParams{
		Receiver:   receiverID,
		Asset:      assetID,
		StartEpoch: startEpoch,
		Amount:     big.NewInt(payment),
		Step:       week,
	}
}

func TestGatePassthrough(t *testing.T) {
	e := newEnv(t)
	g := gate.New(e.engine())

	require.NoError(t, g.Init(accountCtx(senderID), initParams()))
	require.NoError(t, g.Withdraw(accountCtx(receiverID)))
	assert.Equal(t, big.NewInt(payment), e.ledger.BalanceOf(receiverID))
}

func TestGateThrottlesWithdraw(t *testing.T) {
	e := newEnv(t)
	g := gate.New(e.engine(), gate.WithWithdrawLimit(1, 1))

	require.NoError(t, g.Init(accountCtx(senderID), initParams()))
	require.NoError(t, g.Withdraw(accountCtx(receiverID)))

	// The burst is spent; the next attempt is cut off before the engine runs,
	// so no domain denial is recorded.
	err := g.Withdraw(accountCtx(receiverID))
	assert.ErrorIs(t, err, gate.ErrThrottled)
}

func TestGateAdjustPolicy(t *testing.T) {
	policy, err := envelope.CompileAdjustPolicy(`invoker == sender`)
	require.NoError(t, err)

	e := newEnv(t)
	g := gate.New(e.engine(), gate.WithAdjustPolicy(policy))

	require.NoError(t, g.Init(accountCtx(senderID), initParams()))

	t.Run("stranger denied", func(t *testing.T) {
		err := g.FixAmount(accountCtx("GACC-STRANGER"), big.NewInt(400_000_000))
		assert.ErrorIs(t, err, gate.ErrPolicyDenied)
	})

	t.Run("sender allowed", func(t *testing.T) {
		require.NoError(t, g.FixAmount(accountCtx(senderID), big.NewInt(400_000_000)))

		rec, err := e.engine().Record(context.Background())
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(400_000_000), rec.Amount)
	})
}

func TestGateAdjustPolicyUninitialized(t *testing.T) {
	policy, err := envelope.CompileAdjustPolicy(`invoker == sender`)
	require.NoError(t, err)

	e := newEnv(t)
	g := gate.New(e.engine(), gate.WithAdjustPolicy(policy))

	// No record yet: the gate defers so the caller sees the engine's error,
	// not a policy denial.
	err = g.FixAmount(accountCtx(senderID), big.NewInt(400_000_000))
	assert.ErrorIs(t, err, revenue.ErrNotInitialized)
}

func TestGateNoPolicyAllowsAnyone(t *testing.T) {
	e := newEnv(t)
	g := gate.New(e.engine())

	require.NoError(t, g.Init(accountCtx(senderID), initParams()))
	require.NoError(t, g.FixAmount(accountCtx("GACC-STRANGER"), big.NewInt(20_000_000)))
}
