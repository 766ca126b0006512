//go:build property
// +build property

// Property-based tests for the schedule arithmetic: cursor monotonicity,
// exactly-once-per-period, and catch-up conservation.
package revenue_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Fairwater-Labs/drip/pkg/revenue"
	"github.com/Fairwater-Labs/drip/pkg/store"
	"github.com/Fairwater-Labs/drip/pkg/token"
)

// newPropEnv builds an engine with ample funding for n payments of amount.
func newPropEnv(start, step, amount int64, n int64) (*revenue.Engine, *token.Ledger, *testClock) {
	ledger := token.NewLedger()
	total := new(big.Int).Mul(big.NewInt(amount), big.NewInt(n+1))
	ledger.Mint(senderID, total)
	ledger.IncrAllowance(senderID, engineID, total)

	clock := &testClock{now: start - 1}
	engine := revenue.New(store.NewMemoryStore(), ledger.AsSpender(engineID), revenue.WithClock(clock.fn()))
	return engine, ledger, clock
}

// TestCursorMonotonicity: across any run of successful withdrawals the
// cursor increases by exactly one step each time.
func TestCursorMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("latest advances by exactly step per success", prop.ForAll(
		func(step int64, amount int64, periods int64) bool {
			const start = int64(1_000_000)
			engine, _, clock := newPropEnv(start, step, amount, periods)

			err := engine.Init(accountCtx(senderID), revenue.InitParams{
				Receiver:   receiverID,
				Asset:      assetID,
				StartEpoch: start,
				Amount:     big.NewInt(amount),
				Step:       step,
			})
			if err != nil {
				return false
			}

			prev := start - step
			for i := int64(0); i < periods; i++ {
				clock.now = start + i*step
				if err := engine.Withdraw(accountCtx(receiverID)); err != nil {
					return false
				}
				rec, err := engine.Record(accountCtx(receiverID))
				if err != nil {
					return false
				}
				if rec.Latest != prev+step {
					return false
				}
				prev = rec.Latest
			}
			return true
		},
		gen.Int64Range(1, 1_000_000),
		gen.Int64Range(1, 1_000_000_000),
		gen.Int64Range(1, 40),
	))

	properties.TestingRun(t)
}

// TestExactlyOncePerPeriod: within one period a second attempt always fails
// and moves no funds.
func TestExactlyOncePerPeriod(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("second withdrawal within a period is rejected", prop.ForAll(
		func(step int64, amount int64, offset int64) bool {
			const start = int64(1_000_000)
			engine, ledger, clock := newPropEnv(start, step, amount, 2)

			err := engine.Init(accountCtx(senderID), revenue.InitParams{
				Receiver:   receiverID,
				Asset:      assetID,
				StartEpoch: start,
				Amount:     big.NewInt(amount),
				Step:       step,
			})
			if err != nil {
				return false
			}

			clock.now = start + offset%step
			if err := engine.Withdraw(accountCtx(receiverID)); err != nil {
				return false
			}
			balance := ledger.BalanceOf(receiverID)

			if err := engine.Withdraw(accountCtx(receiverID)); err != revenue.ErrReceiverAlreadyWithdrawn {
				return false
			}
			return ledger.BalanceOf(receiverID).Cmp(balance) == 0
		},
		gen.Int64Range(2, 1_000_000),
		gen.Int64Range(1, 1_000_000_000),
		gen.Int64Range(0, 1_000_000),
	))

	properties.TestingRun(t)
}

// TestCatchUpConservation: after n missed periods, exactly n withdrawals
// succeed and the receiver ends up with n*amount.
func TestCatchUpConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("missed periods are claimable exactly once each", prop.ForAll(
		func(step int64, amount int64, periods int64) bool {
			const start = int64(1_000_000)
			engine, ledger, clock := newPropEnv(start, step, amount, periods)

			err := engine.Init(accountCtx(senderID), revenue.InitParams{
				Receiver:   receiverID,
				Asset:      assetID,
				StartEpoch: start,
				Amount:     big.NewInt(amount),
				Step:       step,
			})
			if err != nil {
				return false
			}

			// Jump past periods-1 further slots: slots at start, start+step,
			// ..., start+(periods-1)*step are all claimable.
			clock.now = start + (periods-1)*step

			for i := int64(0); i < periods; i++ {
				if err := engine.Withdraw(accountCtx(receiverID)); err != nil {
					return false
				}
			}
			if err := engine.Withdraw(accountCtx(receiverID)); err != revenue.ErrReceiverAlreadyWithdrawn {
				return false
			}

			want := new(big.Int).Mul(big.NewInt(amount), big.NewInt(periods))
			return ledger.BalanceOf(receiverID).Cmp(want) == 0
		},
		gen.Int64Range(1, 1_000_000),
		gen.Int64Range(1, 1_000_000_000),
		gen.Int64Range(1, 40),
	))

	properties.TestingRun(t)
}
