// Package gate wraps the engine with host-side envelope policy: an optional
// CEL rule over amount adjustment and a rate limit on withdraw (anyone may
// trigger a withdrawal, so hosts throttle it). The gate never alters a core
// decision: its denials are distinct errors raised before the engine runs.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"golang.org/x/time/rate"

	"github.com/Fairwater-Labs/drip/pkg/envelope"
	"github.com/Fairwater-Labs/drip/pkg/revenue"
)

var (
	// ErrThrottled: the withdraw rate limit was exhausted.
	ErrThrottled = errors.New("withdraw throttled")

	// ErrPolicyDenied: the adjust policy rejected the caller.
	ErrPolicyDenied = errors.New("adjustment denied by policy")
)

// Gate fronts an engine for one host.
type Gate struct {
	engine  *revenue.Engine
	policy  *envelope.AdjustPolicy
	limiter *rate.Limiter
	log     *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithAdjustPolicy attaches a CEL policy evaluated before FixAmount.
func WithAdjustPolicy(p *envelope.AdjustPolicy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithWithdrawLimit throttles Withdraw to rps requests per second with the
// given burst.
func WithWithdrawLimit(rps float64, burst int) Option {
	return func(g *Gate) { g.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithLogger(log *slog.Logger) Option {
	return func(g *Gate) { g.log = log }
}

func New(engine *revenue.Engine, opts ...Option) *Gate {
	g := &Gate{
		engine: engine,
		log:    slog.Default().With("component", "gate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init delegates to the engine unchanged.
func (g *Gate) Init(ctx context.Context, p revenue.InitParams) error {
	return g.engine.Init(ctx, p)
}

// Withdraw applies the rate limit, then delegates.
func (g *Gate) Withdraw(ctx context.Context) error {
	if g.limiter != nil && !g.limiter.Allow() {
		g.log.WarnContext(ctx, "withdraw throttled")
		return ErrThrottled
	}
	return g.engine.Withdraw(ctx)
}

// FixAmount evaluates the adjust policy, then delegates. Policy evaluation
// errors deny (fail closed). On an uninitialized record the gate defers to
// the engine so the core's error taxonomy is preserved.
func (g *Gate) FixAmount(ctx context.Context, amount *big.Int) error {
	if g.policy != nil {
		rec, err := g.engine.Record(ctx)
		if err != nil && !errors.Is(err, revenue.ErrNotInitialized) {
			return err
		}
		if rec != nil {
			in := envelope.AdjustInput{
				Sender:    rec.Sender,
				OldAmount: rec.Amount.String(),
			}
			if amount != nil {
				in.NewAmount = amount.String()
			}
			if inv, ok := envelope.InvokerFrom(ctx); ok {
				in.Invoker = inv.ID
			}

			allowed, err := g.policy.Allow(in)
			if err != nil {
				g.log.WarnContext(ctx, "adjust policy evaluation failed", "error", err)
				return ErrPolicyDenied
			}
			if !allowed {
				return ErrPolicyDenied
			}
		}
	}
	return g.engine.FixAmount(ctx, amount)
}
