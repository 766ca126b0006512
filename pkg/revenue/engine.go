// Package revenue implements the recurring-payment authorization engine: a
// stateful core that, once initialized by a payer, permits the designated
// receiver to pull one fixed-size payment per fixed interval from a
// pre-authorized funding source. The engine never holds funds; it decides
// whether a transfer is currently permitted and delegates the movement to an
// external token-transfer service.
//
// Every operation runs as one serialized invocation: gating checks first,
// the delegated transfer next, the schedule-cursor write last, committed as
// a single atomic batch. A transfer failure therefore never leaves a
// wrongly-advanced cursor behind.
package revenue

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Fairwater-Labs/drip/pkg/envelope"
	"github.com/Fairwater-Labs/drip/pkg/observability"
	"github.com/Fairwater-Labs/drip/pkg/receipts"
	"github.com/Fairwater-Labs/drip/pkg/store"
	"github.com/Fairwater-Labs/drip/pkg/token"
)

// Clock exposes current ledger time as unix seconds.
type Clock func() int64

// Engine owns the authorization state machine over one funding relationship.
type Engine struct {
	store   store.Store
	tokens  token.Service
	clock   Clock
	log     *slog.Logger
	rec     receipts.Recorder
	metrics *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the ledger clock. Tests use this.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRecorder attaches a receipt recorder for withdrawal outcomes.
func WithRecorder(r receipts.Recorder) Option {
	return func(e *Engine) { e.rec = r }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine over the given store and token-transfer service.
func New(s store.Store, t token.Service, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		tokens: t,
		clock:  func() int64 { return time.Now().Unix() },
		log:    slog.Default().With("component", "revenue"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitParams are the one-time setup arguments of the funding relationship.
// The sender is not a parameter: it is pinned to the caller of Init.
type InitParams struct {
	Receiver   string
	Asset      string
	StartEpoch int64
	Amount     *big.Int
	Step       int64
}

// Init configures the funding relationship. Callable exactly once; fails
// with ErrAlreadyInitialized thereafter. No transfer occurs here.
func (e *Engine) Init(ctx context.Context, p InitParams) error {
	// All fields are written together, so checking one suffices.
	has, err := e.store.Has(ctx, store.FieldAsset)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if has {
		return ErrAlreadyInitialized
	}

	// A withdrawal every zero seconds is meaningless, and the catch-up
	// arithmetic divides the timeline into steps.
	if p.Step <= 0 {
		return ErrInvalidArguments
	}

	// amount*step == 0 means a zero-sized schedule; reject it even when the
	// step alone looked valid.
	if p.Amount == nil || new(big.Int).Mul(p.Amount, big.NewInt(p.Step)).Sign() == 0 {
		return ErrInvalidArguments
	}

	inv, ok := envelope.InvokerFrom(ctx)
	if !ok || !inv.IsAccount() {
		return ErrInvalidInvoker
	}

	staged := store.NewStaged(e.store)
	view := recordView{s: staged}

	if err := staged.Set(ctx, store.FieldSender, inv.ID); err != nil {
		return err
	}
	if err := staged.Set(ctx, store.FieldReceiver, p.Receiver); err != nil {
		return err
	}
	if err := staged.Set(ctx, store.FieldAsset, p.Asset); err != nil {
		return err
	}
	if err := view.putInt64(ctx, store.FieldStartEpoch, p.StartEpoch); err != nil {
		return err
	}
	if err := view.putAmount(ctx, p.Amount); err != nil {
		return err
	}
	if err := view.putInt64(ctx, store.FieldStep, p.Step); err != nil {
		return err
	}
	// Seed the cursor one step before the first eligible instant so the very
	// first withdrawal satisfies the same "at least step since latest" test
	// as every later one.
	if err := view.putInt64(ctx, store.FieldLatest, p.StartEpoch-p.Step); err != nil {
		return err
	}

	if err := staged.Commit(ctx); err != nil {
		return fmt.Errorf("failed to persist record: %w", err)
	}

	e.log.InfoContext(ctx, "funding relationship initialized",
		"sender", inv.ID,
		"receiver", p.Receiver,
		"asset", p.Asset,
		"start_epoch", p.StartEpoch,
		"step", p.Step,
	)
	return nil
}

// withdrawAttempt carries what the outer Withdraw needs for receipts and
// metrics regardless of where the inner attempt stopped.
type withdrawAttempt struct {
	rec *Record
}

// Withdraw performs one time-gated withdrawal: if a full step has elapsed
// since the schedule cursor (and the start epoch has passed), exactly one
// payment moves from sender to receiver and the cursor advances by exactly
// one step. Anyone may call it; the destination is pinned to the stored
// receiver no matter who asks.
func (e *Engine) Withdraw(ctx context.Context) error {
	at := &withdrawAttempt{}
	err := e.withdraw(ctx, at)

	reason := reasonFor(err)
	e.metrics.RecordWithdrawal(ctx, err == nil, reason)
	e.recordWithdrawReceipt(ctx, at.rec, reason)

	return err
}

func (e *Engine) withdraw(ctx context.Context, at *withdrawAttempt) error {
	has, err := e.store.Has(ctx, store.FieldAsset)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if !has {
		return ErrNotInitialized
	}

	inv, ok := envelope.InvokerFrom(ctx)
	if !ok || !inv.IsAccount() {
		return ErrInvalidInvoker
	}

	view := recordView{s: e.store}
	rec, err := view.load(ctx)
	if err != nil {
		return err
	}
	at.rec = rec

	now := e.clock()

	if rec.StartEpoch > now {
		return ErrPrematureFirstWithdraw
	}

	// The exactly-once-per-period gate: eligible only once at least one full
	// step has elapsed since the cursor.
	if rec.Latest+rec.Step > now {
		return ErrReceiverAlreadyWithdrawn
	}

	// All gates passed. The transfer runs before any state mutation, so a
	// transfer failure leaves the cursor untouched.
	start := time.Now()
	if err := e.tokens.TransferFrom(ctx, rec.Sender, rec.Receiver, rec.Amount); err != nil {
		e.log.WarnContext(ctx, "delegated transfer failed",
			"sender", rec.Sender,
			"receiver", rec.Receiver,
			"error", err,
		)
		return fmt.Errorf("transfer: %w", err)
	}
	e.metrics.RecordTransfer(ctx, time.Since(start).Seconds())

	// Advance from the old cursor, not wall-clock time: a receiver who
	// missed periods catches up one step per call.
	staged := store.NewStaged(e.store)
	if err := (recordView{s: staged}).putInt64(ctx, store.FieldLatest, rec.Latest+rec.Step); err != nil {
		return err
	}
	if err := staged.Commit(ctx); err != nil {
		return fmt.Errorf("failed to advance schedule cursor: %w", err)
	}

	e.log.InfoContext(ctx, "withdrawal completed",
		"receiver", rec.Receiver,
		"amount", rec.Amount.String(),
		"cursor", rec.Latest+rec.Step,
	)
	return nil
}

// FixAmount updates the per-withdrawal amount. Scheduling state is never
// touched: the new amount takes effect on the next eligible withdrawal.
func (e *Engine) FixAmount(ctx context.Context, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return ErrInvalidArguments
	}

	has, err := e.store.Has(ctx, store.FieldAsset)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if !has {
		return ErrNotInitialized
	}

	view := recordView{s: e.store}
	old, err := view.getAmount(ctx)
	if err != nil {
		return err
	}
	// A no-op update is a caller error, not a silent success.
	if old.Cmp(amount) == 0 {
		return ErrInvalidArguments
	}

	staged := store.NewStaged(e.store)
	if err := (recordView{s: staged}).putAmount(ctx, amount); err != nil {
		return err
	}
	if err := staged.Commit(ctx); err != nil {
		return fmt.Errorf("failed to persist amount: %w", err)
	}

	// Re-read from the base store to catch a substrate that drops writes.
	updated, err := view.getAmount(ctx)
	if err != nil {
		return err
	}
	if updated.Cmp(amount) != 0 {
		return ErrNotUpdated
	}

	e.log.InfoContext(ctx, "amount adjusted",
		"old", old.String(),
		"new", amount.String(),
	)
	return nil
}

// Record returns the current typed record. Host-side introspection only; it
// performs no mutation.
func (e *Engine) Record(ctx context.Context) (*Record, error) {
	has, err := e.store.Has(ctx, store.FieldAsset)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if !has {
		return nil, ErrNotInitialized
	}
	return recordView{s: e.store}.load(ctx)
}

func (e *Engine) recordWithdrawReceipt(ctx context.Context, rec *Record, reason string) {
	if e.rec == nil {
		return
	}

	r := receipts.Receipt{
		Op:      "withdraw",
		Outcome: receipts.OutcomeAllowed,
		At:      e.clock(),
	}
	if reason != "" {
		r.Outcome = receipts.OutcomeDenied
		r.Reason = reason
	}
	if rec != nil {
		r.Asset = rec.Asset
		r.From = rec.Sender
		r.To = rec.Receiver
		r.Amount = rec.Amount.String()
	}

	// Receipts are observability: a recording failure must not perturb the
	// authorization decision.
	if err := e.rec.Record(ctx, r); err != nil {
		e.log.ErrorContext(ctx, "failed to record receipt", "error", err)
	}
}
