package revenue

import "errors"

// The closed error taxonomy of the engine. Every operation failure is one of
// these (possibly wrapped); nothing is recovered or retried internally.
var (
	// ErrAlreadyInitialized: init called on an already-configured record.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrNotInitialized: withdraw or fix_amount called before init.
	ErrNotInitialized = errors.New("not initialized")

	// ErrInvalidInvoker: the caller is not an individually-attributable account.
	ErrInvalidInvoker = errors.New("invalid invoker")

	// ErrReceiverAlreadyWithdrawn: a full step has not elapsed since the
	// schedule cursor.
	ErrReceiverAlreadyWithdrawn = errors.New("receiver already withdrawn this period")

	// ErrPrematureFirstWithdraw: withdrawal attempted before start_epoch.
	ErrPrematureFirstWithdraw = errors.New("premature first withdraw")

	// ErrInvalidArguments: zero step, zero effective amount*step at init,
	// zero new amount, or a no-op amount update.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrNotUpdated: post-write verification of the amount mismatched.
	ErrNotUpdated = errors.New("record not updated")
)

// reasonFor maps an operation failure to a short reason code for receipts
// and metrics.
func reasonFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrInvalidInvoker):
		return "invalid_invoker"
	case errors.Is(err, ErrReceiverAlreadyWithdrawn):
		return "receiver_already_withdrawn"
	case errors.Is(err, ErrPrematureFirstWithdraw):
		return "premature_first_withdraw"
	case errors.Is(err, ErrInvalidArguments):
		return "invalid_arguments"
	case errors.Is(err, ErrNotUpdated):
		return "not_updated"
	default:
		return "internal_error"
	}
}
