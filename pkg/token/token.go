// Package token models the external token-transfer service the engine
// delegates to. The engine acts as a previously-approved spender of the
// sender's balance; balance and allowance bookkeeping belong entirely to
// this service, and its failures surface to the engine as opaque transfer
// failures.
package token

import (
	"context"
	"errors"
	"math/big"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid transfer amount")
)

// Service is the deduct-then-credit primitive: move amount of the asset from
// one account to another under the caller's pre-existing spending
// authorization.
type Service interface {
	TransferFrom(ctx context.Context, from, to string, amount *big.Int) error
}
