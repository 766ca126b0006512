package token

import (
	"context"
	"fmt"
	"math/big"
	"sync"
)

// Ledger is an in-memory fungible-asset ledger with balances and spender
// allowances. It implements the transfer-from semantics the engine relies
// on: a spender may move funds out of an owner's balance only up to the
// allowance the owner granted, and every transfer debits both the balance
// and the remaining allowance.
//
// Invariant: the sum of balances is constant across transfers.
type Ledger struct {
	mu         sync.Mutex
	balances   map[string]*big.Int
	allowances map[string]map[string]*big.Int // owner -> spender -> remaining
}

func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]map[string]*big.Int),
	}
}

// Mint credits an account out of thin air. Test and bootstrap use only.
func (l *Ledger) Mint(account string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = new(big.Int).Add(l.balanceLocked(account), amount)
}

// Approve sets the spender's allowance over the owner's balance.
func (l *Ledger) Approve(owner, spender string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]*big.Int)
	}
	l.allowances[owner][spender] = new(big.Int).Set(amount)
}

// IncrAllowance raises the spender's allowance by delta.
func (l *Ledger) IncrAllowance(owner, spender string, delta *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]*big.Int)
	}
	l.allowances[owner][spender] = new(big.Int).Add(l.allowanceLocked(owner, spender), delta)
}

// Allowance returns the spender's remaining allowance over the owner.
func (l *Ledger) Allowance(owner, spender string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.allowanceLocked(owner, spender))
}

// BalanceOf returns the account's balance.
func (l *Ledger) BalanceOf(account string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balanceLocked(account))
}

// AsSpender binds the ledger to a spender identity, producing the Service the
// engine is handed. The engine never learns the spender mechanics; it only
// sees transfer success or failure.
func (l *Ledger) AsSpender(spender string) Service {
	return &spenderClient{ledger: l, spender: spender}
}

func (l *Ledger) balanceLocked(account string) *big.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return big.NewInt(0)
}

func (l *Ledger) allowanceLocked(owner, spender string) *big.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return big.NewInt(0)
}

func (l *Ledger) transferFrom(spender, from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowanceLocked(from, spender)
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: spender %s has %s of %s's balance, need %s",
			ErrInsufficientAllowance, spender, allowance, from, amount)
	}

	balance := l.balanceLocked(from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, need %s",
			ErrInsufficientBalance, from, balance, amount)
	}

	l.allowances[from][spender] = new(big.Int).Sub(allowance, amount)
	l.balances[from] = new(big.Int).Sub(balance, amount)
	l.balances[to] = new(big.Int).Add(l.balanceLocked(to), amount)
	return nil
}

type spenderClient struct {
	ledger  *Ledger
	spender string
}

func (c *spenderClient) TransferFrom(ctx context.Context, from, to string, amount *big.Int) error {
	return c.ledger.transferFrom(c.spender, from, to, amount)
}
