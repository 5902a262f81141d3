// Package token defines the payment token consumed by event ledgers and an
// in-process implementation used for development and tests.
package token

import (
	"context"
	"errors"
	"sync"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// Token is a fungible token ledger. Transfer and TransferFrom report false
// when the token refuses the transfer; a non-nil error means the call itself
// failed.
type Token interface {
	Address() domain.Address
	BalanceOf(ctx context.Context, account domain.Address) (domain.Amount, error)
	Allowance(ctx context.Context, owner, spender domain.Address) (domain.Amount, error)
	// Transfer moves amount from the sender's own account.
	Transfer(ctx context.Context, from, to domain.Address, amount domain.Amount) (bool, error)
	// TransferFrom moves amount out of from, spending spender's allowance.
	TransferFrom(ctx context.Context, spender, from, to domain.Address, amount domain.Amount) (bool, error)
}

var ErrZeroRecipient = errors.New("token: transfer to the zero address")

// Directory resolves payment-token identifiers to implementations.
type Directory struct {
	mu     sync.RWMutex
	tokens map[domain.Address]Token
}

func NewDirectory(tokens ...Token) *Directory {
	d := &Directory{tokens: make(map[domain.Address]Token, len(tokens))}
	for _, t := range tokens {
		d.tokens[t.Address()] = t
	}
	return d
}

// Register adds or replaces a token.
func (d *Directory) Register(t Token) {
	d.mu.Lock()
	d.tokens[t.Address()] = t
	d.mu.Unlock()
}

// Lookup returns the token registered under addr.
func (d *Directory) Lookup(addr domain.Address) (Token, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tokens[addr]
	return t, ok
}
