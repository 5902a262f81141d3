package token

import (
	"context"
	"sync"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// TransferHook runs before a transfer is applied. Returning an error fails the
// transfer without moving funds.
type TransferHook func(ctx context.Context, from, to domain.Address, amount domain.Amount) error

// Memory is an in-process stablecoin with allowance-based pull payments.
type Memory struct {
	address domain.Address
	symbol  string

	mu         sync.Mutex
	balances   map[domain.Address]domain.Amount
	allowances map[domain.Address]map[domain.Address]domain.Amount
	supply     domain.Amount
	hook       TransferHook
}

func NewMemory(address domain.Address, symbol string) *Memory {
	return &Memory{
		address:    address,
		symbol:     symbol,
		balances:   make(map[domain.Address]domain.Amount),
		allowances: make(map[domain.Address]map[domain.Address]domain.Amount),
	}
}

func (m *Memory) Address() domain.Address { return m.address }
func (m *Memory) Symbol() string          { return m.symbol }

// SetTransferHook installs fn; nil removes it.
func (m *Memory) SetTransferHook(fn TransferHook) {
	m.mu.Lock()
	m.hook = fn
	m.mu.Unlock()
}

// Mint credits amount to to.
func (m *Memory) Mint(to domain.Address, amount domain.Amount) error {
	if to.IsZero() {
		return ErrZeroRecipient
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[to] = m.balances[to].Add(amount)
	m.supply = m.supply.Add(amount)
	return nil
}

// Approve sets spender's allowance over owner's balance, replacing any prior value.
func (m *Memory) Approve(owner, spender domain.Address, amount domain.Amount) error {
	if spender.IsZero() {
		return domain.ErrInvalidAddress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allowances[owner] == nil {
		m.allowances[owner] = make(map[domain.Address]domain.Amount)
	}
	m.allowances[owner][spender] = amount
	return nil
}

// TotalSupply returns the sum of all minted amounts.
func (m *Memory) TotalSupply() domain.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supply
}

func (m *Memory) BalanceOf(_ context.Context, account domain.Address) (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

func (m *Memory) Allowance(_ context.Context, owner, spender domain.Address) (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowances[owner][spender], nil
}

func (m *Memory) Transfer(ctx context.Context, from, to domain.Address, amount domain.Amount) (bool, error) {
	if err := m.runHook(ctx, from, to, amount); err != nil {
		return false, err
	}
	if to.IsZero() {
		return false, ErrZeroRecipient
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[from].LessThan(amount) {
		return false, nil
	}
	m.move(from, to, amount)
	return true, nil
}

func (m *Memory) TransferFrom(ctx context.Context, spender, from, to domain.Address, amount domain.Amount) (bool, error) {
	if err := m.runHook(ctx, from, to, amount); err != nil {
		return false, err
	}
	if to.IsZero() {
		return false, ErrZeroRecipient
	}

	if amount.IsZero() {
		return true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	allowed := m.allowances[from][spender]
	if allowed.LessThan(amount) || m.balances[from].LessThan(amount) {
		return false, nil
	}
	m.allowances[from][spender] = allowed.Sub(amount)
	m.move(from, to, amount)
	return true, nil
}

// runHook is called without m.mu held so hooks may call back into the token.
func (m *Memory) runHook(ctx context.Context, from, to domain.Address, amount domain.Amount) error {
	m.mu.Lock()
	hook := m.hook
	m.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(ctx, from, to, amount)
}

func (m *Memory) move(from, to domain.Address, amount domain.Amount) {
	m.balances[from] = m.balances[from].Sub(amount)
	m.balances[to] = m.balances[to].Add(amount)
}
