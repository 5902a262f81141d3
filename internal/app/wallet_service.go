package app

import (
	"context"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// Stablecoin is the development payment token behind the faucet.
type Stablecoin interface {
	Address() domain.Address
	Symbol() string
	Mint(to domain.Address, amount domain.Amount) error
	Approve(owner, spender domain.Address, amount domain.Amount) error
	BalanceOf(ctx context.Context, account domain.Address) (domain.Amount, error)
	Allowance(ctx context.Context, owner, spender domain.Address) (domain.Amount, error)
}

// WalletService is a development faucet over the in-process stablecoin.
type WalletService struct {
	coin      Stablecoin
	mintLimit domain.Amount
}

func NewWalletService(coin Stablecoin, opts ...WalletServiceOption) *WalletService {
	svc := &WalletService{coin: coin}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type WalletServiceOption func(*WalletService)

// WithMintLimit caps a single faucet mint. Zero means no cap.
func WithMintLimit(limit domain.Amount) WalletServiceOption {
	return func(s *WalletService) {
		s.mintLimit = limit
	}
}

type WalletBalance struct {
	Address domain.Address `json:"address"`
	Token   domain.Address `json:"token"`
	Symbol  string         `json:"symbol"`
	Balance domain.Amount  `json:"balance"`
}

func (s *WalletService) Balance(ctx context.Context, addr domain.Address) (WalletBalance, error) {
	bal, err := s.coin.BalanceOf(ctx, addr)
	if err != nil {
		return WalletBalance{}, err
	}
	return WalletBalance{
		Address: addr,
		Token:   s.coin.Address(),
		Symbol:  s.coin.Symbol(),
		Balance: bal,
	}, nil
}

func (s *WalletService) Mint(ctx context.Context, to domain.Address, amount domain.Amount) (WalletBalance, error) {
	if to.IsZero() {
		return WalletBalance{}, domain.ErrInvalidAddress
	}
	if !amount.IsPositive() {
		return WalletBalance{}, domain.ErrInvalidAmount
	}
	if s.mintLimit.IsPositive() && s.mintLimit.LessThan(amount) {
		return WalletBalance{}, domain.ErrMintLimitExceeded
	}
	if err := s.coin.Mint(to, amount); err != nil {
		return WalletBalance{}, err
	}
	return s.Balance(ctx, to)
}

type ApproveInput struct {
	Owner   domain.Address
	Spender domain.Address
	Amount  domain.Amount
}

type Allowance struct {
	Owner   domain.Address `json:"owner"`
	Spender domain.Address `json:"spender"`
	Amount  domain.Amount  `json:"amount"`
}

// Approve sets the allowance a ledger may pull from the owner.
func (s *WalletService) Approve(ctx context.Context, in ApproveInput) (Allowance, error) {
	if in.Owner.IsZero() || in.Spender.IsZero() {
		return Allowance{}, domain.ErrInvalidAddress
	}
	if err := s.coin.Approve(in.Owner, in.Spender, in.Amount); err != nil {
		return Allowance{}, err
	}
	amt, err := s.coin.Allowance(ctx, in.Owner, in.Spender)
	if err != nil {
		return Allowance{}, err
	}
	return Allowance{Owner: in.Owner, Spender: in.Spender, Amount: amt}, nil
}
