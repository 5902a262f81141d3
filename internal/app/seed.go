package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// SeedInput describes the events and wallet balances created at startup.
type SeedInput struct {
	Events   []CreateEventInput
	Balances []SeedBalance
}

type SeedBalance struct {
	Address domain.Address
	Amount  domain.Amount
	// Approve, when non-zero, is an allowance granted to every seeded event.
	Approve domain.Amount
}

// Seed creates the configured events, then funds wallets. It stops at the
// first failure.
func Seed(ctx context.Context, events *EventService, wallets *WalletService, in SeedInput, logger *slog.Logger) ([]domain.EventSummary, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	created := make([]domain.EventSummary, 0, len(in.Events))
	for i, ev := range in.Events {
		summary, err := events.CreateEvent(ctx, ev)
		if err != nil {
			return created, fmt.Errorf("seed event %d (%s): %w", i, ev.EventName, err)
		}
		logger.Info("seeded event", "address", summary.Address.String(), "name", ev.EventName)
		created = append(created, summary)
	}

	for _, b := range in.Balances {
		if b.Amount.IsPositive() {
			if err := wallets.coin.Mint(b.Address, b.Amount); err != nil {
				return created, fmt.Errorf("seed balance %s: %w", b.Address, err)
			}
		}
		if !b.Approve.IsPositive() {
			continue
		}
		for _, ev := range created {
			if _, err := wallets.Approve(ctx, ApproveInput{Owner: b.Address, Spender: ev.Address, Amount: b.Approve}); err != nil {
				return created, fmt.Errorf("seed allowance %s: %w", b.Address, err)
			}
		}
	}
	return created, nil
}
