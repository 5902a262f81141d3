package ledger

import (
	"context"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// SetTicketLimit changes the per-buyer purchase cap. Buyers already above a
// lowered limit keep their tickets and are only blocked from buying more.
func (l *Ledger) SetTicketLimit(ctx context.Context, caller domain.Address, limit uint64) error {
	_, leave, err := l.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	if caller != l.owner {
		return domain.ErrNotOwner
	}
	if l.canceled {
		return domain.ErrEventCanceled
	}
	if limit == 0 {
		return domain.ErrZeroNewLimit
	}
	if limit > l.desc.TotalSupply {
		return domain.ErrNewLimitExceedsSupply
	}

	prev := l.ticketLimit
	l.mu.Lock()
	l.ticketLimit = limit
	l.mu.Unlock()

	l.logger.Info("ticket limit changed", "previous", prev, "limit", limit)
	l.emit(domain.RecordTicketLimitChanged, l.clock.Now(), domain.TicketLimitChanged{
		Previous: prev,
		Limit:    limit,
	})
	return nil
}

// SetBaseURI configures the metadata prefix used by TokenURI.
func (l *Ledger) SetBaseURI(ctx context.Context, caller domain.Address, uri string) error {
	_, leave, err := l.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	if caller != l.owner {
		return domain.ErrNotOwner
	}
	if uri == "" {
		return domain.ErrEmptyBaseURI
	}

	l.mu.Lock()
	l.baseURI = uri
	l.mu.Unlock()
	l.emit(domain.RecordBaseURIChanged, l.clock.Now(), domain.BaseURIChanged{URI: uri})
	return nil
}
