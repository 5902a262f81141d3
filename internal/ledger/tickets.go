package ledger

import (
	"context"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// MarkTicketAsUsed records entry at the gate. A second call for the same
// ticket fails so double entry is visible.
func (l *Ledger) MarkTicketAsUsed(ctx context.Context, caller domain.Address, id domain.TicketID) error {
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
	if !l.minted(id) {
		return domain.ErrTicketNotMinted
	}
	if l.used[id] {
		return domain.ErrTicketUsed
	}

	l.mu.Lock()
	l.used[id] = true
	l.mu.Unlock()

	now := l.clock.Now()
	l.logger.Info("ticket used", "ticket_id", uint64(id))
	l.emit(domain.RecordTicketUsed, now, domain.TicketUsed{TicketID: id})
	return nil
}

// TransferTicket hands an unused ticket to another identity. Purchase counts
// are untouched on both sides. Transferring to oneself is allowed and still
// recorded.
func (l *Ledger) TransferTicket(ctx context.Context, caller domain.Address, id domain.TicketID, to domain.Address) error {
	_, leave, err := l.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	if l.canceled {
		return domain.ErrEventCanceled
	}
	if !l.minted(id) {
		return domain.ErrTicketNotMinted
	}
	if l.owners[id] != caller {
		return domain.ErrNotTicketOwner
	}
	if l.used[id] {
		return domain.ErrTicketUsed
	}
	if to.IsZero() {
		return domain.ErrInvalidRecipient
	}

	l.mu.Lock()
	l.owners[id] = to
	l.mu.Unlock()

	now := l.clock.Now()
	l.logger.Info("ticket transferred", "ticket_id", uint64(id), "from", caller.String(), "to", to.String())
	l.emit(domain.RecordTicketTransferred, now, domain.TicketTransferred{
		From:     caller,
		To:       to,
		TicketID: id,
	})
	return nil
}
