package ledger

import (
	"context"
	"fmt"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// BuyTicket sells the next ticket to caller for the configured price, pulled
// from caller's payment token allowance. nativeValue is any base-currency
// value attached to the call and must be zero.
func (l *Ledger) BuyTicket(ctx context.Context, caller domain.Address, nativeValue domain.Amount) (domain.TicketID, error) {
	callCtx, leave, err := l.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer leave()

	now := l.clock.Now()
	if !nativeValue.IsZero() {
		return 0, domain.ErrNativeValueRejected
	}
	if l.canceled {
		return 0, domain.ErrEventCanceled
	}
	if l.elapsedAt(now) {
		return 0, domain.ErrEventElapsed
	}
	if l.ticketsSold >= l.desc.TotalSupply {
		return 0, domain.ErrSoldOut
	}
	if l.purchased[caller] >= l.ticketLimit {
		return 0, domain.ErrTicketLimitReached
	}

	price := l.desc.TicketPrice
	allowance, err := l.token.Allowance(callCtx, caller, l.address)
	if err != nil {
		return 0, fmt.Errorf("%w: allowance: %v", domain.ErrPaymentFailed, err)
	}
	if allowance.LessThan(price) {
		return 0, domain.ErrInsufficientAllowance
	}
	balance, err := l.token.BalanceOf(callCtx, caller)
	if err != nil {
		return 0, fmt.Errorf("%w: balance: %v", domain.ErrPaymentFailed, err)
	}
	if balance.LessThan(price) {
		return 0, domain.ErrInsufficientBalance
	}

	ok, err := l.token.TransferFrom(callCtx, l.address, caller, l.address, price)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}
	if !ok {
		return 0, domain.ErrPaymentFailed
	}

	l.mu.Lock()
	id := domain.TicketID(l.nextTicketID)
	l.nextTicketID++
	l.owners = append(l.owners, caller)
	l.used = append(l.used, false)
	l.ticketsSold++
	l.purchased[caller]++
	l.mu.Unlock()

	l.logger.Info("ticket purchased", "buyer", caller.String(), "ticket_id", uint64(id), "sold", l.ticketsSold)
	l.emit(domain.RecordTicketPurchased, now, domain.TicketPurchased{
		From:     domain.ZeroAddress,
		To:       caller,
		TicketID: id,
		Price:    price,
	})
	return id, nil
}
