package ledger

import (
	"context"
	"fmt"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// CancelEvent irreversibly cancels a future event, enabling refunds.
func (l *Ledger) CancelEvent(ctx context.Context, caller domain.Address) error {
	_, leave, err := l.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	now := l.clock.Now()
	if caller != l.owner {
		return domain.ErrNotOwner
	}
	if l.canceled {
		return domain.ErrAlreadyCanceled
	}
	if l.elapsedAt(now) {
		return domain.ErrEventElapsed
	}

	l.mu.Lock()
	l.canceled = true
	l.mu.Unlock()

	l.logger.Info("event canceled", "at", now.Unix())
	l.emit(domain.RecordEventCanceled, now, domain.EventCanceled{CanceledAt: now.Unix()})
	return nil
}

// ClaimRefund pays caller back for every ticket they ever bought directly on
// a canceled event. Refunds follow the purchase counter, not current
// holdings: tickets transferred away are still refunded to the buyer, and a
// transferee who never paid gets nothing.
func (l *Ledger) ClaimRefund(ctx context.Context, caller domain.Address) (domain.Amount, error) {
	callCtx, leave, err := l.enter(ctx)
	if err != nil {
		return domain.Amount{}, err
	}
	defer leave()

	if !l.canceled {
		return domain.Amount{}, domain.ErrNotCanceled
	}
	if l.refunded[caller] {
		return domain.Amount{}, domain.ErrAlreadyRefunded
	}
	count := l.purchased[caller]
	if count == 0 {
		return domain.Amount{}, domain.ErrNothingToRefund
	}

	amount := l.desc.TicketPrice.MulInt(count)
	balance, err := l.token.BalanceOf(callCtx, l.address)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%w: balance: %v", domain.ErrPaymentFailed, err)
	}
	if balance.LessThan(amount) {
		return domain.Amount{}, domain.ErrInsufficientFunds
	}

	if err := l.push(callCtx, caller, amount); err != nil {
		return domain.Amount{}, err
	}
	// Written only once the transfer succeeded so a failed push leaves the
	// buyer free to retry.
	l.mu.Lock()
	l.refunded[caller] = true
	l.mu.Unlock()

	now := l.clock.Now()
	l.logger.Info("refund claimed", "buyer", caller.String(), "tickets", count, "amount", amount.String())
	l.emit(domain.RecordRefundClaimed, now, domain.RefundClaimed{
		Buyer:   caller,
		Tickets: count,
		Amount:  amount,
	})
	return amount, nil
}

// WithdrawFunds sends the ledger's whole token balance to the owner once the
// event has taken place without being canceled.
func (l *Ledger) WithdrawFunds(ctx context.Context, caller domain.Address) (domain.Amount, error) {
	callCtx, leave, err := l.enter(ctx)
	if err != nil {
		return domain.Amount{}, err
	}
	defer leave()

	now := l.clock.Now()
	if caller != l.owner {
		return domain.Amount{}, domain.ErrNotOwner
	}
	if l.canceled {
		return domain.Amount{}, domain.ErrEventCanceled
	}
	if !l.elapsedAt(now) {
		return domain.Amount{}, domain.ErrEventNotElapsed
	}

	balance, err := l.token.BalanceOf(callCtx, l.address)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%w: balance: %v", domain.ErrPaymentFailed, err)
	}
	if !balance.IsPositive() {
		return domain.Amount{}, domain.ErrNoFunds
	}

	if err := l.push(callCtx, l.owner, balance); err != nil {
		return domain.Amount{}, err
	}

	l.logger.Info("funds withdrawn", "owner", l.owner.String(), "amount", balance.String())
	l.emit(domain.RecordFundsWithdrawn, now, domain.FundsWithdrawn{
		Owner:  l.owner,
		Amount: balance,
	})
	return balance, nil
}

func (l *Ledger) push(ctx context.Context, to domain.Address, amount domain.Amount) error {
	ok, err := l.token.Transfer(ctx, l.address, to, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}
	if !ok {
		return domain.ErrPaymentFailed
	}
	return nil
}
