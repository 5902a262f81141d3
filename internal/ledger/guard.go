package ledger

import (
	"context"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

type frameKey struct{}

// frame marks a context as flowing out of an in-progress ledger operation.
type frame struct {
	ledger *Ledger
	parent *frame
}

// enter claims the ledger for one mutating operation and returns the context
// to hand to the payment token. A call whose context already carries this
// ledger's frame is a reentrant call from inside a token callback and is
// rejected. Waiting for the ledger honours ctx cancellation.
func (l *Ledger) enter(ctx context.Context) (context.Context, func(), error) {
	parent, _ := ctx.Value(frameKey{}).(*frame)
	for f := parent; f != nil; f = f.parent {
		if f.ledger == l {
			return nil, nil, domain.ErrReentrantCall
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	select {
	case l.op <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	return context.WithValue(ctx, frameKey{}, &frame{ledger: l, parent: parent}), l.leave, nil
}

func (l *Ledger) leave() { <-l.op }
