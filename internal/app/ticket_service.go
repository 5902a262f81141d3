package app

import (
	"context"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/ledger"
)

// LedgerLookup resolves an event address to its ledger.
type LedgerLookup interface {
	Ledger(addr domain.Address) (*ledger.Ledger, error)
}

// RecordReader returns the records emitted by one ledger.
type RecordReader interface {
	Records(ledger domain.Address) []domain.Record
}

// TicketService exposes ledger operations addressed by event.
type TicketService struct {
	ledgers LedgerLookup
	records RecordReader
}

func NewTicketService(ledgers LedgerLookup, records RecordReader) *TicketService {
	return &TicketService{ledgers: ledgers, records: records}
}

type BuyTicketInput struct {
	Event  domain.Address
	Caller domain.Address
	// Value is any native currency attached to the purchase; it must be zero.
	Value domain.Amount
}

func (s *TicketService) BuyTicket(ctx context.Context, in BuyTicketInput) (domain.Ticket, error) {
	l, err := s.ledgers.Ledger(in.Event)
	if err != nil {
		return domain.Ticket{}, err
	}
	id, err := l.BuyTicket(ctx, in.Caller, in.Value)
	if err != nil {
		return domain.Ticket{}, err
	}
	return l.Ticket(id)
}

func (s *TicketService) CancelEvent(ctx context.Context, event, caller domain.Address) error {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return err
	}
	return l.CancelEvent(ctx, caller)
}

func (s *TicketService) ClaimRefund(ctx context.Context, event, caller domain.Address) (domain.Amount, error) {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return domain.Amount{}, err
	}
	return l.ClaimRefund(ctx, caller)
}

func (s *TicketService) WithdrawFunds(ctx context.Context, event, caller domain.Address) (domain.Amount, error) {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return domain.Amount{}, err
	}
	return l.WithdrawFunds(ctx, caller)
}

func (s *TicketService) MarkTicketAsUsed(ctx context.Context, event, caller domain.Address, id domain.TicketID) (domain.Ticket, error) {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := l.MarkTicketAsUsed(ctx, caller, id); err != nil {
		return domain.Ticket{}, err
	}
	return l.Ticket(id)
}

type TransferTicketInput struct {
	Event    domain.Address
	Caller   domain.Address
	TicketID domain.TicketID
	To       domain.Address
}

func (s *TicketService) TransferTicket(ctx context.Context, in TransferTicketInput) (domain.Ticket, error) {
	l, err := s.ledgers.Ledger(in.Event)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := l.TransferTicket(ctx, in.Caller, in.TicketID, in.To); err != nil {
		return domain.Ticket{}, err
	}
	return l.Ticket(in.TicketID)
}

func (s *TicketService) SetTicketLimit(ctx context.Context, event, caller domain.Address, limit uint64) error {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return err
	}
	return l.SetTicketLimit(ctx, caller, limit)
}

func (s *TicketService) SetBaseURI(ctx context.Context, event, caller domain.Address, uri string) error {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return err
	}
	return l.SetBaseURI(ctx, caller, uri)
}

func (s *TicketService) Ticket(_ context.Context, event domain.Address, id domain.TicketID) (domain.Ticket, error) {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return domain.Ticket{}, err
	}
	return l.Ticket(id)
}

// Holding is one identity's position on an event.
type Holding struct {
	Holder   domain.Address    `json:"holder"`
	Bought   uint64            `json:"bought"`
	Refunded bool              `json:"refunded"`
	Tickets  []domain.TicketID `json:"tickets"`
}

func (s *TicketService) Holding(_ context.Context, event, holder domain.Address) (Holding, error) {
	l, err := s.ledgers.Ledger(event)
	if err != nil {
		return Holding{}, err
	}
	tickets := l.TicketsOf(holder)
	if tickets == nil {
		tickets = []domain.TicketID{}
	}
	return Holding{
		Holder:   holder,
		Bought:   l.TicketsBought(holder),
		Refunded: l.HasRefunded(holder),
		Tickets:  tickets,
	}, nil
}

// Records returns the emitted records of an event in order.
func (s *TicketService) Records(_ context.Context, event domain.Address) ([]domain.Record, error) {
	if _, err := s.ledgers.Ledger(event); err != nil {
		return nil, err
	}
	if s.records == nil {
		return []domain.Record{}, nil
	}
	return s.records.Records(event), nil
}
