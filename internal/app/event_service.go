package app

import (
	"context"
	"time"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/ledger"
)

// Registry is the event factory the services operate on.
type Registry interface {
	CreateEvent(ctx context.Context, caller domain.Address, desc domain.EventDescriptor) (*ledger.Ledger, error)
	GetAllEventAddresses() []domain.Address
	GetAllEvents() []domain.EventSummary
	EventsByOwner(owner domain.Address) []domain.EventSummary
	Ledger(addr domain.Address) (*ledger.Ledger, error)
}

type EventService struct {
	registry     Registry
	defaultToken domain.Address
}

func NewEventService(registry Registry, opts ...EventServiceOption) *EventService {
	svc := &EventService{registry: registry}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type EventServiceOption func(*EventService)

// WithDefaultPaymentToken sets the token used when an input names none.
func WithDefaultPaymentToken(addr domain.Address) EventServiceOption {
	return func(s *EventService) {
		s.defaultToken = addr
	}
}

type CreateEventInput struct {
	Caller           domain.Address
	CollectionName   string
	CollectionSymbol string
	EventName        string
	EventDate        time.Time
	TotalSupply      uint64
	TicketPrice      domain.Amount
	TicketLimit      uint64
	PaymentToken     domain.Address
	ImageURI         string
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.EventSummary, error) {
	if in.Caller.IsZero() {
		return domain.EventSummary{}, domain.ErrInvalidAddress
	}
	token := in.PaymentToken
	if token.IsZero() {
		token = s.defaultToken
	}

	l, err := s.registry.CreateEvent(ctx, in.Caller, domain.EventDescriptor{
		CollectionName:   in.CollectionName,
		CollectionSymbol: in.CollectionSymbol,
		EventName:        in.EventName,
		EventTime:        in.EventDate.Unix(),
		TotalSupply:      in.TotalSupply,
		TicketPrice:      in.TicketPrice,
		TicketLimit:      in.TicketLimit,
		PaymentToken:     token,
		ImageURI:         in.ImageURI,
	})
	if err != nil {
		return domain.EventSummary{}, err
	}
	return l.Summary(), nil
}

// ListEvents returns every event, or only owner's when owner is non-zero.
func (s *EventService) ListEvents(_ context.Context, owner domain.Address) []domain.EventSummary {
	if !owner.IsZero() {
		return s.registry.EventsByOwner(owner)
	}
	return s.registry.GetAllEvents()
}

func (s *EventService) ListAddresses(context.Context) []domain.Address {
	return s.registry.GetAllEventAddresses()
}

type EventView struct {
	domain.EventSummary
	Details domain.EventDetails `json:"details"`
}

func (s *EventService) GetEvent(_ context.Context, addr domain.Address) (EventView, error) {
	l, err := s.registry.Ledger(addr)
	if err != nil {
		return EventView{}, err
	}
	return EventView{
		EventSummary: l.Summary(),
		Details:      l.Details(),
	}, nil
}
