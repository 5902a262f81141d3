// Package registry creates event ledgers and keeps the ordered list of every
// ledger ever created.
package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Ryfitz11/NFT-Tickets/internal/clock"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/ledger"
	"github.com/Ryfitz11/NFT-Tickets/internal/token"
)

// TokenResolver maps a payment-token identifier to the token it names.
type TokenResolver interface {
	Lookup(addr domain.Address) (token.Token, bool)
}

type Config struct {
	// Address is the registry's own identity. Ledger addresses are derived
	// from it and a creation counter.
	Address domain.Address
	// Owner administers the registry itself; it has no say over ledgers.
	Owner domain.Address
	// FirstNonce offsets the creation counter so a restarted registry does
	// not hand out addresses used by an earlier run.
	FirstNonce uint64
	Tokens     TokenResolver
	Clock      clock.Clock
	Emitter    ledger.Emitter
	Logger     *slog.Logger
}

type Registry struct {
	address    domain.Address
	owner      domain.Address
	firstNonce uint64
	tokens     TokenResolver
	clock      clock.Clock
	emitter    ledger.Emitter
	logger     *slog.Logger

	mu      sync.RWMutex
	ledgers []*ledger.Ledger
	index   map[domain.Address]int
}

type nopEmitter struct{}

func (nopEmitter) Emit(domain.Record) {}

func New(cfg Config) *Registry {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = nopEmitter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		address:    cfg.Address,
		owner:      cfg.Owner,
		firstNonce: cfg.FirstNonce,
		tokens:     cfg.Tokens,
		clock:      cfg.Clock,
		emitter:    cfg.Emitter,
		logger:     cfg.Logger,
		index:      make(map[domain.Address]int),
	}
}

func (r *Registry) Address() domain.Address { return r.address }

func (r *Registry) Owner() domain.Address { return r.owner }

// CreateEvent validates desc, creates a ledger owned by caller and appends it
// to the registry.
func (r *Registry) CreateEvent(ctx context.Context, caller domain.Address, desc domain.EventDescriptor) (*ledger.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	if err := desc.Validate(now); err != nil {
		return nil, err
	}
	if r.tokens == nil {
		return nil, domain.ErrUnknownPaymentToken
	}
	tok, ok := r.tokens.Lookup(desc.PaymentToken)
	if !ok {
		return nil, domain.ErrUnknownPaymentToken
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	addr := domain.DeriveAddress(r.address, r.firstNonce+uint64(len(r.ledgers)))
	l := ledger.New(ledger.Config{
		Address:    addr,
		Owner:      caller,
		Descriptor: desc,
		Token:      tok,
		Clock:      r.clock,
		Emitter:    r.emitter,
		Logger:     r.logger,
	})
	r.index[addr] = len(r.ledgers)
	r.ledgers = append(r.ledgers, l)

	r.logger.Info("event created",
		"ledger", addr.String(),
		"owner", caller.String(),
		"name", desc.EventName,
		"supply", desc.TotalSupply,
	)
	r.emitter.Emit(domain.Record{
		Ledger:    addr,
		Kind:      domain.RecordEventCreated,
		Timestamp: now.Unix(),
		Payload: domain.EventCreated{
			Ledger:     addr,
			Creator:    caller,
			Descriptor: desc,
		},
	})
	return l, nil
}

// GetAllEventAddresses returns every ledger handle in creation order.
func (r *Registry) GetAllEventAddresses() []domain.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Address, len(r.ledgers))
	for i, l := range r.ledgers {
		out[i] = l.Address()
	}
	return out
}

// GetAllEvents returns a summary of every ledger in creation order.
func (r *Registry) GetAllEvents() []domain.EventSummary {
	ledgers := r.snapshot()
	out := make([]domain.EventSummary, len(ledgers))
	for i, l := range ledgers {
		out[i] = l.Summary()
	}
	return out
}

// EventsByOwner returns summaries of the ledgers currently owned by owner.
func (r *Registry) EventsByOwner(owner domain.Address) []domain.EventSummary {
	var out []domain.EventSummary
	for _, l := range r.snapshot() {
		if s := l.Summary(); s.Owner == owner {
			out = append(out, s)
		}
	}
	return out
}

// Ledger returns the ledger registered under addr.
func (r *Registry) Ledger(addr domain.Address) (*ledger.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[addr]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return r.ledgers[i], nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ledgers)
}

// snapshot copies the ledger list so per-ledger queries run without the
// registry lock.
func (r *Registry) snapshot() []*ledger.Ledger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*ledger.Ledger(nil), r.ledgers...)
}
