// Package ledger implements the per-event ticket sale state machine.
//
// Mutating operations are serialized per ledger and either apply all of their
// effects or none. Payment token calls happen inside that serialization but
// outside the state lock: state is written only after the token reports
// success, so queries made meanwhile, including from token callbacks, see the
// last committed state.
package ledger

import (
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Ryfitz11/NFT-Tickets/internal/clock"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/token"
)

// Emitter receives records after the state change they describe has been
// applied. Emit may query the ledger but must not start another operation
// on it.
type Emitter interface {
	Emit(rec domain.Record)
}

type discardEmitter struct{}

func (discardEmitter) Emit(domain.Record) {}

type Config struct {
	Address    domain.Address
	Owner      domain.Address
	Descriptor domain.EventDescriptor
	Token      token.Token
	Clock      clock.Clock
	Emitter    Emitter
	Logger     *slog.Logger
}

type Ledger struct {
	address domain.Address
	desc    domain.EventDescriptor
	token   token.Token
	clock   clock.Clock
	emitter Emitter
	logger  *slog.Logger

	// op is held by one mutating operation at a time, across its token calls.
	op chan struct{}

	// mu guards the fields below. Mutations read them while holding op and
	// take mu only to write; mu is never held across a token call.
	mu           sync.RWMutex
	owner        domain.Address
	ticketsSold  uint64
	nextTicketID uint64
	canceled     bool
	ticketLimit  uint64
	baseURI      string
	owners       []domain.Address // indexed by ticket id
	used         []bool
	purchased    map[domain.Address]uint64
	refunded     map[domain.Address]bool
}

// New returns an active ledger. The descriptor is assumed to be validated by
// the caller.
func New(cfg Config) *Ledger {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = discardEmitter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ledger{
		address:     cfg.Address,
		desc:        cfg.Descriptor,
		token:       cfg.Token,
		clock:       cfg.Clock,
		emitter:     cfg.Emitter,
		logger:      cfg.Logger.With("ledger", cfg.Address.String()),
		op:          make(chan struct{}, 1),
		owner:       cfg.Owner,
		ticketLimit: cfg.Descriptor.TicketLimit,
		purchased:   make(map[domain.Address]uint64),
		refunded:    make(map[domain.Address]bool),
	}
}

// Address is the ledger's own identity; buyers approve it as token spender.
func (l *Ledger) Address() domain.Address { return l.address }

func (l *Ledger) Descriptor() domain.EventDescriptor { return l.desc }

func (l *Ledger) PaymentToken() domain.Address { return l.desc.PaymentToken }

func (l *Ledger) ImageURI() string { return l.desc.ImageURI }

func (l *Ledger) TicketPrice() domain.Amount { return l.desc.TicketPrice }

func (l *Ledger) Owner() domain.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owner
}

// Details returns name, date, supply, sold count and cancellation state.
func (l *Ledger) Details() domain.EventDetails {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.EventDetails{
		Name:        l.desc.EventName,
		Date:        l.desc.EventTime,
		TotalSupply: l.desc.TotalSupply,
		TicketsSold: l.ticketsSold,
		IsCanceled:  l.canceled,
	}
}

// Summary describes the ledger for registry listings.
func (l *Ledger) Summary() domain.EventSummary {
	now := l.clock.Now()
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.EventSummary{
		Address:     l.address,
		Owner:       l.owner,
		Descriptor:  l.desc,
		TicketsSold: l.ticketsSold,
		TicketLimit: l.ticketLimit,
		IsCanceled:  l.canceled,
		Elapsed:     l.elapsedAt(now),
	}
}

func (l *Ledger) IsCanceled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.canceled
}

// Elapsed reports whether the current time is at or past the event timestamp.
func (l *Ledger) Elapsed() bool {
	return l.elapsedAt(l.clock.Now())
}

// TicketsBought returns how many tickets buyer has purchased directly. The
// count is not reduced by transfers.
func (l *Ledger) TicketsBought(buyer domain.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.purchased[buyer]
}

func (l *Ledger) TicketLimit() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ticketLimit
}

// HasRefunded reports whether buyer already claimed a refund.
func (l *Ledger) HasRefunded(buyer domain.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.refunded[buyer]
}

// TicketStatus reports whether the ticket has been used.
func (l *Ledger) TicketStatus(id domain.TicketID) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.minted(id) {
		return false, domain.ErrTicketNotMinted
	}
	return l.used[id], nil
}

func (l *Ledger) OwnerOf(id domain.TicketID) (domain.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.minted(id) {
		return domain.ZeroAddress, domain.ErrTicketNotMinted
	}
	return l.owners[id], nil
}

// Ticket returns the full state of one minted ticket.
func (l *Ledger) Ticket(id domain.TicketID) (domain.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.minted(id) {
		return domain.Ticket{}, domain.ErrTicketNotMinted
	}
	return domain.Ticket{
		ID:    id,
		Owner: l.owners[id],
		Used:  l.used[id],
		URI:   l.tokenURI(id),
	}, nil
}

// TicketsOf lists the ids currently held by holder, ascending.
func (l *Ledger) TicketsOf(holder domain.Address) []domain.TicketID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var ids []domain.TicketID
	for i, o := range l.owners {
		if o == holder {
			ids = append(ids, domain.TicketID(i))
		}
	}
	return ids
}

// TokenURI is the metadata location of a ticket: base URI followed by the
// decimal id, or empty while no base URI is configured.
func (l *Ledger) TokenURI(id domain.TicketID) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.minted(id) {
		return "", domain.ErrTicketNotMinted
	}
	return l.tokenURI(id), nil
}

func (l *Ledger) tokenURI(id domain.TicketID) string {
	if l.baseURI == "" {
		return ""
	}
	return l.baseURI + strconv.FormatUint(uint64(id), 10)
}

func (l *Ledger) minted(id domain.TicketID) bool {
	return uint64(id) < l.ticketsSold
}

func (l *Ledger) elapsedAt(now time.Time) bool {
	return now.Unix() >= l.desc.EventTime
}

func (l *Ledger) emit(kind domain.RecordKind, now time.Time, payload any) {
	l.emitter.Emit(domain.Record{
		Ledger:    l.address,
		Kind:      kind,
		Timestamp: now.Unix(),
		Payload:   payload,
	})
}
