package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Ryfitz11/NFT-Tickets/internal/app"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// EventAPI is the minimal interface needed for event endpoints.
type EventAPI interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.EventSummary, error)
	ListEvents(ctx context.Context, owner domain.Address) []domain.EventSummary
	ListAddresses(ctx context.Context) []domain.Address
	GetEvent(ctx context.Context, addr domain.Address) (app.EventView, error)
}

type createEventRequest struct {
	CollectionName   string         `json:"collection_name"`
	CollectionSymbol string         `json:"collection_symbol"`
	EventName        string         `json:"event_name"`
	EventDate        string         `json:"event_date"`
	EventTime        int64          `json:"event_time"`
	TotalSupply      uint64         `json:"total_supply"`
	TicketPrice      domain.Amount  `json:"ticket_price"`
	TicketLimit      uint64         `json:"ticket_limit"`
	PaymentToken     domain.Address `json:"payment_token"`
	ImageURI         string         `json:"image_uri"`
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	var req createEventRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	var date time.Time
	switch {
	case req.EventDate != "":
		parsed, err := time.Parse(time.RFC3339, req.EventDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidEventDate, "invalid event_date format")
			return
		}
		date = parsed
	case req.EventTime != 0:
		date = time.Unix(req.EventTime, 0).UTC()
	}

	ev, err := h.events.CreateEvent(r.Context(), app.CreateEventInput{
		Caller:           who,
		CollectionName:   req.CollectionName,
		CollectionSymbol: req.CollectionSymbol,
		EventName:        req.EventName,
		EventDate:        date,
		TotalSupply:      req.TotalSupply,
		TicketPrice:      req.TicketPrice,
		TicketLimit:      req.TicketLimit,
		PaymentToken:     req.PaymentToken,
		ImageURI:         req.ImageURI,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	var owner domain.Address
	if q := r.URL.Query().Get("owner"); q != "" {
		parsed, err := domain.ParseAddress(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidAddress, "invalid owner")
			return
		}
		owner = parsed
	}
	events := h.events.ListEvents(r.Context(), owner)
	if events == nil {
		events = []domain.EventSummary{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *handlers) listAddresses(w http.ResponseWriter, r *http.Request) {
	addrs := h.events.ListAddresses(r.Context())
	if addrs == nil {
		addrs = []domain.Address{}
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	ev, err := h.events.GetEvent(r.Context(), addr)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
