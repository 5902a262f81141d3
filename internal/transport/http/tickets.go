package http

import (
	"context"
	"net/http"

	"github.com/Ryfitz11/NFT-Tickets/internal/app"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// TicketAPI is the minimal interface needed for ledger endpoints.
type TicketAPI interface {
	BuyTicket(ctx context.Context, in app.BuyTicketInput) (domain.Ticket, error)
	CancelEvent(ctx context.Context, event, caller domain.Address) error
	ClaimRefund(ctx context.Context, event, caller domain.Address) (domain.Amount, error)
	WithdrawFunds(ctx context.Context, event, caller domain.Address) (domain.Amount, error)
	MarkTicketAsUsed(ctx context.Context, event, caller domain.Address, id domain.TicketID) (domain.Ticket, error)
	TransferTicket(ctx context.Context, in app.TransferTicketInput) (domain.Ticket, error)
	SetTicketLimit(ctx context.Context, event, caller domain.Address, limit uint64) error
	SetBaseURI(ctx context.Context, event, caller domain.Address, uri string) error
	Ticket(ctx context.Context, event domain.Address, id domain.TicketID) (domain.Ticket, error)
	Holding(ctx context.Context, event, holder domain.Address) (app.Holding, error)
	Records(ctx context.Context, event domain.Address) ([]domain.Record, error)
}

type buyTicketRequest struct {
	Value domain.Amount `json:"value"`
}

type transferTicketRequest struct {
	To domain.Address `json:"to"`
}

type ticketLimitRequest struct {
	Limit uint64 `json:"limit"`
}

type baseURIRequest struct {
	BaseURI string `json:"base_uri"`
}

type amountResponse struct {
	Amount domain.Amount `json:"amount"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// ownerAction resolves the event and caller shared by every authenticated
// ledger endpoint.
func ownerAction(w http.ResponseWriter, r *http.Request) (event, who domain.Address, ok bool) {
	event, ok = pathAddress(w, r, "address")
	if !ok {
		return
	}
	who, ok = caller(w, r)
	return
}

func (h *handlers) buyTicket(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	var req buyTicketRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	t, err := h.tickets.BuyTicket(r.Context(), app.BuyTicketInput{
		Event:  event,
		Caller: who,
		Value:  req.Value,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *handlers) cancelEvent(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	if err := h.tickets.CancelEvent(r.Context(), event, who); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "canceled"})
}

func (h *handlers) claimRefund(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	amt, err := h.tickets.ClaimRefund(r.Context(), event, who)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: amt})
}

func (h *handlers) withdrawFunds(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	amt, err := h.tickets.WithdrawFunds(r.Context(), event, who)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: amt})
}

func (h *handlers) getTicket(w http.ResponseWriter, r *http.Request) {
	event, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	id, ok := pathTicketID(w, r)
	if !ok {
		return
	}
	t, err := h.tickets.Ticket(r.Context(), event, id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) markTicketUsed(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	id, ok := pathTicketID(w, r)
	if !ok {
		return
	}
	t, err := h.tickets.MarkTicketAsUsed(r.Context(), event, who, id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) transferTicket(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	id, ok := pathTicketID(w, r)
	if !ok {
		return
	}
	var req transferTicketRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	t, err := h.tickets.TransferTicket(r.Context(), app.TransferTicketInput{
		Event:    event,
		Caller:   who,
		TicketID: id,
		To:       req.To,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) setTicketLimit(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	var req ticketLimitRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if err := h.tickets.SetTicketLimit(r.Context(), event, who, req.Limit); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *handlers) setBaseURI(w http.ResponseWriter, r *http.Request) {
	event, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	var req baseURIRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if err := h.tickets.SetBaseURI(r.Context(), event, who, req.BaseURI); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *handlers) getHolding(w http.ResponseWriter, r *http.Request) {
	event, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	holder, ok := pathAddress(w, r, "holder")
	if !ok {
		return
	}
	holding, err := h.tickets.Holding(r.Context(), event, holder)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, holding)
}

func (h *handlers) listRecords(w http.ResponseWriter, r *http.Request) {
	event, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	records, err := h.tickets.Records(r.Context(), event)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
