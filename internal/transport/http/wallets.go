package http

import (
	"context"
	"net/http"

	"github.com/Ryfitz11/NFT-Tickets/internal/app"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// WalletAPI is the development faucet.
type WalletAPI interface {
	Balance(ctx context.Context, addr domain.Address) (app.WalletBalance, error)
	Mint(ctx context.Context, to domain.Address, amount domain.Amount) (app.WalletBalance, error)
	Approve(ctx context.Context, in app.ApproveInput) (app.Allowance, error)
}

type mintRequest struct {
	Amount domain.Amount `json:"amount"`
}

type approveRequest struct {
	Spender domain.Address `json:"spender"`
	Amount  domain.Amount  `json:"amount"`
}

func (h *handlers) getWallet(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	bal, err := h.wallets.Balance(r.Context(), addr)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (h *handlers) mint(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	var req mintRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	bal, err := h.wallets.Mint(r.Context(), addr, req.Amount)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

// approve only lets a caller grant allowances out of their own wallet.
func (h *handlers) approve(w http.ResponseWriter, r *http.Request) {
	owner, who, ok := ownerAction(w, r)
	if !ok {
		return
	}
	if owner != who {
		writeError(w, http.StatusForbidden, codeForbidden, "cannot approve for another wallet")
		return
	}
	var req approveRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	allowance, err := h.wallets.Approve(r.Context(), app.ApproveInput{
		Owner:   owner,
		Spender: req.Spender,
		Amount:  req.Amount,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, allowance)
}
