package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidAddress     = "invalid_address"
	codeInvalidTicketID    = "invalid_ticket_id"
	codeInvalidEventDate   = "invalid_event_date"
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeUnavailable        = "unavailable"
	codeInternalError      = "internal_error"
)

// codes names the failure reasons clients commonly branch on. Other
// classified errors use their kind as code.
var codes = map[error]string{
	domain.ErrEventNotFound:         "event_not_found",
	domain.ErrLimitExceedsSupply:    "limit_exceeds_supply",
	domain.ErrEventDateNotFuture:    "event_date_not_future",
	domain.ErrUnknownPaymentToken:   "unknown_payment_token",
	domain.ErrNotOwner:              "not_owner",
	domain.ErrNotTicketOwner:        "not_ticket_owner",
	domain.ErrNativeValueRejected:   "native_value_rejected",
	domain.ErrInsufficientAllowance: "insufficient_allowance",
	domain.ErrInsufficientBalance:   "insufficient_balance",
	domain.ErrInsufficientFunds:     "insufficient_funds",
	domain.ErrPaymentFailed:         "payment_failed",
	domain.ErrEventCanceled:         "event_canceled",
	domain.ErrEventElapsed:          "event_elapsed",
	domain.ErrEventNotElapsed:       "event_not_elapsed",
	domain.ErrAlreadyCanceled:       "already_canceled",
	domain.ErrNotCanceled:           "not_canceled",
	domain.ErrSoldOut:               "sold_out",
	domain.ErrTicketLimitReached:    "ticket_limit_reached",
	domain.ErrAlreadyRefunded:       "already_refunded",
	domain.ErrNothingToRefund:       "nothing_to_refund",
	domain.ErrNoFunds:               "no_funds",
	domain.ErrTicketUsed:            "ticket_used",
	domain.ErrTicketNotMinted:       "ticket_not_minted",
	domain.ErrReentrantCall:         "reentrant_call",
	domain.ErrMintLimitExceeded:     "mint_limit_exceeded",
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a service error to its status by kind. Unclassified
// errors are logged and hidden behind a 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindInvalidArgument:
		status = http.StatusBadRequest
	case domain.KindUnauthorized:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindIllegalState:
		status = http.StatusConflict
	case domain.KindPaymentFailure:
		status = http.StatusPaymentRequired
	}

	code, ok := codes[de]
	if !ok {
		code = de.Kind.String()
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	}
	writeError(w, status, code, de.Reason)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
