package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ryfitz11/NFT-Tickets/internal/app"
	"github.com/Ryfitz11/NFT-Tickets/internal/auth"
	"github.com/Ryfitz11/NFT-Tickets/internal/clock"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/journal"
	"github.com/Ryfitz11/NFT-Tickets/internal/registry"
	"github.com/Ryfitz11/NFT-Tickets/internal/token"
)

var (
	factory = domain.MustParseAddress("0x00000000000000000000000000000000000fac70")
	usdc    = domain.MustParseAddress("0x00000000000000000000000000000000000000cc")
	venue   = domain.MustParseAddress("0x0000000000000000000000000000000000000001")
	fan     = domain.MustParseAddress("0x00000000000000000000000000000000000000f1")
)

type server struct {
	handler http.Handler
	issuer  *auth.Issuer
	now     time.Time
}

func newServer(t *testing.T) *server {
	t.Helper()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewManual(now)
	coin := token.NewMemory(usdc, "mUSDC")
	log := journal.NewLog(nil)
	reg := registry.New(registry.Config{
		Address: factory,
		Tokens:  token.NewDirectory(coin),
		Clock:   clk,
		Emitter: log,
	})
	issuer, err := auth.NewIssuer("test-secret", time.Hour, clk)
	require.NoError(t, err)

	return &server{
		handler: NewRouter(RouterConfig{
			Events:  app.NewEventService(reg, app.WithDefaultPaymentToken(usdc)),
			Tickets: app.NewTicketService(reg, log),
			Wallets: app.NewWalletService(coin, app.WithMintLimit(domain.NewAmount(1_000_000_000))),
			Auth:    issuer,
		}),
		issuer: issuer,
		now:    now,
	}
}

func (s *server) do(t *testing.T, method, path string, as domain.Address, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if !as.IsZero() {
		tok, err := s.issuer.IssueToken(as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) createConcert(t *testing.T) domain.Address {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/events", venue, map[string]any{
		"collection_name":   "Awesome Event Tickets",
		"collection_symbol": "AET",
		"event_name":        "The Grand Concert",
		"event_time":        s.now.Add(7 * 24 * time.Hour).Unix(),
		"total_supply":      100,
		"ticket_price":      "25000000",
		"ticket_limit":      2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ev domain.EventSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	require.False(t, ev.Address.IsZero())
	return ev.Address
}

func (s *server) fundAndApprove(t *testing.T, who, spender domain.Address) {
	t.Helper()
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/wallets/%s/mint", who), domain.ZeroAddress, map[string]any{"amount": "100000000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/wallets/%s/approve", who), who, map[string]any{
		"spender": spender.String(),
		"amount":  "100000000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_PurchaseCancelRefund(t *testing.T) {
	s := newServer(t)
	event := s.createConcert(t)
	s.fundAndApprove(t, fan, event)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/tickets", event), fan, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket domain.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, domain.TicketID(0), ticket.ID)
	assert.Equal(t, fan, ticket.Owner)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/events/%s/tickets/0", event), domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/cancel", event), fan, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_owner", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/cancel", event), venue, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/refund", event), fan, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"amount":"25000000"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/refund", event), fan, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_refunded", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/events/%s/holders/%s", event, fan), domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var holding app.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holding))
	assert.Equal(t, uint64(1), holding.Bought)
	assert.True(t, holding.Refunded)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/events/%s/records", event), domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	kinds := make([]string, 0, len(records))
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []string{
		string(domain.RecordEventCreated),
		string(domain.RecordTicketPurchased),
		string(domain.RecordEventCanceled),
		string(domain.RecordRefundClaimed),
	}, kinds)
}

func TestRouter_TransferAndUse(t *testing.T) {
	s := newServer(t)
	event := s.createConcert(t)
	s.fundAndApprove(t, fan, event)
	friend := domain.MustParseAddress("0x00000000000000000000000000000000000000f2")

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/tickets", event), fan, map[string]any{"value": "0"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/tickets/0/transfer", event), fan, map[string]any{"to": friend.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ticket domain.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, friend, ticket.Owner)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/tickets/0/use", event), fan, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/tickets/0/use", event), venue, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.True(t, ticket.Used)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/tickets/0/transfer", event), friend, map[string]any{"to": fan.String()})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ticket_used", decodeError(t, rec).Code)
}

func TestRouter_Settings(t *testing.T) {
	s := newServer(t)
	event := s.createConcert(t)

	rec := s.do(t, http.MethodPut, fmt.Sprintf("/events/%s/limit", event), venue, map[string]any{"limit": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/events/%s/base-uri", event), fan, map[string]any{"base_uri": "ipfs://x/"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/events/%s", event), domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		TicketLimit uint64 `json:"ticket_limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, uint64(5), view.TicketLimit)
}

func TestRouter_Listing(t *testing.T) {
	s := newServer(t)
	event := s.createConcert(t)

	rec := s.do(t, http.MethodGet, "/events/addresses", domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var addrs []domain.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addrs))
	assert.Equal(t, []domain.Address{event}, addrs)

	rec = s.do(t, http.MethodGet, "/events?owner="+fan.String(), domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/events?owner="+venue.String(), domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []domain.EventSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, event, events[0].Address)
}

func TestRouter_Errors(t *testing.T) {
	s := newServer(t)
	event := s.createConcert(t)
	missing := domain.MustParseAddress("0x00000000000000000000000000000000deadbeef")

	tests := []struct {
		name   string
		method string
		path   string
		as     domain.Address
		body   any
		status int
		code   string
	}{
		{name: "unknown route", method: http.MethodGet, path: "/nope", status: http.StatusNotFound, code: codeNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/events", status: http.StatusMethodNotAllowed, code: codeMethodNotAllowed},
		{name: "unauthenticated", method: http.MethodPost, path: "/events", body: map[string]any{}, status: http.StatusUnauthorized, code: codeUnauthenticated},
		{name: "bad address", method: http.MethodGet, path: "/events/zzz", status: http.StatusBadRequest, code: codeInvalidAddress},
		{name: "unknown event", method: http.MethodGet, path: "/events/" + missing.String(), status: http.StatusNotFound, code: "event_not_found"},
		{name: "bad ticket id", method: http.MethodGet, path: fmt.Sprintf("/events/%s/tickets/abc", event), status: http.StatusBadRequest, code: codeInvalidTicketID},
		{name: "unminted ticket", method: http.MethodGet, path: fmt.Sprintf("/events/%s/tickets/9", event), status: http.StatusBadRequest, code: "ticket_not_minted"},
		{name: "unknown field", method: http.MethodPost, path: "/events", as: venue, body: map[string]any{"bogus": true}, status: http.StatusBadRequest, code: codeInvalidRequestBody},
		{name: "bad event date", method: http.MethodPost, path: "/events", as: venue, body: map[string]any{"event_date": "tomorrow"}, status: http.StatusBadRequest, code: codeInvalidEventDate},
		{name: "native value", method: http.MethodPost, path: fmt.Sprintf("/events/%s/tickets", event), as: fan, body: map[string]any{"value": "1"}, status: http.StatusPaymentRequired, code: "native_value_rejected"},
		{name: "no allowance", method: http.MethodPost, path: fmt.Sprintf("/events/%s/tickets", event), as: fan, status: http.StatusPaymentRequired, code: "insufficient_allowance"},
		{name: "withdraw before date", method: http.MethodPost, path: fmt.Sprintf("/events/%s/withdraw", event), as: venue, status: http.StatusConflict, code: "event_not_elapsed"},
		{name: "approve for other wallet", method: http.MethodPost, path: fmt.Sprintf("/wallets/%s/approve", venue), as: fan, body: map[string]any{"spender": event.String(), "amount": "1"}, status: http.StatusForbidden, code: codeForbidden},
		{name: "mint over limit", method: http.MethodPost, path: fmt.Sprintf("/wallets/%s/mint", fan), body: map[string]any{"amount": "2000000000"}, status: http.StatusBadRequest, code: "mint_limit_exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.as, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}
