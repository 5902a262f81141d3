package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Ryfitz11/NFT-Tickets/internal/auth"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON body into v, rejecting unknown fields. An empty
// body is accepted when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

// pathAddress parses the named route variable as an address.
func pathAddress(w http.ResponseWriter, r *http.Request, name string) (domain.Address, bool) {
	addr, err := domain.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidAddress, "invalid address")
		return domain.ZeroAddress, false
	}
	return addr, true
}

func pathTicketID(w http.ResponseWriter, r *http.Request) (domain.TicketID, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidTicketID, "invalid ticket id")
		return 0, false
	}
	return domain.TicketID(id), true
}

// caller returns the authenticated caller. Routes behind RequireCaller always
// have one.
func caller(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	addr, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthenticated, "missing bearer token")
		return domain.ZeroAddress, false
	}
	return addr, true
}
