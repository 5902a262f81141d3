package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Events      EventAPI
	Tickets     TicketAPI
	Wallets     WalletAPI
	Auth        CallerParser
	Logger      *slog.Logger
	CORSOrigins []string
	// Probes are reported by /health; nil means liveness only.
	Probes map[string]Probe
}

type handlers struct {
	events  EventAPI
	tickets TicketAPI
	wallets WalletAPI
	logger  *slog.Logger
}

// NewRouter wires every endpoint behind CORS and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{
		events:  cfg.Events,
		tickets: cfg.Tickets,
		wallets: cfg.Wallets,
		logger:  logger,
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return RequireCaller(cfg.Auth, fn)
	}

	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.Handle("/health", HandleHealth(cfg.Probes)).Methods(http.MethodGet)

	r.HandleFunc("/events", h.listEvents).Methods(http.MethodGet)
	r.Handle("/events", authed(h.createEvent)).Methods(http.MethodPost)
	r.HandleFunc("/events/addresses", h.listAddresses).Methods(http.MethodGet)

	ev := eventRoutes{r}
	ev.HandleFunc("", h.getEvent).Methods(http.MethodGet)
	ev.Handle("/tickets", authed(h.buyTicket)).Methods(http.MethodPost)
	ev.Handle("/cancel", authed(h.cancelEvent)).Methods(http.MethodPost)
	ev.Handle("/refund", authed(h.claimRefund)).Methods(http.MethodPost)
	ev.Handle("/withdraw", authed(h.withdrawFunds)).Methods(http.MethodPost)
	ev.HandleFunc("/tickets/{id}", h.getTicket).Methods(http.MethodGet)
	ev.Handle("/tickets/{id}/use", authed(h.markTicketUsed)).Methods(http.MethodPost)
	ev.Handle("/tickets/{id}/transfer", authed(h.transferTicket)).Methods(http.MethodPost)
	ev.Handle("/limit", authed(h.setTicketLimit)).Methods(http.MethodPut)
	ev.Handle("/base-uri", authed(h.setBaseURI)).Methods(http.MethodPut)
	ev.HandleFunc("/records", h.listRecords).Methods(http.MethodGet)
	ev.HandleFunc("/holders/{holder}", h.getHolding).Methods(http.MethodGet)

	r.HandleFunc("/wallets/{address}", h.getWallet).Methods(http.MethodGet)
	r.HandleFunc("/wallets/{address}/mint", h.mint).Methods(http.MethodPost)
	r.Handle("/wallets/{address}/approve", authed(h.approve)).Methods(http.MethodPost)

	return RequestLogger(CORS(cfg.CORSOrigins, r), logger)
}

// eventRoutes registers paths under a single event.
type eventRoutes struct {
	r *mux.Router
}

func (e eventRoutes) Handle(path string, h http.Handler) *mux.Route {
	return e.r.Handle("/events/{address}"+path, h)
}

func (e eventRoutes) HandleFunc(path string, fn http.HandlerFunc) *mux.Route {
	return e.r.HandleFunc("/events/{address}"+path, fn)
}
