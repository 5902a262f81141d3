package domain

// TicketID numbers tickets sequentially from zero within one ledger.
type TicketID uint64

// Ticket is the current state of one minted ticket.
type Ticket struct {
	ID    TicketID `json:"id"`
	Owner Address  `json:"owner"`
	Used  bool     `json:"used"`
	URI   string   `json:"uri,omitempty"`
}
