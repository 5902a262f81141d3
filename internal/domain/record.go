package domain

// RecordKind names an emitted lifecycle record. Values double as message
// routing keys.
type RecordKind string

const (
	RecordEventCreated       RecordKind = "event.created"
	RecordEventCanceled      RecordKind = "event.canceled"
	RecordTicketPurchased    RecordKind = "ticket.purchased"
	RecordTicketUsed         RecordKind = "ticket.used"
	RecordTicketTransferred  RecordKind = "ticket.transferred"
	RecordRefundClaimed      RecordKind = "refund.claimed"
	RecordFundsWithdrawn     RecordKind = "funds.withdrawn"
	RecordTicketLimitChanged RecordKind = "ticket_limit.changed"
	RecordBaseURIChanged     RecordKind = "base_uri.changed"
)

// Record is one emitted lifecycle fact. Ledger and Kind are set by the
// emitter; ID, Seq, PrevHash and Hash are assigned when the record is
// journaled.
type Record struct {
	ID        string     `json:"id"`
	Seq       uint64     `json:"seq"`
	Ledger    Address    `json:"ledger"`
	Kind      RecordKind `json:"kind"`
	Timestamp int64      `json:"timestamp"`
	Payload   any        `json:"payload"`
	PrevHash  string     `json:"prev_hash,omitempty"`
	Hash      string     `json:"hash,omitempty"`
}

type EventCreated struct {
	Ledger     Address         `json:"ledger"`
	Creator    Address         `json:"creator"`
	Descriptor EventDescriptor `json:"descriptor"`
}

// TicketPurchased mirrors a mint: From is always the zero address.
type TicketPurchased struct {
	From     Address  `json:"from"`
	To       Address  `json:"to"`
	TicketID TicketID `json:"ticket_id"`
	Price    Amount   `json:"price"`
}

type EventCanceled struct {
	CanceledAt int64 `json:"canceled_at"`
}

type RefundClaimed struct {
	Buyer   Address `json:"buyer"`
	Tickets uint64  `json:"tickets"`
	Amount  Amount  `json:"amount"`
}

type FundsWithdrawn struct {
	Owner  Address `json:"owner"`
	Amount Amount  `json:"amount"`
}

type TicketUsed struct {
	TicketID TicketID `json:"ticket_id"`
}

type TicketTransferred struct {
	From     Address  `json:"from"`
	To       Address  `json:"to"`
	TicketID TicketID `json:"ticket_id"`
}

type TicketLimitChanged struct {
	Previous uint64 `json:"previous"`
	Limit    uint64 `json:"limit"`
}

type BaseURIChanged struct {
	URI string `json:"uri"`
}
