package broker

import "github.com/Ryfitz11/NFT-Tickets/internal/domain"

// Routing keys published on the exchange. They equal the record kinds so
// consumers can bind with patterns such as "ticket.*" or "#".
const (
	TopicEventCreated       = string(domain.RecordEventCreated)
	TopicEventCanceled      = string(domain.RecordEventCanceled)
	TopicTicketPurchased    = string(domain.RecordTicketPurchased)
	TopicTicketUsed         = string(domain.RecordTicketUsed)
	TopicTicketTransferred  = string(domain.RecordTicketTransferred)
	TopicRefundClaimed      = string(domain.RecordRefundClaimed)
	TopicFundsWithdrawn     = string(domain.RecordFundsWithdrawn)
	TopicTicketLimitChanged = string(domain.RecordTicketLimitChanged)
	TopicBaseURIChanged     = string(domain.RecordBaseURIChanged)
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	ID        string         `json:"id"`
	Seq       uint64         `json:"seq"`
	Ledger    domain.Address `json:"ledger"`
	Kind      string         `json:"kind"`
	Timestamp int64          `json:"timestamp"`
	Payload   any            `json:"payload"`
	Hash      string         `json:"hash"`
	PrevHash  string         `json:"prev_hash,omitempty"`
}
