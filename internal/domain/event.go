package domain

import "time"

// EventDescriptor is the immutable configuration of one event's ticket sale.
type EventDescriptor struct {
	CollectionName   string  `json:"collection_name" yaml:"collection_name"`
	CollectionSymbol string  `json:"collection_symbol" yaml:"collection_symbol"`
	EventName        string  `json:"event_name" yaml:"event_name"`
	EventTime        int64   `json:"event_time" yaml:"event_time"`
	TotalSupply      uint64  `json:"total_supply" yaml:"total_supply"`
	TicketPrice      Amount  `json:"ticket_price" yaml:"ticket_price"`
	TicketLimit      uint64  `json:"ticket_limit" yaml:"ticket_limit"`
	PaymentToken     Address `json:"payment_token" yaml:"payment_token"`
	ImageURI         string  `json:"image_uri" yaml:"image_uri"`
}

// Validate checks creation parameters in a fixed order so that callers always
// see the first failing rule.
func (d EventDescriptor) Validate(now time.Time) error {
	if d.CollectionName == "" {
		return ErrEmptyCollectionName
	}
	if d.CollectionSymbol == "" {
		return ErrEmptyCollectionSymbol
	}
	if d.EventName == "" {
		return ErrEmptyEventName
	}
	if d.EventTime <= now.Unix() {
		return ErrEventDateNotFuture
	}
	if d.TotalSupply == 0 {
		return ErrZeroTotalSupply
	}
	if d.TicketLimit == 0 {
		return ErrZeroTicketLimit
	}
	if d.TicketLimit > d.TotalSupply {
		return ErrLimitExceedsSupply
	}
	if !d.TicketPrice.IsPositive() {
		return ErrZeroTicketPrice
	}
	if d.PaymentToken.IsZero() {
		return ErrZeroPaymentToken
	}
	return nil
}

// Date returns the event timestamp as a time.Time in UTC.
func (d EventDescriptor) Date() time.Time {
	return time.Unix(d.EventTime, 0).UTC()
}

// EventDetails is the public summary returned by a ledger.
type EventDetails struct {
	Name        string `json:"name"`
	Date        int64  `json:"date"`
	TotalSupply uint64 `json:"total_supply"`
	TicketsSold uint64 `json:"tickets_sold"`
	IsCanceled  bool   `json:"is_canceled"`
}

// EventSummary describes one registered ledger.
type EventSummary struct {
	Address     Address         `json:"address"`
	Owner       Address         `json:"owner"`
	Descriptor  EventDescriptor `json:"descriptor"`
	TicketsSold uint64          `json:"tickets_sold"`
	TicketLimit uint64          `json:"ticket_limit"`
	IsCanceled  bool            `json:"is_canceled"`
	Elapsed     bool            `json:"elapsed"`
}
