package domain

import "errors"

// Kind classifies a failure independently of the operation that produced it.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthorized
	KindIllegalState
	KindPaymentFailure
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthorized:
		return "unauthorized"
	case KindIllegalState:
		return "illegal_state"
	case KindPaymentFailure:
		return "payment_failure"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified failure reason. Values are compared by identity, so
// the sentinels below work with errors.Is even when wrapped.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// KindOf returns the classification of err, or KindInternal when err does not
// wrap a *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Event creation.
var (
	ErrEmptyCollectionName   = newError(KindInvalidArgument, "collection name cannot be empty")
	ErrEmptyCollectionSymbol = newError(KindInvalidArgument, "collection symbol cannot be empty")
	ErrEmptyEventName        = newError(KindInvalidArgument, "event name cannot be empty")
	ErrEventDateNotFuture    = newError(KindInvalidArgument, "event date must be in the future")
	ErrZeroTotalSupply       = newError(KindInvalidArgument, "total tickets must be greater than 0")
	ErrZeroTicketLimit       = newError(KindInvalidArgument, "ticket limit must be greater than 0")
	ErrLimitExceedsSupply    = newError(KindInvalidArgument, "ticket limit cannot exceed total tickets")
	ErrZeroTicketPrice       = newError(KindInvalidArgument, "ticket price must be greater than 0")
	ErrZeroPaymentToken      = newError(KindInvalidArgument, "payment token address cannot be zero")
	ErrUnknownPaymentToken   = newError(KindInvalidArgument, "payment token is not supported")
	ErrInvalidAddress        = newError(KindInvalidArgument, "invalid address")
	ErrInvalidAmount         = newError(KindInvalidArgument, "invalid amount")
	ErrEventNotFound         = newError(KindNotFound, "event not found")
	ErrMintLimitExceeded     = newError(KindInvalidArgument, "mint amount exceeds faucet limit")
)

// Ledger operations.
var (
	ErrNotOwner              = newError(KindUnauthorized, "caller is not the owner")
	ErrNotTicketOwner        = newError(KindUnauthorized, "caller does not own this ticket")
	ErrNativeValueRejected   = newError(KindPaymentFailure, "native value not accepted; pay with the payment token")
	ErrInsufficientAllowance = newError(KindPaymentFailure, "payment token allowance is insufficient")
	ErrInsufficientBalance   = newError(KindPaymentFailure, "payment token balance is insufficient")
	ErrInsufficientFunds     = newError(KindPaymentFailure, "ledger balance is insufficient for refund")
	ErrPaymentFailed         = newError(KindPaymentFailure, "payment token transfer failed")
	ErrEventCanceled         = newError(KindIllegalState, "event has been canceled")
	ErrEventElapsed          = newError(KindIllegalState, "event has already taken place")
	ErrEventNotElapsed       = newError(KindIllegalState, "event has not taken place yet")
	ErrAlreadyCanceled       = newError(KindIllegalState, "event is already canceled")
	ErrNotCanceled           = newError(KindIllegalState, "event is not canceled")
	ErrSoldOut               = newError(KindIllegalState, "sold out")
	ErrTicketLimitReached    = newError(KindIllegalState, "ticket limit reached")
	ErrAlreadyRefunded       = newError(KindIllegalState, "refund already claimed")
	ErrNothingToRefund       = newError(KindIllegalState, "no tickets purchased")
	ErrNoFunds               = newError(KindIllegalState, "no funds to withdraw")
	ErrTicketUsed            = newError(KindIllegalState, "ticket already used")
	ErrReentrantCall         = newError(KindIllegalState, "reentrant call")
	ErrTicketNotMinted       = newError(KindInvalidArgument, "ticket does not exist")
	ErrInvalidRecipient      = newError(KindInvalidArgument, "invalid recipient")
	ErrZeroNewLimit          = newError(KindInvalidArgument, "new ticket limit must be greater than 0")
	ErrNewLimitExceedsSupply = newError(KindInvalidArgument, "new ticket limit cannot exceed total tickets")
	ErrEmptyBaseURI          = newError(KindInvalidArgument, "base URI cannot be empty")
)
