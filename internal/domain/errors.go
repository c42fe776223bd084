package domain

import "errors"

type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindConflict   ErrorKind = "CONFLICT"
	KindDependency ErrorKind = "DEPENDENCY"
	KindIntegrity  ErrorKind = "INTEGRITY"
	KindNotFound   ErrorKind = "NOT_FOUND"
)

// Error is a business failure that callers can render without inspecting text.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	ErrNotFound  = NewError(KindNotFound, "NOT_FOUND", "record not found")
	ErrDuplicate = NewError(KindConflict, "DUPLICATE", "record already exists")

	ErrInvalidAmount      = NewError(KindValidation, "INVALID_AMOUNT", "amount must be positive")
	ErrInvalidQuantity    = NewError(KindValidation, "INVALID_QUANTITY", "quantity must be at least 1")
	ErrInvalidOrderNumber = NewError(KindValidation, "INVALID_ORDER_NUMBER", "invalid order number")
	ErrEmptyCart          = NewError(KindValidation, "EMPTY_CART", "cart has no items")
	ErrUnknownProduct     = NewError(KindValidation, "UNKNOWN_PRODUCT", "product does not exist")
	ErrUnknownSponsor     = NewError(KindValidation, "UNKNOWN_SPONSOR", "sponsor does not exist")
	ErrUnknownSeller      = NewError(KindValidation, "UNKNOWN_SELLER", "seller does not exist")
	ErrReasonRequired     = NewError(KindValidation, "REASON_REQUIRED", "rejection reason is required")
	ErrNoteRequired       = NewError(KindValidation, "NOTE_REQUIRED", "payment note is required")
	ErrSourceRequired     = NewError(KindValidation, "SOURCE_REQUIRED", "transaction source is required")
	ErrNotEligible        = NewError(KindValidation, "NOT_ELIGIBLE", "item is not eligible for commission")
	ErrWeakPassword       = NewError(KindValidation, "WEAK_PASSWORD", "password must be at least 8 characters")

	ErrInsufficientBalance = NewError(KindConflict, "INSUFFICIENT_BALANCE", "insufficient balance")
	ErrAlreadyProcessed    = NewError(KindConflict, "ALREADY_PROCESSED", "request already processed")
	ErrPaymentNotCompleted = NewError(KindConflict, "PAYMENT_NOT_COMPLETED", "payment is not completed")
	ErrAlreadyPaid         = NewError(KindConflict, "ALREADY_PAID", "order is already paid")
	ErrPaymentClosed       = NewError(KindConflict, "PAYMENT_CLOSED", "payment was cancelled")
	ErrNotConvertible      = NewError(KindConflict, "NOT_CONVERTIBLE", "order cannot be converted in its current state")
	ErrLocked              = NewError(KindConflict, "LOCKED", "resource is being processed, try again")

	ErrUnknownUser    = NewError(KindIntegrity, "UNKNOWN_USER", "referenced user no longer exists")
	ErrMissingProduct = NewError(KindIntegrity, "MISSING_PRODUCT", "referenced product no longer exists")

	ErrGateway = NewError(KindDependency, "GATEWAY_ERROR", "payment gateway unavailable")
)
