package domain

import "fmt"

// ErrorKind classifies a domain error so the transport layer can map it to a
// response without inspecting message text.
type ErrorKind string

const (
	KindValidationFailed    ErrorKind = "validation_failed"
	KindDatesUnavailable    ErrorKind = "dates_unavailable"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindInvalidStatus       ErrorKind = "invalid_status"
	KindNotFound            ErrorKind = "not_found"
	KindAlreadyUnavailable  ErrorKind = "already_unavailable"
	KindPricingUnavailable  ErrorKind = "pricing_unavailable"
	KindStorageConflict     ErrorKind = "storage_conflict"
	KindConflict            ErrorKind = "conflict"
	KindForbidden           ErrorKind = "forbidden"
)

// Error is the domain error type returned by every core operation. It carries
// the kind plus the offending resource/field so callers can render a response.
type Error struct {
	Kind     ErrorKind
	Message  string
	Resource string
	Field    string
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Resource)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*Error)
	return ok && de.Kind == kind
}

// KindOf returns the kind of a domain error, or "" for any other error.
func KindOf(err error) ErrorKind {
	if de, ok := err.(*Error); ok {
		return de.Kind
	}
	return ""
}

// NewValidationError reports malformed caller input. No side effects were attempted.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message}
}

// NewFieldValidationError reports malformed caller input on a specific field.
func NewFieldValidationError(field, message string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Field: field}
}

// NewDatesUnavailableError reports that the requested interval is already blocked.
func NewDatesUnavailableError(resourceID string) *Error {
	return &Error{Kind: KindDatesUnavailable, Message: "requested dates are not available", Resource: resourceID}
}

// NewProviderUnavailableError reports that the provider is booked for the requested slot.
func NewProviderUnavailableError(providerID string) *Error {
	return &Error{Kind: KindProviderUnavailable, Message: "provider is not available at the requested time", Resource: providerID}
}

// NewInvalidTransitionError reports a status change the state machine forbids.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInvalidStatusError reports a status value outside the enumerated set.
func NewInvalidStatusError(status string) *Error {
	return &Error{Kind: KindInvalidStatus, Message: fmt.Sprintf("invalid booking status: %s", status)}
}

// NewNotFoundError reports an absent entity.
func NewNotFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Resource: id}
}

// NewAlreadyUnavailableError reports a host block attempt on occupied dates.
func NewAlreadyUnavailableError(resourceID string) *Error {
	return &Error{Kind: KindAlreadyUnavailable, Message: "dates are already unavailable", Resource: resourceID}
}

// NewPricingUnavailableError reports a pricing collaborator failure.
func NewPricingUnavailableError(message string) *Error {
	return &Error{Kind: KindPricingUnavailable, Message: message}
}

// NewStorageConflictError reports a transactional or constraint conflict detected
// at commit time. This is the one kind a caller may reasonably retry.
func NewStorageConflictError(message string) *Error {
	return &Error{Kind: KindStorageConflict, Message: message}
}

// NewConflictError reports a concurrent modification (optimistic lock failure).
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError reports an operation on an entity the actor does not own.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}
