package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the transport layer can map it to a
// status code without inspecting message text.
type ErrorKind string

const (
	KindValidation               ErrorKind = "VALIDATION"
	KindInvalidFormat            ErrorKind = "INVALID_FORMAT"
	KindNotFound                 ErrorKind = "NOT_FOUND"
	KindUnknownAssignee          ErrorKind = "UNKNOWN_ASSIGNEE"
	KindInvalidTransition        ErrorKind = "INVALID_TRANSITION"
	KindDuplicateActiveQuotation ErrorKind = "DUPLICATE_ACTIVE_QUOTATION"
	KindExpired                  ErrorKind = "EXPIRED"
	KindAlreadyPaid              ErrorKind = "ALREADY_PAID"
	KindAlreadyIssued            ErrorKind = "ALREADY_ISSUED"
	KindNotEligible              ErrorKind = "NOT_ELIGIBLE"
	KindNotDeletable             ErrorKind = "NOT_DELETABLE"
	KindConflict                 ErrorKind = "CONFLICT"
	KindForbidden                ErrorKind = "FORBIDDEN"
	KindUnauthorized             ErrorKind = "UNAUTHORIZED"
)

// DomainError is the error type surfaced by domain and application code.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// KindOf extracts the ErrorKind from an error chain, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewInvalidFormatError creates an error for malformed input such as a bad PNR code.
func NewInvalidFormatError(message string) *DomainError {
	return &DomainError{Kind: KindInvalidFormat, Message: message}
}

// NewNotFoundError creates an error for an unknown entity ID.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewUnknownAssigneeError creates an error for an invalid route controller assignment.
func NewUnknownAssigneeError(username string) *DomainError {
	return &DomainError{
		Kind:    KindUnknownAssignee,
		Message: fmt.Sprintf("%q is not an enabled route controller", username),
	}
}

// NewInvalidTransitionError creates an error for an operation not legal from the current state.
func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewDuplicateActiveQuotationError creates an error for a second active quotation on a request.
func NewDuplicateActiveQuotationError(requestID string) *DomainError {
	return &DomainError{
		Kind:    KindDuplicateActiveQuotation,
		Message: fmt.Sprintf("group request %s already has an active quotation", requestID),
	}
}

// NewExpiredError creates a time-based precondition error.
func NewExpiredError(message string) *DomainError {
	return &DomainError{Kind: KindExpired, Message: message}
}

// NewAlreadyPaidError creates an idempotency-guard error for a paid payment.
func NewAlreadyPaidError(paymentID string) *DomainError {
	return &DomainError{Kind: KindAlreadyPaid, Message: fmt.Sprintf("payment %s is already paid", paymentID)}
}

// NewAlreadyIssuedError creates an idempotency-guard error for an issued PNR.
func NewAlreadyIssuedError(requestID string) *DomainError {
	return &DomainError{
		Kind:    KindAlreadyIssued,
		Message: fmt.Sprintf("a PNR is already recorded for group request %s", requestID),
	}
}

// NewNotEligibleError creates a cross-entity precondition error.
func NewNotEligibleError(message string) *DomainError {
	return &DomainError{Kind: KindNotEligible, Message: message}
}

// NewNotDeletableError creates a deletion precondition error.
func NewNotDeletableError(requestID, status string) *DomainError {
	return &DomainError{
		Kind:    KindNotDeletable,
		Message: fmt.Sprintf("group request %s cannot be deleted in status %s", requestID, status),
	}
}

// NewConflictError creates a concurrent-modification error.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates a role-gate error.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError creates an authentication error.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Message: message}
}
