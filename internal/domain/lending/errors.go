package lending

import (
	"errors"

	"github.com/clinicore/backend/internal/domain/shared"
)

// Error codes for the lending domain
const (
	CodeInvalidTerms             = "INVALID_TERMS"
	CodeInvalidPaymentAmount     = "INVALID_PAYMENT_AMOUNT"
	CodeTransactionAlreadyLinked = "TRANSACTION_ALREADY_LINKED"
	CodeScheduleAlreadyLinked    = "SCHEDULE_ALREADY_LINKED"
	CodeRegenerationConflict     = "REGENERATION_CONFLICT"
	CodeLoanNotFound             = "LOAN_NOT_FOUND"
	CodeScheduleNotFound         = "SCHEDULE_NOT_FOUND"
)

// Common lending errors. Operations that need more context build their own
// DomainError with the same code.
var (
	ErrLoanNotFound     = shared.NewDomainError(CodeLoanNotFound, "Loan not found")
	ErrScheduleNotFound = shared.NewDomainError(CodeScheduleNotFound, "Loan schedule not found")
)

// NewInvalidTermsError creates an INVALID_TERMS error with a specific message
func NewInvalidTermsError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidTerms, message)
}

// NewInvalidPaymentAmountError creates an INVALID_PAYMENT_AMOUNT error
func NewInvalidPaymentAmountError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidPaymentAmount, message)
}

// NewTransactionAlreadyLinkedError creates a TRANSACTION_ALREADY_LINKED error
func NewTransactionAlreadyLinkedError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeTransactionAlreadyLinked, message)
}

// NewRegenerationConflictError creates a REGENERATION_CONFLICT error
func NewRegenerationConflictError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeRegenerationConflict, message)
}

// HasCode reports whether err is a DomainError carrying the given code
func HasCode(err error, code string) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
