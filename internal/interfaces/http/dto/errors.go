package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Lending domain error codes, as emitted by domain and application services
const (
	// ErrCodeInvalidTerms is used when loan terms fail validation
	ErrCodeInvalidTerms = "INVALID_TERMS"
	// ErrCodeInvalidPaymentAmount is used when a payment amount is not acceptable
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	// ErrCodeTransactionAlreadyLinked is used when a ledger transaction is already bound
	ErrCodeTransactionAlreadyLinked = "TRANSACTION_ALREADY_LINKED"
	// ErrCodeScheduleAlreadyLinked is used when an installment already carries a payment
	ErrCodeScheduleAlreadyLinked = "SCHEDULE_ALREADY_LINKED"
	// ErrCodeRegenerationConflict is used when regeneration detects a concurrent payment link
	ErrCodeRegenerationConflict = "REGENERATION_CONFLICT"
	// ErrCodeLoanNotFound is used when a loan does not exist
	ErrCodeLoanNotFound = "LOAN_NOT_FOUND"
	// ErrCodeScheduleNotFound is used when a schedule row does not exist
	ErrCodeScheduleNotFound = "SCHEDULE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	// Term and payment validation failures -> 422 Unprocessable Entity
	ErrCodeInvalidTerms:         http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentAmount: http.StatusUnprocessableEntity,

	// Linking conflicts -> 409 Conflict
	ErrCodeTransactionAlreadyLinked: http.StatusConflict,
	ErrCodeScheduleAlreadyLinked:    http.StatusConflict,
	ErrCodeRegenerationConflict:     http.StatusConflict,

	// Missing resources -> 404 Not Found
	ErrCodeLoanNotFound:     http.StatusNotFound,
	ErrCodeScheduleNotFound: http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
