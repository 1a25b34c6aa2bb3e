package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation             = errors.New("validation failed")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrPersistence            = errors.New("persistence failed")
	ErrConcurrentModification = errors.New("loan was modified concurrently")
	ErrCurrencyMismatch       = errors.New("currency does not match loan currency")
	ErrOverpayment            = errors.New("repayment exceeds outstanding amount")
	ErrDebitCardNotFound      = errors.New("debit card not found")
	ErrTransactionNotFound    = errors.New("debit card transaction not found")
	ErrForbidden              = errors.New("resource belongs to another user")
	ErrDebitCardInUse         = errors.New("debit card has transactions")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeLoanNotFound           = "LOAN_NOT_FOUND"
	ErrCodeCurrencyMismatch       = "CURRENCY_MISMATCH"
	ErrCodeOverpayment            = "OVERPAYMENT"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeCacheError             = "CACHE_ERROR"
	ErrCodeDebitCardNotFound      = "DEBIT_CARD_NOT_FOUND"
	ErrCodeTransactionNotFound    = "DEBIT_CARD_TRANSACTION_NOT_FOUND"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeDebitCardHasTxns       = "DEBIT_CARD_HAS_TRANSACTIONS"
)

// joined keeps both the taxonomy sentinel and the underlying cause reachable via errors.Is.
type joined struct {
	kind  error
	cause error
}

func (j *joined) Error() string   { return j.cause.Error() }
func (j *joined) Unwrap() []error { return []error{j.kind, j.cause} }

func withKind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &joined{kind: kind, cause: cause}
}

// WrapValidation reports malformed caller input
func WrapValidation(format string, args ...any) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf(format, args...),
		ErrValidation,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapDebitCardNotFound(cardID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDebitCardNotFound,
		fmt.Sprintf("Debit card with ID %s not found", cardID),
		ErrDebitCardNotFound,
	)
}

func WrapTransactionNotFound(transactionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeTransactionNotFound,
		fmt.Sprintf("Debit card transaction with ID %s not found", transactionID),
		ErrTransactionNotFound,
	)
}

// WrapForbidden reports access to another user's debit card. The message never names the owner.
func WrapForbidden(cardID string) *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		fmt.Sprintf("Debit card %s is not accessible", cardID),
		ErrForbidden,
	)
}

func WrapDebitCardHasTransactions(cardID string, count int) *BusinessError {
	return NewBusinessError(
		ErrCodeDebitCardHasTxns,
		fmt.Sprintf("Debit card %s has %d transactions and cannot be deleted", cardID, count),
		withKind(ErrForbidden, ErrDebitCardInUse),
	)
}

func WrapCurrencyMismatch(expected, actual string) *BusinessError {
	return NewBusinessError(
		ErrCodeCurrencyMismatch,
		fmt.Sprintf("Repayment currency %s does not match loan currency %s", actual, expected),
		withKind(ErrValidation, ErrCurrencyMismatch),
	)
}

func WrapOverpayment(amount, outstanding int64) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpayment,
		fmt.Sprintf("Repayment amount %d exceeds outstanding due amount %d", amount, outstanding),
		withKind(ErrValidation, ErrOverpayment),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		withKind(ErrPersistence, err),
	)
}

func WrapConcurrentModification(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		"record is being updated by another request, retry later",
		withKind(ErrConcurrentModification, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// Code extracts the business error code, or "" if err carries none
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
