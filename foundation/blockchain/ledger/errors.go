package ledger

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ballot/foundation/blockchain/signature"
)

// Set of errors that are returned by the ledger.
var (
	ErrSigning             = errors.New("key cannot sign transactions for this address")
	ErrEmptyChain          = errors.New("chain has no blocks")
	ErrTransactionNotFound = errors.New("transaction not found in a committed block")
	ErrInvalidAddress      = errors.New("address is not valid utf-8")
)

// ValidationError is returned when a transaction's signature data is missing
// or can't be decoded.
type ValidationError = signature.ValidationError

// =============================================================================

// Reason identifies the business rule a rejected transaction broke.
type Reason string

// Set of reasons a transaction is rejected by AddTransaction.
const (
	ReasonVoidAddress     Reason = "invalid to or from address"
	ReasonEncoding        Reason = "to or from address is not valid utf-8"
	ReasonInvalid         Reason = "transaction not valid"
	ReasonAmount          Reason = "transaction amount should be greater than zero"
	ReasonInsufficient    Reason = "insufficient balance"
	ReasonPendingExceeded Reason = "pending transaction amount exceeded"
)

// TransactionError represents a transaction that was refused admission.
type TransactionError struct {
	Reason Reason
	Err    error
}

// Error implements the error interface.
func (te *TransactionError) Error() string {
	if te.Err != nil {
		return fmt.Sprintf("invalid transaction: %s: %s", te.Reason, te.Err)
	}
	return fmt.Sprintf("invalid transaction: %s", te.Reason)
}

// Unwrap returns the cause of the rejection if there is one.
func (te *TransactionError) Unwrap() error {
	return te.Err
}

// IsTransactionError checks if an error of type TransactionError exists.
func IsTransactionError(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}

// rejected constructs a TransactionError for the reason.
func rejected(reason Reason, err error) error {
	return &TransactionError{Reason: reason, Err: err}
}
