package ledger

import (
	"crypto/ed25519"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/ballot/foundation/blockchain/signature"
)

// Transaction is the transfer of value between two addresses. A vote is a
// transaction of one unit from the voter to the candidate.
type Transaction struct {
	From      string  `json:"from"`      // Address of the sender, the base64 public key.
	To        string  `json:"to"`        // Address receiving the value.
	Amount    int64   `json:"amount"`    // Units of value transferred.
	TimeStamp int64   `json:"timestamp"` // Unix seconds the transaction was created.
	Signature *string `json:"signature"` // Base64 signature over Hash, nil until signed.
}

// NewTransaction constructs an unsigned transaction stamped with the current
// time. The amount is checked on admission, not here.
func NewTransaction(from string, to string, amount int64) Transaction {
	return Transaction{
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: time.Now().UTC().Unix(),
	}
}

// Hash returns the unique hash for the transaction. The signature is not
// part of the hash.
func (tx Transaction) Hash() string {
	return signature.Hash(tx.From + tx.To + strconv.FormatInt(tx.Amount, 10) + strconv.FormatInt(tx.TimeStamp, 10))
}

// Sign uses the specified private key to sign the transaction. The key must
// belong to the from address.
func (tx *Transaction) Sign(privateKey ed25519.PrivateKey) error {
	if len(privateKey) != ed25519.PrivateKeySize {
		return ErrSigning
	}

	address := signature.Address(privateKey.Public().(ed25519.PublicKey))
	if address != tx.From {
		return ErrSigning
	}

	sig := signature.Sign(privateKey, tx.Hash())
	tx.Signature = &sig

	return nil
}

// IsValid verifies the signature belongs to the from address and covers the
// transaction data. Mint transactions from the void address are always valid.
func (tx Transaction) IsValid() (bool, error) {
	if tx.From == VoidAddress {
		return true, nil
	}

	if tx.Signature == nil {
		return false, &ValidationError{Field: "signature", Err: fmt.Errorf("empty signature")}
	}

	return signature.Verify(tx.From, tx.Hash(), *tx.Signature)
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.From, tx.To, tx.Amount)
}
