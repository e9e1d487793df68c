package ledger

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/ardanlabs/ballot/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together and linked to
// the block before it.
type Block struct {
	Previous     string        `json:"previous"`     // Hash of the previous block in the chain.
	TimeStamp    int64         `json:"timestamp"`    // Unix seconds the block was committed.
	Transactions []Transaction `json:"transactions"` // Transactions in admission order.
	Hash         string        `json:"hash"`         // Hash over the fields above, fixed at construction.
}

// NewBlock constructs a block and fixes its hash.
func NewBlock(previous string, timestamp int64, trans []Transaction) Block {
	b := Block{
		Previous:     previous,
		TimeStamp:    timestamp,
		Transactions: append([]Transaction{}, trans...),
	}
	b.Hash = b.CalculateHash()

	return b
}

// CalculateHash recomputes the hash over the block's current contents. A block
// whose Hash differs from this value has been tampered with.
func (b Block) CalculateHash() string {
	return signature.Hash(b.Previous + strconv.FormatInt(b.TimeStamp, 10) + encodeTransactions(b.Transactions))
}

// IsValid reports whether every transaction in the block validates. A
// transaction that errors during validation makes the block invalid.
func (b Block) IsValid() bool {
	for _, tx := range b.Transactions {
		ok, err := tx.IsValid()
		if err != nil || !ok {
			return false
		}
	}

	return true
}

// =============================================================================

// encodeTransactions produces the compact, order preserving JSON encoding of
// the transactions that feeds the block hash.
func encodeTransactions(trans []Transaction) string {
	if trans == nil {
		trans = []Transaction{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Transactions only hold strings and integers so this can't fail.
	if err := enc.Encode(trans); err != nil {
		return ""
	}

	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
