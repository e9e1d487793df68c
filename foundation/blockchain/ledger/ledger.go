// Package ledger implements the append only ledger used to record and tally
// votes. A ledger is a plain value: it holds no locks, performs no I/O and is
// persisted by its owner through Serialize and Deserialize.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// VoidAddress is the sender of every mint transaction. Users can't send to or
// from it.
const VoidAddress = "0000000000000000"

// VoidHash is the previous hash recorded on the genesis block.
const VoidHash = "0000000000000000"

// MaxPending is the number of transactions buffered before they are committed
// into a new block.
const MaxPending = 10

// =============================================================================

// Ledger manages the chain of committed blocks and the buffer of transactions
// waiting to be committed. It is not safe for concurrent use.
type Ledger struct {
	chain   []Block
	pending []Transaction
}

// New constructs a ledger whose genesis block mints one unit to each of the
// registered addresses, in the order provided. Addresses must be valid
// utf-8 so the chain survives being serialized.
func New(addresses []string) (*Ledger, error) {
	for _, address := range addresses {
		if !utf8.ValidString(address) {
			return nil, fmt.Errorf("address %q: %w", address, ErrInvalidAddress)
		}
	}

	l := Ledger{
		chain: []Block{newGenesis(addresses)},
	}

	return &l, nil
}

// FromString constructs a ledger from a previously serialized chain.
func FromString(s string) (*Ledger, error) {
	var l Ledger
	if err := l.Deserialize(s); err != nil {
		return nil, err
	}

	return &l, nil
}

// newGenesis constructs the genesis block for the addresses. Everything in
// the block is fixed so it can be reproduced for an audit.
func newGenesis(addresses []string) Block {
	trans := make([]Transaction, len(addresses))
	for i, address := range addresses {
		trans[i] = Transaction{
			From:   VoidAddress,
			To:     address,
			Amount: 1,
		}
	}

	return NewBlock(VoidHash, 0, trans)
}

// LatestBlock returns the last committed block.
func (l *Ledger) LatestBlock() (Block, error) {
	if len(l.chain) == 0 {
		return Block{}, ErrEmptyChain
	}

	return l.chain[len(l.chain)-1], nil
}

// Blocks returns a copy of the committed blocks.
func (l *Ledger) Blocks() []Block {
	blocks := make([]Block, len(l.chain))
	for i, b := range l.chain {
		b.Transactions = append([]Transaction{}, b.Transactions...)
		blocks[i] = b
	}

	return blocks
}

// Pending returns a copy of the transactions waiting to be committed.
func (l *Ledger) Pending() []Transaction {
	return append([]Transaction{}, l.pending...)
}

// AddTransaction validates the transaction and adds it to the pending buffer.
// When the buffer is already full it is committed into a new block first. A
// rejected transaction leaves the ledger untouched.
func (l *Ledger) AddTransaction(tx Transaction) error {
	if tx.From == VoidAddress || tx.To == VoidAddress {
		return rejected(ReasonVoidAddress, nil)
	}

	if !utf8.ValidString(tx.From) || !utf8.ValidString(tx.To) {
		return rejected(ReasonEncoding, ErrInvalidAddress)
	}

	ok, err := tx.IsValid()
	if err != nil {
		return rejected(ReasonInvalid, err)
	}
	if !ok {
		return rejected(ReasonInvalid, nil)
	}

	if tx.Amount <= 0 {
		return rejected(ReasonAmount, nil)
	}

	balance := l.Balance(tx.From)
	if balance < tx.Amount {
		return rejected(ReasonInsufficient, fmt.Errorf("balance %d, needed %d", balance, tx.Amount))
	}

	if len(l.pending) > 0 {
		var total int64
		for _, ptx := range l.pending {
			if ptx.From == tx.From {
				total += ptx.Amount
			}
		}

		if total > balance {
			return rejected(ReasonPendingExceeded, fmt.Errorf("pending %d, balance %d", total, balance))
		}
	}

	if len(l.pending) >= MaxPending {
		l.FlushPending()
	}

	l.pending = append(l.pending, tx)

	return nil
}

// Balance replays every committed transaction and returns what the address
// holds. Pending transactions are not counted until they are committed.
func (l *Ledger) Balance(address string) int64 {
	var balance int64
	for _, b := range l.chain {
		for _, tx := range b.Transactions {
			if tx.From == address {
				balance -= tx.Amount
			}
			if tx.To == address {
				balance += tx.Amount
			}
		}
	}

	return balance
}

// FlushPending commits the pending transactions into a new block linked to the
// latest block and clears the buffer.
func (l *Ledger) FlushPending() {
	if len(l.pending) == 0 || len(l.chain) == 0 {
		return
	}

	latest := l.chain[len(l.chain)-1]
	l.chain = append(l.chain, NewBlock(latest.Hash, time.Now().UTC().Unix(), l.pending))
	l.pending = nil
}

// IsValid audits the whole chain. The genesis block must match the one the
// registered addresses produce, in the same order, and every later block must
// link to its parent, hold valid transactions and carry an untouched hash.
func (l *Ledger) IsValid(addresses []string) bool {
	if len(l.chain) == 0 {
		return false
	}

	if !sameBlock(newGenesis(addresses), l.chain[0]) {
		return false
	}

	for i := 1; i < len(l.chain); i++ {
		prev := l.chain[i-1]
		current := l.chain[i]

		if prev.Hash != current.Previous {
			return false
		}

		if !current.IsValid() {
			return false
		}

		if current.Hash != current.CalculateHash() {
			return false
		}
	}

	return true
}

// Serialize commits any pending transactions and encodes the chain. The
// pending buffer is never part of the output.
func (l *Ledger) Serialize() (string, error) {
	l.FlushPending()

	data, err := json.Marshal(l.chain)
	if err != nil {
		return "", fmt.Errorf("encoding chain: %w", err)
	}

	return string(data), nil
}

// Deserialize replaces the chain with the decoded string. On malformed input
// or an empty chain the ledger is left as it was.
func (l *Ledger) Deserialize(s string) error {
	var chain []Block
	if err := json.Unmarshal([]byte(s), &chain); err != nil {
		return fmt.Errorf("decoding chain: %w", err)
	}

	if len(chain) == 0 {
		return ErrEmptyChain
	}

	l.chain = chain

	return nil
}

// =============================================================================

// sameBlock compares the encoded form of two blocks.
func sameBlock(a Block, b Block) bool {
	ad, err := json.Marshal(a)
	if err != nil {
		return false
	}

	bd, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return bytes.Equal(ad, bd)
}
