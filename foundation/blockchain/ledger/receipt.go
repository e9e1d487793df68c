package ledger

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ardanlabs/ballot/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Receipt proves a transaction was committed into a block. The merkle root is
// computed over the transaction hashes of the block and is not part of the
// block hash.
type Receipt struct {
	BlockIndex int      `json:"block_index"`
	BlockHash  string   `json:"block_hash"`
	TxHash     string   `json:"tx_hash"`
	MerkleRoot string   `json:"merkle_root"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
}

// Receipt locates the committed transaction with the specified hash and
// returns the proof of its inclusion.
func (l *Ledger) Receipt(txHash string) (Receipt, error) {
	for i, b := range l.chain {
		for j, tx := range b.Transactions {
			if tx.Hash() != txHash {
				continue
			}

			tree, err := merkle.NewTree(leafs(b.Transactions))
			if err != nil {
				return Receipt{}, err
			}

			proof, order, err := tree.Proof(j)
			if err != nil {
				return Receipt{}, err
			}

			hexProof := make([]string, len(proof))
			for k, p := range proof {
				hexProof[k] = hexutil.Encode(p)
			}

			r := Receipt{
				BlockIndex: i,
				BlockHash:  b.Hash,
				TxHash:     txHash,
				MerkleRoot: tree.RootHex(),
				Proof:      hexProof,
				Order:      order,
			}

			return r, nil
		}
	}

	return Receipt{}, ErrTransactionNotFound
}

// Verify walks the proof from the transaction hash and checks it arrives at
// the merkle root.
func (r Receipt) Verify() bool {
	leaf, err := hex.DecodeString(r.TxHash)
	if err != nil {
		return false
	}

	root, err := hexutil.Decode(r.MerkleRoot)
	if err != nil {
		return false
	}

	proof := make([][]byte, len(r.Proof))
	for i, p := range r.Proof {
		if proof[i], err = hexutil.Decode(p); err != nil {
			return false
		}
	}

	return merkle.VerifyProof(leaf, proof, r.Order, root, sha256.New)
}

// =============================================================================

// txLeaf adapts a transaction hash to the merkle Hashable interface.
type txLeaf string

// Hash implements the merkle Hashable interface.
func (l txLeaf) Hash() ([]byte, error) {
	return hex.DecodeString(string(l))
}

func leafs(trans []Transaction) []txLeaf {
	values := make([]txLeaf, len(trans))
	for i, tx := range trans {
		values[i] = txLeaf(tx.Hash())
	}

	return values
}
