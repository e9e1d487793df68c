// Package merkle provides a merkle tree over the transactions of a block so
// a voter can be handed a proof their vote was committed.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Proof orders. ProofLeft means the proof hash is concatenated first.
const (
	ProofLeft  int64 = 0
	ProofRight int64 = 1
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable interface {
	Hash() ([]byte, error)
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable] struct {
	values       []T
	levels       [][][]byte
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// generate hashes the leafs and builds every level up to the root. An odd
// level duplicates its last hash.
func (t *Tree[T]) generate(values []T) error {
	if len(values) == 0 {
		return errors.New("cannot construct tree with no content")
	}

	leafs := make([][]byte, 0, len(values)+1)
	for _, value := range values {
		h, err := value.Hash()
		if err != nil {
			return err
		}
		leafs = append(leafs, h)
	}

	levels := [][][]byte{leafs}
	for level := leafs; len(level) > 1 || len(levels) == 1; {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
			levels[len(levels)-1] = level
		}

		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			h, err := t.join(level[i], level[i+1])
			if err != nil {
				return err
			}
			next = append(next, h)
		}

		levels = append(levels, next)
		level = next
	}

	t.values = values
	t.levels = levels

	return nil
}

// join hashes the two hashes together in order.
func (t *Tree[T]) join(left []byte, right []byte) ([]byte, error) {
	h := t.hashStrategy()
	if _, err := h.Write(append(append([]byte{}, left...), right...)); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Root returns the merkle root hash.
func (t *Tree[T]) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.Root())
}

// Values returns the values the tree was constructed with.
func (t *Tree[T]) Values() []T {
	return t.values
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving the value at the specified index is in the tree.
//
// Starting from the hash of the value, each step hashes the running hash
// together with the proof hash. Order 0 says the proof comes first, order 1
// says the proof comes second. The final hash must match the merkle root.
func (t *Tree[T]) Proof(index int) ([][]byte, []int64, error) {
	if index < 0 || index >= len(t.values) {
		return nil, nil, fmt.Errorf("index %d out of range, tree has %d values", index, len(t.values))
	}

	var proof [][]byte
	var order []int64

	for _, level := range t.levels[:len(t.levels)-1] {
		if index%2 == 0 {
			proof = append(proof, level[index+1])
			order = append(order, ProofRight)
		} else {
			proof = append(proof, level[index-1])
			order = append(order, ProofLeft)
		}
		index /= 2
	}

	return proof, order, nil
}

// =============================================================================

// VerifyProof walks the proof from the leaf hash and reports whether it
// arrives at the root. The hash strategy must be the one the tree was
// constructed with.
func VerifyProof(leaf []byte, proof [][]byte, order []int64, root []byte, hashStrategy func() hash.Hash) bool {
	if len(proof) != len(order) {
		return false
	}

	current := leaf
	for i, p := range proof {
		var data []byte
		switch order[i] {
		case ProofLeft:
			data = append(append(data, p...), current...)
		case ProofRight:
			data = append(append(data, current...), p...)
		default:
			return false
		}

		h := hashStrategy()
		if _, err := h.Write(data); err != nil {
			return false
		}
		current = h.Sum(nil)
	}

	return bytes.Equal(current, root)
}
