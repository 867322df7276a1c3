package core

// CommitmentTree is an append-only binary Merkle tree over field elements.
// It generalizes this repository's original sha256-based
// BuildMerkleTree/MerkleProof/VerifyMerklePath trio: same append-and-prove
// shape, now hashing F leaves with the sponge of sponge.go and maintaining
// every level incrementally instead of rebuilding the whole tree per query.
//
// Depth D is a consensus constant shared with the proving circuit; a
// mismatch between the two is a consensus break, not a recoverable error.

import (
	"fmt"
	"sync"
)

// ErrTreeFull is returned by Append once the tree has reached 2^D leaves.
var ErrTreeFull = fmt.Errorf("commitment tree: full")

// CommitmentTree holds every computed node, level by level, so that an
// authentication path for any previously appended leaf can be produced in
// O(depth) without recomputation. levels[0] is the leaf level; levels[depth]
// is empty until the first append and from then on holds exactly one
// element: the current root.
type CommitmentTree struct {
	mu       sync.RWMutex
	depth    uint8
	size     uint64
	levels   [][]F
	defaults []F // defaults[l] is the hash of an empty subtree of height l
}

// NewCommitmentTree constructs an empty tree of the given depth. The empty
// root is the sponge of the all-zero default node folded up the tree; it is
// computed once here and reused for every uninstantiated sibling.
func NewCommitmentTree(depth uint8) *CommitmentTree {
	defaults := make([]F, depth+1)
	defaults[0] = F{}
	for l := uint8(0); l < depth; l++ {
		defaults[l+1] = merkleNode(defaults[l], defaults[l])
	}
	return &CommitmentTree{
		depth:    depth,
		levels:   make([][]F, depth+1),
		defaults: defaults,
	}
}

// Depth returns the tree's fixed depth D.
func (t *CommitmentTree) Depth() uint8 { return t.depth }

// LeafCount returns the number of leaves appended so far.
func (t *CommitmentTree) LeafCount() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Root returns the current root of the tree.
func (t *CommitmentTree) Root() F {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootLocked()
}

func (t *CommitmentTree) rootLocked() F {
	if t.size == 0 {
		return t.defaults[t.depth]
	}
	return t.levels[t.depth][0]
}

// Append extends the leaf sequence by one and updates every ancestor on its
// path in O(D) sponge calls, returning the new leaf's index and the
// resulting root. It fails with ErrTreeFull once 2^D leaves are stored.
func (t *CommitmentTree) Append(leaf F) (uint64, F, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.size >= uint64(1)<<t.depth {
		return 0, F{}, ErrTreeFull
	}

	index := t.size
	t.levels[0] = append(t.levels[0], leaf)

	idx := index
	for level := uint8(0); level < t.depth; level++ {
		var left, right F
		if idx%2 == 0 {
			left = t.levels[level][idx]
			right = t.siblingOrDefault(level, idx+1)
		} else {
			left = t.siblingOrDefault(level, idx-1)
			right = t.levels[level][idx]
		}
		parent := merkleNode(left, right)
		parentIdx := idx / 2
		if parentIdx < uint64(len(t.levels[level+1])) {
			t.levels[level+1][parentIdx] = parent
		} else {
			t.levels[level+1] = append(t.levels[level+1], parent)
		}
		idx = parentIdx
	}
	t.size++
	return index, t.rootLocked(), nil
}

// siblingOrDefault returns the already-computed node at (level, idx) or, if
// that position has not been appended yet, the cached default hash for an
// empty subtree of that height.
func (t *CommitmentTree) siblingOrDefault(level uint8, idx uint64) F {
	if idx < uint64(len(t.levels[level])) {
		return t.levels[level][idx]
	}
	return t.defaults[level]
}

// Extend appends a batch of leaves in order, returning the root produced
// after each one. It is semantically equivalent to calling Append in a loop.
func (t *CommitmentTree) Extend(leaves []F) ([]F, error) {
	roots := make([]F, 0, len(leaves))
	for _, leaf := range leaves {
		_, root, err := t.Append(leaf)
		if err != nil {
			return roots, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// AuthenticationPath returns the sibling chain from the leaf at index up to
// the root, ordered leaf-to-root. It reports false if the index was never
// appended. The returned slice always has length exactly Depth().
func (t *CommitmentTree) AuthenticationPath(index uint64) ([]F, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if index >= t.size {
		return nil, false
	}

	path := make([]F, t.depth)
	idx := index
	for level := uint8(0); level < t.depth; level++ {
		path[level] = t.siblingOrDefault(level, idx^1)
		idx /= 2
	}
	return path, true
}

// treeCheckpoint captures enough of a tree's state to undo every Append
// made since it was taken. Because the tree fills strictly left to right,
// Append can only ever create a brand new entry past the end of a level or
// overwrite that level's current last entry — it never touches anything
// else — so recording each level's length and last value is sufficient to
// reconstruct the exact prior state.
type treeCheckpoint struct {
	size  uint64
	lens  []int
	tails []F
}

// checkpoint records the tree's current state for a later restore.
func (t *CommitmentTree) checkpoint() treeCheckpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := treeCheckpoint{size: t.size, lens: make([]int, len(t.levels)), tails: make([]F, len(t.levels))}
	for l, level := range t.levels {
		cp.lens[l] = len(level)
		if len(level) > 0 {
			cp.tails[l] = level[len(level)-1]
		}
	}
	return cp
}

// restore reverts the tree to the state captured by cp, undoing any Append
// calls made since.
func (t *CommitmentTree) restore(cp treeCheckpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for l := range t.levels {
		t.levels[l] = t.levels[l][:cp.lens[l]]
		if cp.lens[l] > 0 {
			t.levels[l][cp.lens[l]-1] = cp.tails[l]
		}
	}
	t.size = cp.size
}

// VerifyAuthenticationPath recomputes the root from a leaf and its sibling
// chain and reports whether it matches the provided root. Index bit i
// selects whether path[i] is the left or right sibling at that level.
func VerifyAuthenticationPath(root, leaf F, path []F, index uint64) bool {
	node := leaf
	idx := index
	for _, sibling := range path {
		if idx%2 == 0 {
			node = merkleNode(node, sibling)
		} else {
			node = merkleNode(sibling, node)
		}
		idx /= 2
	}
	return node.Equal(root)
}
