package core

import "testing"

func TestCommitmentTreeEmptyRootIsDefault(t *testing.T) {
	tree := NewCommitmentTree(4)
	if got := tree.Root(); !got.Equal(tree.defaults[tree.depth]) {
		t.Fatalf("empty tree root does not match cached default")
	}
}

func TestCommitmentTreeAppendChangesRoot(t *testing.T) {
	tree := NewCommitmentTree(4)
	before := tree.Root()
	leaf := FieldFromUint64(7)
	index, after, err := tree.Append(leaf)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if index != 0 {
		t.Fatalf("expected first leaf index 0, got %d", index)
	}
	if before.Equal(after) {
		t.Fatalf("root did not change after append")
	}
	if got := tree.Root(); !got.Equal(after) {
		t.Fatalf("tree.Root() out of sync with Append's return value")
	}
}

func TestCommitmentTreeAuthenticationPathVerifies(t *testing.T) {
	tree := NewCommitmentTree(4)
	leaves := []F{FieldFromUint64(1), FieldFromUint64(2), FieldFromUint64(3), FieldFromUint64(4)}
	if _, err := tree.Extend(leaves); err != nil {
		t.Fatalf("extend: %v", err)
	}
	root := tree.Root()
	for i, leaf := range leaves {
		path, ok := tree.AuthenticationPath(uint64(i))
		if !ok {
			t.Fatalf("no authentication path for index %d", i)
		}
		if len(path) != int(tree.Depth()) {
			t.Fatalf("path length = %d, want %d", len(path), tree.Depth())
		}
		if !VerifyAuthenticationPath(root, leaf, path, uint64(i)) {
			t.Fatalf("authentication path for index %d failed to verify", i)
		}
	}
}

func TestCommitmentTreeAuthenticationPathUnknownIndex(t *testing.T) {
	tree := NewCommitmentTree(4)
	if _, _, err := tree.Append(FieldFromUint64(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, ok := tree.AuthenticationPath(5); ok {
		t.Fatalf("expected no path for an index never appended")
	}
}

func TestCommitmentTreeFullRejectsFurtherAppends(t *testing.T) {
	tree := NewCommitmentTree(2)
	for i := 0; i < 4; i++ {
		if _, _, err := tree.Append(FieldFromUint64(uint64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if _, _, err := tree.Append(FieldFromUint64(99)); err != ErrTreeFull {
		t.Fatalf("expected ErrTreeFull, got %v", err)
	}
}

func TestVerifyAuthenticationPathRejectsWrongLeaf(t *testing.T) {
	tree := NewCommitmentTree(4)
	if _, err := tree.Extend([]F{FieldFromUint64(1), FieldFromUint64(2)}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	root := tree.Root()
	path, ok := tree.AuthenticationPath(0)
	if !ok {
		t.Fatalf("expected path for index 0")
	}
	if VerifyAuthenticationPath(root, FieldFromUint64(999), path, 0) {
		t.Fatalf("expected verification to fail for substituted leaf")
	}
}
