package tokenomics

import (
	"testing"

	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

func TestCreateClaimTreeDropsZeroAmounts(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{
		addrA: types.NewAmount(100),
		addrB: types.ZeroAmount(),
	}
	root, err := c.CreateClaimTree(1, rewards)
	if err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	if root.IsZero() {
		t.Error("expected a non-zero root for a non-empty reward set")
	}

	if _, ok := c.GetClaimProof(1, addrB); ok {
		t.Error("expected zero-amount address to be excluded from the tree")
	}
}

func TestCreateClaimTreeEmptyRootIsStable(t *testing.T) {
	c := NewClaimManager()
	root1, err := c.CreateClaimTree(1, nil)
	if err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	root2, err := c.CreateClaimTree(2, map[string]types.Amount{addrA: types.ZeroAmount()})
	if err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	if root1 != root2 {
		t.Error("expected empty reward sets to always root at the same fixed hash")
	}
}

func TestClaimRewardRoundTrip(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{
		addrA: types.NewAmount(100),
		addrB: types.NewAmount(200),
		addrC: types.NewAmount(300),
	}
	if _, err := c.CreateClaimTree(1, rewards); err != nil {
		t.Fatalf("create claim tree: %v", err)
	}

	proof, ok := c.GetClaimProof(1, addrB)
	if !ok {
		t.Fatal("expected proof to be found for addrB")
	}
	if err := c.ClaimReward(1, addrB, types.NewAmount(200), proof); err != nil {
		t.Errorf("expected claim to succeed, got %v", err)
	}
}

func TestClaimRewardRejectsUnknownEpoch(t *testing.T) {
	c := NewClaimManager()
	err := c.ClaimReward(99, addrA, types.NewAmount(1), nil)
	if !coreerr.IsKind(err, coreerr.KindInvalidEpoch) {
		t.Errorf("expected KindInvalidEpoch, got %v", err)
	}
}

func TestClaimRewardRejectsDoubleClaim(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{addrA: types.NewAmount(100)}
	if _, err := c.CreateClaimTree(1, rewards); err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	proof, _ := c.GetClaimProof(1, addrA)

	if err := c.ClaimReward(1, addrA, types.NewAmount(100), proof); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := c.ClaimReward(1, addrA, types.NewAmount(100), proof)
	if !coreerr.IsKind(err, coreerr.KindAlreadyClaimed) {
		t.Errorf("expected KindAlreadyClaimed, got %v", err)
	}
}

func TestClaimRewardRejectsAmountMismatch(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{addrA: types.NewAmount(100)}
	if _, err := c.CreateClaimTree(1, rewards); err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	proof, _ := c.GetClaimProof(1, addrA)

	err := c.ClaimReward(1, addrA, types.NewAmount(999), proof)
	if !coreerr.IsKind(err, coreerr.KindAmountMismatch) {
		t.Errorf("expected KindAmountMismatch, got %v", err)
	}
}

func TestClaimRewardRejectsBadProof(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{
		addrA: types.NewAmount(100),
		addrB: types.NewAmount(200),
	}
	if _, err := c.CreateClaimTree(1, rewards); err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	proofForA, _ := c.GetClaimProof(1, addrA)

	err := c.ClaimReward(1, addrB, types.NewAmount(200), proofForA)
	if !coreerr.IsKind(err, coreerr.KindInvalidProof) {
		t.Errorf("expected KindInvalidProof, got %v", err)
	}
}

func TestRootReturnsStoredRoot(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{addrA: types.NewAmount(100)}
	root, err := c.CreateClaimTree(5, rewards)
	if err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	got, ok := c.Root(5)
	if !ok || got != root {
		t.Errorf("expected stored root %s, got %s (ok=%v)", root.Hex(), got.Hex(), ok)
	}
	if _, ok := c.Root(999); ok {
		t.Error("expected Root to report false for unknown epoch")
	}
}

func TestSingleLeafTreeProofIsEmpty(t *testing.T) {
	c := NewClaimManager()
	rewards := map[string]types.Amount{addrA: types.NewAmount(100)}
	if _, err := c.CreateClaimTree(1, rewards); err != nil {
		t.Fatalf("create claim tree: %v", err)
	}
	proof, ok := c.GetClaimProof(1, addrA)
	if !ok {
		t.Fatal("expected proof to be found")
	}
	if len(proof) != 0 {
		t.Errorf("expected empty proof path for single-leaf tree, got %d entries", len(proof))
	}
	if err := c.ClaimReward(1, addrA, types.NewAmount(100), proof); err != nil {
		t.Errorf("expected single-leaf claim to succeed, got %v", err)
	}
}
