package tokenomics

import (
	"testing"

	"aichain-core/chain/types"
)

func TestCreditRejectsUnknownSource(t *testing.T) {
	p := NewRecyclingPool()
	if err := p.Credit(PoolSource("bogus"), types.NewAmount(10)); err == nil {
		t.Error("expected error for unknown pool source")
	}
}

func TestCreditRejectsNegativeAmount(t *testing.T) {
	p := NewRecyclingPool()
	if err := p.Credit(SourceTaskFees, types.AmountFromWei(nil).Sub(types.NewAmount(1))); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestCreditAccumulatesBySource(t *testing.T) {
	p := NewRecyclingPool()
	if err := p.Credit(SourceTaskFees, types.NewAmount(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := p.Credit(SourceTaskFees, types.NewAmount(50)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := p.Credit(SourceSlashingPenalties, types.NewAmount(25)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if p.Balance().Cmp(types.NewAmount(175)) != 0 {
		t.Errorf("expected balance 175, got %s", p.Balance())
	}
	if p.SourceTotal(SourceTaskFees).Cmp(types.NewAmount(150)) != 0 {
		t.Errorf("expected task fee total 150, got %s", p.SourceTotal(SourceTaskFees))
	}
	if p.TotalRecycled().Cmp(types.NewAmount(175)) != 0 {
		t.Errorf("expected total recycled 175, got %s", p.TotalRecycled())
	}
}

func TestAllocatePrefersPoolBeforeMint(t *testing.T) {
	p := NewRecyclingPool()
	if err := p.Credit(SourceTaskFees, types.NewAmount(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	fromPool, fromMint := p.Allocate(types.NewAmount(60))
	if fromPool.Cmp(types.NewAmount(60)) != 0 {
		t.Errorf("expected full allocation from pool, got %s", fromPool)
	}
	if !fromMint.IsZero() {
		t.Errorf("expected zero from mint, got %s", fromMint)
	}
	if p.Balance().Cmp(types.NewAmount(40)) != 0 {
		t.Errorf("expected remaining balance 40, got %s", p.Balance())
	}
}

func TestAllocateFallsBackToMintWhenPoolInsufficient(t *testing.T) {
	p := NewRecyclingPool()
	if err := p.Credit(SourceTaskFees, types.NewAmount(30)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	fromPool, fromMint := p.Allocate(types.NewAmount(100))
	if fromPool.Cmp(types.NewAmount(30)) != 0 {
		t.Errorf("expected 30 from pool, got %s", fromPool)
	}
	if fromMint.Cmp(types.NewAmount(70)) != 0 {
		t.Errorf("expected 70 from mint, got %s", fromMint)
	}
	if !p.Balance().IsZero() {
		t.Errorf("expected pool drained to zero, got %s", p.Balance())
	}
	if p.TotalAllocated().Cmp(types.NewAmount(30)) != 0 {
		t.Errorf("expected total allocated 30, got %s", p.TotalAllocated())
	}
}
