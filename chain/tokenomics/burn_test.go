package tokenomics

import (
	"testing"

	"aichain-core/chain/types"
)

func TestBurnUnmetQuotaNoneAtOrAboveThreshold(t *testing.T) {
	b := NewBurnManager()
	burned, err := b.BurnUnmetQuota(types.NewAmount(1000), 6000, 5000)
	if err != nil {
		t.Fatalf("burn unmet quota: %v", err)
	}
	if !burned.IsZero() {
		t.Errorf("expected zero burn when quality meets threshold, got %s", burned)
	}
}

func TestBurnUnmetQuotaProportionalToDeficit(t *testing.T) {
	b := NewBurnManager()
	burned, err := b.BurnUnmetQuota(types.NewAmount(1000), 0, 5000)
	if err != nil {
		t.Fatalf("burn unmet quota: %v", err)
	}
	if burned.Cmp(types.NewAmount(500)) != 0 {
		t.Errorf("expected 50%% burned at zero quality with 5000 bps threshold, got %s", burned)
	}
	if b.BurnedFor(ReasonUnmetQuota).Cmp(burned) != 0 {
		t.Errorf("expected BurnedFor to track the recorded amount")
	}
}

func TestBurnUnmetQuotaRejectsOutOfRangeBPS(t *testing.T) {
	b := NewBurnManager()
	if _, err := b.BurnUnmetQuota(types.NewAmount(1), 10_001, 5000); err == nil {
		t.Error("expected error for quality bps over 10000")
	}
}

func TestBurnTransactionFees(t *testing.T) {
	b := NewBurnManager()
	burned, err := b.BurnTransactionFees(types.NewAmount(100), 5000)
	if err != nil {
		t.Fatalf("burn tx fees: %v", err)
	}
	if burned.Cmp(types.NewAmount(50)) != 0 {
		t.Errorf("expected 50 burned, got %s", burned)
	}
}

func TestBurnTransactionFeesRejectsNegativeFee(t *testing.T) {
	b := NewBurnManager()
	negative := types.ZeroAmount().Sub(types.NewAmount(1))
	if _, err := b.BurnTransactionFees(negative, 1000); err == nil {
		t.Error("expected error for negative fee")
	}
}

func TestBurnQualityPenaltyAccumulates(t *testing.T) {
	b := NewBurnManager()
	if err := b.BurnQualityPenalty(types.NewAmount(10)); err != nil {
		t.Fatalf("burn quality penalty: %v", err)
	}
	if err := b.BurnQualityPenalty(types.NewAmount(5)); err != nil {
		t.Fatalf("burn quality penalty: %v", err)
	}
	if b.BurnedFor(ReasonQualityPenalty).Cmp(types.NewAmount(15)) != 0 {
		t.Errorf("expected 15 accumulated, got %s", b.BurnedFor(ReasonQualityPenalty))
	}
}

func TestTotalBurnedSumsAllReasons(t *testing.T) {
	b := NewBurnManager()
	if _, err := b.BurnTransactionFees(types.NewAmount(100), 5000); err != nil {
		t.Fatalf("burn tx fees: %v", err)
	}
	if _, err := b.BurnUnmetQuota(types.NewAmount(1000), 0, 5000); err != nil {
		t.Fatalf("burn unmet quota: %v", err)
	}
	want := types.NewAmount(50).Add(types.NewAmount(500))
	if b.TotalBurned().Cmp(want) != 0 {
		t.Errorf("expected total burned %s, got %s", want, b.TotalBurned())
	}
}
