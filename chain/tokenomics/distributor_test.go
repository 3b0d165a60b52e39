package tokenomics

import (
	"testing"

	"aichain-core/chain/config"
	"aichain-core/chain/types"
)

const (
	addrA = "0x0000000000000000000000000000000000000001"
	addrB = "0x0000000000000000000000000000000000000002"
	addrC = "0x0000000000000000000000000000000000000003"
)

func testDistributor() *Distributor {
	return NewDistributor(config.DefaultDistributionConfig(), NewRecyclingPool())
}

func TestDistributeEpochRewardsRejectsOutOfRangeScore(t *testing.T) {
	d := testDistributor()
	_, err := d.DistributeEpochRewards(types.NewAmount(1000), map[string]uint32{addrA: 20_000}, nil)
	if err == nil {
		t.Error("expected error for miner score over 10000")
	}
}

func TestDistributeEpochRewardsRejectsNegativeStake(t *testing.T) {
	d := testDistributor()
	negative := types.ZeroAmount().Sub(types.NewAmount(1))
	_, err := d.DistributeEpochRewards(types.NewAmount(1000), nil, map[string]types.Amount{addrA: negative})
	if err == nil {
		t.Error("expected error for negative validator stake")
	}
}

func TestDistributeEpochRewardsAllocatesFromPoolFirst(t *testing.T) {
	pool := NewRecyclingPool()
	if err := pool.Credit(SourceTaskFees, types.NewAmount(1000)); err != nil {
		t.Fatalf("credit pool: %v", err)
	}
	d := NewDistributor(config.DefaultDistributionConfig(), pool)

	result, err := d.DistributeEpochRewards(types.NewAmount(500), map[string]uint32{addrA: 100}, nil)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.FromPool.Cmp(types.NewAmount(500)) != 0 {
		t.Errorf("expected full allocation from pool, got %s", result.FromPool)
	}
	if !result.FromMint.IsZero() {
		t.Errorf("expected zero from mint, got %s", result.FromMint)
	}
}

func TestDistributeEpochRewardsSharesSumToEmission(t *testing.T) {
	d := testDistributor()
	total := types.NewAmount(1_000_000)
	minerScores := map[string]uint32{addrA: 100, addrB: 200, addrC: 300}
	validatorStakes := map[string]types.Amount{addrA: types.NewAmount(10), addrB: types.NewAmount(90)}

	result, err := d.DistributeEpochRewards(total, minerScores, validatorStakes)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}

	sum := types.ZeroAmount()
	for _, amount := range result.MinerRewards {
		sum = sum.Add(amount)
	}
	for _, amount := range result.ValidatorRewards {
		sum = sum.Add(amount)
	}
	sum = sum.Add(result.DelegatorPool).Add(result.SubnetOwnerPool).Add(result.DAOAllocation)

	if sum.Cmp(total) != 0 {
		t.Errorf("expected all pools to sum to total emission %s, got %s", total, sum)
	}
}

func TestDistributeEpochRewardsEmptyScoresProduceEmptyRewards(t *testing.T) {
	d := testDistributor()
	result, err := d.DistributeEpochRewards(types.NewAmount(1000), nil, nil)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(result.MinerRewards) != 0 || len(result.ValidatorRewards) != 0 {
		t.Error("expected empty reward maps for empty score/stake inputs")
	}
}

func TestDistributeByAddressWeightDeterministicOrdering(t *testing.T) {
	weights := map[string]uint64{addrC: 10, addrA: 10, addrB: 10}
	r1 := distributeByAddressWeight(types.NewAmount(100), weights)
	r2 := distributeByAddressWeight(types.NewAmount(100), weights)
	for addr, amount := range r1 {
		if r2[addr].Cmp(amount) != 0 {
			t.Errorf("expected deterministic result across calls for %s", addr)
		}
	}
}
