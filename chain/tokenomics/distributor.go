package tokenomics

import (
	"sort"

	"aichain-core/chain/bps"
	"aichain-core/chain/config"
	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// DistributionResult is the per-epoch output of the reward distributor.
type DistributionResult struct {
	FromPool         types.Amount
	FromMint         types.Amount
	MinerRewards     map[string]types.Amount
	ValidatorRewards map[string]types.Amount
	DelegatorPool    types.Amount
	SubnetOwnerPool  types.Amount
	DAOAllocation    types.Amount
}

// Distributor splits each epoch's emission across miners, validators,
// delegators, subnet owners, and the DAO. It never touches supply or
// performs I/O; it is a pure function of its inputs plus the pool's
// allocate side effect.
type Distributor struct {
	distCfg config.DistributionConfig
	pool    *RecyclingPool
}

func NewDistributor(distCfg config.DistributionConfig, pool *RecyclingPool) *Distributor {
	return &Distributor{distCfg: distCfg, pool: pool}
}

// DistributeEpochRewards runs the distribution algorithm described in the
// component design: allocate from pool before mint, split into per-role
// pools in share order (miners, validators, delegators, subnet owners,
// DAO last so it absorbs the rounding remainder), then distribute each
// role's pool proportionally over sorted addresses.
func (d *Distributor) DistributeEpochRewards(
	totalEmission types.Amount,
	minerScores map[string]uint32,
	validatorStakes map[string]types.Amount,
) (DistributionResult, error) {
	for addr, score := range minerScores {
		if score > bps.Scale {
			return DistributionResult{}, coreerr.InvalidInput("miner_scores["+addr+"]", "must be in [0, 10000]")
		}
	}
	for addr, stake := range validatorStakes {
		if stake.IsNegative() {
			return DistributionResult{}, coreerr.InvalidInput("validator_stakes["+addr+"]", "must be non-negative")
		}
	}

	fromPool, fromMint := d.pool.Allocate(totalEmission)

	minerPool := types.AmountFromWei(bps.ProportionalShare(totalEmission.Wei(), bps.BPS(d.distCfg.MinersBPS)))
	validatorPool := types.AmountFromWei(bps.ProportionalShare(totalEmission.Wei(), bps.BPS(d.distCfg.ValidatorsBPS)))
	delegatorPool := types.AmountFromWei(bps.ProportionalShare(totalEmission.Wei(), bps.BPS(d.distCfg.DelegatorsBPS)))
	subnetOwnerPool := types.AmountFromWei(bps.ProportionalShare(totalEmission.Wei(), bps.BPS(d.distCfg.SubnetOwnersBPS)))

	spent := minerPool.Add(validatorPool).Add(delegatorPool).Add(subnetOwnerPool)
	daoPool := totalEmission.Sub(spent)

	minerWeights := make(map[string]uint64, len(minerScores))
	for addr, score := range minerScores {
		minerWeights[addr] = uint64(score)
	}
	minerRewards := distributeByAddressWeight(minerPool, minerWeights)

	validatorWeights := make(map[string]uint64, len(validatorStakes))
	for addr, stake := range validatorStakes {
		validatorWeights[addr] = stake.Wei().Uint64()
	}
	validatorRewards := distributeByAddressWeight(validatorPool, validatorWeights)

	return DistributionResult{
		FromPool:         fromPool,
		FromMint:         fromMint,
		MinerRewards:     minerRewards,
		ValidatorRewards: validatorRewards,
		DelegatorPool:    delegatorPool,
		SubnetOwnerPool:  subnetOwnerPool,
		DAOAllocation:    daoPool,
	}, nil
}

// distributeByAddressWeight sorts addresses ascending, then applies
// bps.DistributeByScores so the consensus-visible iteration order never
// depends on map layout.
func distributeByAddressWeight(pool types.Amount, weights map[string]uint64) map[string]types.Amount {
	if len(weights) == 0 {
		return map[string]types.Amount{}
	}

	addrs := make([]string, 0, len(weights))
	for addr := range weights {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	weightSlice := make([]uint64, len(addrs))
	for i, addr := range addrs {
		weightSlice[i] = weights[addr]
	}

	shares := bps.DistributeByScores(pool.Wei(), weightSlice)

	out := make(map[string]types.Amount, len(addrs))
	for i, addr := range addrs {
		out[addr] = types.AmountFromWei(shares[i])
	}
	return out
}
