package tokenomics

import (
	"aichain-core/chain/bps"
	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// EpochTokenomics is the full per-epoch result returned by Integration's
// RunEpoch, matching the data model's epoch tokenomics result.
type EpochTokenomics struct {
	Epoch            uint64
	UtilityBPS       uint32
	EmissionAmount   types.Amount
	FromPool         types.Amount
	FromMint         types.Amount
	BurnedAmount     types.Amount
	MinerRewards     map[string]types.Amount
	ValidatorRewards map[string]types.Amount
	DAOAllocation    types.Amount
	ClaimRoot        types.Hash
}

// EpochInputs bundles the consensus inputs and network metrics the
// pipeline consumes for one epoch.
type EpochInputs struct {
	Epoch            uint64
	Tasks            uint64
	DifficultyBPS    uint32
	ParticipationBPS uint32
	QualityBPS       uint32
	MinerScores      map[string]uint32
	ValidatorStakes  map[string]types.Amount
}

// unmetQuotaThresholdBPS is the fixed threshold used for the per-epoch
// burn step (§4.13 step 4 hardcodes 5000).
const unmetQuotaThresholdBPS = 5000

// Integration owns the emission controller, recycling pool, burn ledger,
// distributor, and claim manager, and composes them into the single-
// threaded per-epoch state transition. Given the same EpochInputs against
// the same internal state, RunEpoch produces the same ClaimRoot
// byte-for-byte.
type Integration struct {
	emission    *EmissionController
	pool        *RecyclingPool
	burn        *BurnManager
	distributor *Distributor
	claims      *ClaimManager
}

func NewIntegration(emission *EmissionController, pool *RecyclingPool, burn *BurnManager, distributor *Distributor, claims *ClaimManager) *Integration {
	return &Integration{
		emission:    emission,
		pool:        pool,
		burn:        burn,
		distributor: distributor,
		claims:      claims,
	}
}

// RunEpoch executes the per-epoch pipeline described in the component
// design. Every input is validated before any state changes: quality and
// the disjointness of the miner and validator address sets here, utility
// in CalculateEpochEmission, and scores and stakes in the distributor
// before it draws on the pool. Supply is committed only after the
// distribution and the unmet-quota burn have succeeded, so an invalid
// input aborts the epoch with no state mutated.
func (in *Integration) RunEpoch(utilityBPS uint32, inputs EpochInputs) (EpochTokenomics, error) {
	if inputs.QualityBPS > bps.Scale {
		return EpochTokenomics{}, coreerr.InvalidInput("quality_bps", "must be in [0, 10000]")
	}
	for addr := range inputs.ValidatorStakes {
		if _, collides := inputs.MinerScores[addr]; collides {
			return EpochTokenomics{}, coreerr.InvalidInput("validator_rewards", "address collides with a miner reward")
		}
	}

	emission, err := in.emission.CalculateEpochEmission(utilityBPS, inputs.Epoch)
	if err != nil {
		return EpochTokenomics{}, err
	}

	dist, err := in.distributor.DistributeEpochRewards(emission, inputs.MinerScores, inputs.ValidatorStakes)
	if err != nil {
		return EpochTokenomics{}, err
	}

	burned, err := in.burn.BurnUnmetQuota(emission, inputs.QualityBPS, unmetQuotaThresholdBPS)
	if err != nil {
		return EpochTokenomics{}, err
	}

	if !dist.FromMint.IsZero() {
		if err := in.emission.UpdateSupply(dist.FromMint); err != nil {
			return EpochTokenomics{}, err
		}
	}

	allRewards := make(map[string]types.Amount, len(dist.MinerRewards)+len(dist.ValidatorRewards))
	for addr, amount := range dist.MinerRewards {
		allRewards[addr] = amount
	}
	for addr, amount := range dist.ValidatorRewards {
		if _, collides := allRewards[addr]; collides {
			return EpochTokenomics{}, coreerr.InvalidInput("validator_rewards", "address collides with a miner reward")
		}
		allRewards[addr] = amount
	}

	claimRoot, err := in.claims.CreateClaimTree(inputs.Epoch, allRewards)
	if err != nil {
		return EpochTokenomics{}, err
	}

	return EpochTokenomics{
		Epoch:            inputs.Epoch,
		UtilityBPS:       utilityBPS,
		EmissionAmount:   emission,
		FromPool:         dist.FromPool,
		FromMint:         dist.FromMint,
		BurnedAmount:     burned,
		MinerRewards:     dist.MinerRewards,
		ValidatorRewards: dist.ValidatorRewards,
		DAOAllocation:    dist.DAOAllocation,
		ClaimRoot:        claimRoot,
	}, nil
}
