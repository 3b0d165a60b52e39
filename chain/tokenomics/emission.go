// Package tokenomics implements the emission controller, recycling pool,
// burn manager, reward distributor, Merkle claim manager, transaction fee
// handler, and the per-epoch pipeline that composes them.
package tokenomics

import (
	"math/big"
	"sync"

	"aichain-core/chain/bps"
	"aichain-core/chain/config"
	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// EmissionController computes the per-epoch mint amount from network
// utility and a halving schedule, and owns current_supply. It never
// mutates supply on Calculate; callers commit via UpdateSupply once a
// distribution actually succeeds.
type EmissionController struct {
	mu  sync.Mutex
	cfg config.TokenomicsConfig

	maxSupply      types.Amount
	baseReward     types.Amount
	currentSupply  types.Amount
}

func NewEmissionController(cfg config.TokenomicsConfig) *EmissionController {
	return &EmissionController{
		cfg:           cfg,
		maxSupply:     types.NewAmount(cfg.MaxSupplyTokens),
		baseReward:    types.NewAmount(cfg.BaseRewardTokens),
		currentSupply: types.ZeroAmount(),
	}
}

// CurrentSupply returns the current minted supply.
func (e *EmissionController) CurrentSupply() types.Amount {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentSupply
}

// CalculateEpochEmission computes the mint amount for epoch given a
// utility score in [0, 10000]. It does not mutate current_supply.
func (e *EmissionController) CalculateEpochEmission(utilityBPS uint32, epoch uint64) (types.Amount, error) {
	if utilityBPS > bps.Scale {
		return types.ZeroAmount(), coreerr.InvalidInput("utility_bps", "must be in [0, 10000]")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	halvings := epoch / e.cfg.HalvingInterval

	var postHalving types.Amount
	if halvings >= 64 {
		postHalving = types.ZeroAmount()
	} else {
		shifted := new(big.Int).Rsh(e.baseReward.Wei(), uint(halvings))
		postHalving = types.AmountFromWei(shifted)
	}

	mint := types.AmountFromWei(bps.ProportionalShare(postHalving.Wei(), bps.BPS(utilityBPS)))

	headroom := e.maxSupply.Sub(e.currentSupply)
	if headroom.IsNegative() {
		headroom = types.ZeroAmount()
	}
	if mint.Cmp(headroom) > 0 {
		mint = headroom
	}

	return mint, nil
}

// UpdateSupply commits a successful mint to current_supply. Called by the
// integration layer only after a distribution using this mint amount has
// succeeded.
func (e *EmissionController) UpdateSupply(minted types.Amount) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	newSupply := e.currentSupply.Add(minted)
	if newSupply.Cmp(e.maxSupply) > 0 {
		return coreerr.InvalidInput("minted", "would exceed max supply")
	}
	e.currentSupply = newSupply
	return nil
}

// CalculateUtility combines three BPS inputs with weights summing to
// 10000 into a single utility score.
func CalculateUtility(cfg config.TokenomicsConfig, tasks uint64, difficultyBPS, participationBPS uint32) (uint32, error) {
	if difficultyBPS > bps.Scale {
		return 0, coreerr.InvalidInput("difficulty_bps", "must be in [0, 10000]")
	}
	if participationBPS > bps.Scale {
		return 0, coreerr.InvalidInput("participation_bps", "must be in [0, 10000]")
	}

	cappedTasks := tasks
	if cappedTasks > cfg.MaxExpectedTasks {
		cappedTasks = cfg.MaxExpectedTasks
	}
	taskBPS := cappedTasks * bps.Scale / cfg.MaxExpectedTasks

	wTask := uint64(cfg.UtilityWeightsBPS[0])
	wDiff := uint64(cfg.UtilityWeightsBPS[1])
	wPart := uint64(cfg.UtilityWeightsBPS[2])

	utility := (wTask*taskBPS + wDiff*uint64(difficultyBPS) + wPart*uint64(participationBPS)) / bps.Scale
	return uint32(utility), nil
}
