package tokenomics

import (
	"sync"

	"aichain-core/chain/bps"
	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// BurnReason is one of the closed set of reasons tokens are burned.
type BurnReason string

const (
	ReasonUnmetQuota      BurnReason = "unmet_quota"
	ReasonTransactionFees BurnReason = "transaction_fees"
	ReasonQualityPenalty  BurnReason = "quality_penalty"
)

// BurnManager tracks cumulative burns by reason. Burning never reduces
// current_supply: the ledger is separate from the emission controller,
// and supply grows only by the mint portion the integration commits.
type BurnManager struct {
	mu sync.Mutex

	totalBurned types.Amount
	byReason    map[BurnReason]types.Amount
}

func NewBurnManager() *BurnManager {
	return &BurnManager{
		totalBurned: types.ZeroAmount(),
		byReason:    make(map[BurnReason]types.Amount),
	}
}

func (b *BurnManager) record(reason BurnReason, amount types.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalBurned = b.totalBurned.Add(amount)
	b.byReason[reason] = b.byReason[reason].Add(amount)
}

// BurnUnmetQuota burns a portion of expectedEmission proportional to the
// quality shortfall below threshold; 0 if quality meets or exceeds it.
func (b *BurnManager) BurnUnmetQuota(expectedEmission types.Amount, qualityBPS, thresholdBPS uint32) (types.Amount, error) {
	if qualityBPS > bps.Scale || thresholdBPS > bps.Scale {
		return types.ZeroAmount(), coreerr.InvalidInput("quality_bps", "must be in [0, 10000]")
	}
	if qualityBPS >= thresholdBPS {
		return types.ZeroAmount(), nil
	}

	deficit := thresholdBPS - qualityBPS
	burned := types.AmountFromWei(bps.ProportionalShare(expectedEmission.Wei(), bps.BPS(deficit)))
	b.record(ReasonUnmetQuota, burned)
	return burned, nil
}

// BurnTransactionFees burns burnBPS of fee, recording it against the
// transaction_fees reason.
func (b *BurnManager) BurnTransactionFees(fee types.Amount, burnBPS uint32) (types.Amount, error) {
	if fee.IsNegative() {
		return types.ZeroAmount(), coreerr.InvalidInput("fee", "must be non-negative")
	}
	if burnBPS > bps.Scale {
		return types.ZeroAmount(), coreerr.InvalidInput("burn_bps", "must be in [0, 10000]")
	}

	burned := types.AmountFromWei(bps.ProportionalShare(fee.Wei(), bps.BPS(burnBPS)))
	b.record(ReasonTransactionFees, burned)
	return burned, nil
}

// BurnQualityPenalty burns an arbitrary already-computed amount under the
// quality_penalty reason; used outside the per-epoch pipeline by callers
// that compute their own penalty amount (e.g. slashing).
func (b *BurnManager) BurnQualityPenalty(amount types.Amount) error {
	if amount.IsNegative() {
		return coreerr.InvalidInput("amount", "must be non-negative")
	}
	b.record(ReasonQualityPenalty, amount)
	return nil
}

func (b *BurnManager) TotalBurned() types.Amount {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalBurned
}

func (b *BurnManager) BurnedFor(reason BurnReason) types.Amount {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byReason[reason]
}
