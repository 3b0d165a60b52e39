package tokenomics

import (
	"math/big"
	"sync/atomic"

	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// FeeHandler splits every transaction's gas fee between the recycling
// pool and the burn manager, feeding both from a single receipt.
type FeeHandler struct {
	pool      *RecyclingPool
	burn      *BurnManager
	burnBPS   uint32
	processed uint64
}

func NewFeeHandler(pool *RecyclingPool, burn *BurnManager, burnBPS uint32) *FeeHandler {
	return &FeeHandler{pool: pool, burn: burn, burnBPS: burnBPS}
}

// ProcessReceipt validates gas usage, computes the fee, and on a
// successful transaction splits it between recycle and burn, appending a
// structured log entry to the receipt.
func (f *FeeHandler) ProcessReceipt(r *types.Receipt, tx *types.Transaction) error {
	defer atomic.AddUint64(&f.processed, 1)

	if r.GasUsed > tx.GasLimit {
		return coreerr.InvalidInput("gas_used", "exceeds gas_limit")
	}

	feeWei := new(big.Int).Mul(
		new(big.Int).SetUint64(r.GasUsed),
		new(big.Int).SetUint64(tx.GasPrice),
	)
	fee := types.AmountFromWei(feeWei)

	if r.Status == types.StatusSuccess {
		toBurn, err := f.burn.BurnTransactionFees(fee, f.burnBPS)
		if err != nil {
			return err
		}
		toRecycle := fee.Sub(toBurn)

		if err := f.pool.Credit(SourceTransactionFees, toRecycle); err != nil {
			return err
		}

		r.AppendLog("mdt_fee", map[string]string{
			"fee":       fee.String(),
			"toBurn":    toBurn.String(),
			"toRecycle": toRecycle.String(),
		})
	}

	return nil
}

// Processed returns the number of receipts processed so far.
func (f *FeeHandler) Processed() uint64 {
	return atomic.LoadUint64(&f.processed)
}
