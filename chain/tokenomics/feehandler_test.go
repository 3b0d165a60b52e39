package tokenomics

import (
	"testing"

	"aichain-core/chain/types"
)

func testReceiptAndTx(gasUsed, gasLimit, gasPrice uint64, status types.ReceiptStatus) (*types.Receipt, *types.Transaction) {
	return &types.Receipt{GasUsed: gasUsed, Status: status},
		&types.Transaction{GasLimit: gasLimit, GasPrice: gasPrice}
}

func TestProcessReceiptRejectsGasOverLimit(t *testing.T) {
	pool := NewRecyclingPool()
	burn := NewBurnManager()
	f := NewFeeHandler(pool, burn, 5000)

	r, tx := testReceiptAndTx(100, 50, 1, types.StatusSuccess)
	if err := f.ProcessReceipt(r, tx); err == nil {
		t.Error("expected error when gas used exceeds gas limit")
	}
}

func TestProcessReceiptSplitsFeeOnSuccess(t *testing.T) {
	pool := NewRecyclingPool()
	burn := NewBurnManager()
	f := NewFeeHandler(pool, burn, 5000)

	r, tx := testReceiptAndTx(1000, 2000, 10, types.StatusSuccess)
	if err := f.ProcessReceipt(r, tx); err != nil {
		t.Fatalf("process receipt: %v", err)
	}

	if burn.TotalBurned().IsZero() {
		t.Error("expected a non-zero burned amount")
	}
	if pool.Balance().IsZero() {
		t.Error("expected a non-zero recycled amount credited to the pool")
	}
	if burn.TotalBurned().Cmp(pool.Balance()) != 0 {
		t.Errorf("expected a 50/50 split, burned=%s recycled=%s", burn.TotalBurned(), pool.Balance())
	}
	if len(r.Logs) != 1 || r.Logs[0].Type != "mdt_fee" {
		t.Errorf("expected a single mdt_fee log entry, got %+v", r.Logs)
	}
}

func TestProcessReceiptSkipsFailedTransactions(t *testing.T) {
	pool := NewRecyclingPool()
	burn := NewBurnManager()
	f := NewFeeHandler(pool, burn, 5000)

	r, tx := testReceiptAndTx(1000, 2000, 10, types.StatusFailed)
	if err := f.ProcessReceipt(r, tx); err != nil {
		t.Fatalf("process receipt: %v", err)
	}
	if !burn.TotalBurned().IsZero() || !pool.Balance().IsZero() {
		t.Error("expected no fee handling for a failed transaction")
	}
	if len(r.Logs) != 0 {
		t.Error("expected no log entry for a failed transaction")
	}
}

func TestProcessedCounterIncrements(t *testing.T) {
	pool := NewRecyclingPool()
	burn := NewBurnManager()
	f := NewFeeHandler(pool, burn, 5000)

	r, tx := testReceiptAndTx(100, 200, 1, types.StatusSuccess)
	if err := f.ProcessReceipt(r, tx); err != nil {
		t.Fatalf("process receipt: %v", err)
	}
	if f.Processed() != 1 {
		t.Errorf("expected processed count 1, got %d", f.Processed())
	}
}
