package tokenomics

import (
	"sync"

	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// PoolSource is one of the closed set of recycling pool funding sources.
type PoolSource string

const (
	SourceRegistrationFees PoolSource = "registration_fees"
	SourceSlashingPenalties PoolSource = "slashing_penalties"
	SourceTaskFees          PoolSource = "task_fees"
	SourceTransactionFees   PoolSource = "transaction_fees"
)

func (s PoolSource) valid() bool {
	switch s {
	case SourceRegistrationFees, SourceSlashingPenalties, SourceTaskFees, SourceTransactionFees:
		return true
	default:
		return false
	}
}

// RecyclingPool accumulates recycled fees and penalties and is drawn down
// before any minting occurs. It accepts writes only from the closed
// source set and never issues partial refunds.
type RecyclingPool struct {
	mu sync.Mutex

	balance        types.Amount
	sources        map[PoolSource]types.Amount
	totalRecycled  types.Amount
	totalAllocated types.Amount
}

func NewRecyclingPool() *RecyclingPool {
	return &RecyclingPool{
		balance:        types.ZeroAmount(),
		sources:        make(map[PoolSource]types.Amount),
		totalRecycled:  types.ZeroAmount(),
		totalAllocated: types.ZeroAmount(),
	}
}

// Credit adds amount to the pool, attributed to source. Unknown sources
// fail the write.
func (p *RecyclingPool) Credit(source PoolSource, amount types.Amount) error {
	if !source.valid() {
		return coreerr.InvalidInput("source", "unknown recycling pool source")
	}
	if amount.IsNegative() {
		return coreerr.InvalidInput("amount", "must be non-negative")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.balance = p.balance.Add(amount)
	p.sources[source] = p.sources[source].Add(amount)
	p.totalRecycled = p.totalRecycled.Add(amount)
	return nil
}

// Allocate draws min(balance, required) from the pool and reports the
// rest of required as mint-funded. The pool-funded part is counted
// against total_allocated at once, with no refund path.
func (p *RecyclingPool) Allocate(required types.Amount) (fromPool types.Amount, fromMint types.Amount) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balance.Cmp(required) >= 0 {
		fromPool = required
	} else {
		fromPool = p.balance
	}
	fromMint = required.Sub(fromPool)

	p.balance = p.balance.Sub(fromPool)
	p.totalAllocated = p.totalAllocated.Add(fromPool)
	return fromPool, fromMint
}

func (p *RecyclingPool) Balance() types.Amount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

func (p *RecyclingPool) SourceTotal(source PoolSource) types.Amount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sources[source]
}

func (p *RecyclingPool) TotalRecycled() types.Amount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalRecycled
}

func (p *RecyclingPool) TotalAllocated() types.Amount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalAllocated
}
