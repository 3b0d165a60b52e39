// Package bps implements fixed-point basis-point arithmetic. Every rate
// computation that feeds consensus goes through here: integer-only,
// bit-exact across nodes, never a float.
package bps

import (
	"fmt"
	"math/big"
)

// Scale is 10_000 BPS = 100%.
const Scale = 10_000

// BPS is an integer rate in [0, Scale] for most uses, though some
// multi-term sums (e.g. the distribution shares) are validated to equal
// Scale exactly rather than merely bounded by it.
type BPS uint32

// FloatToBPS converts a float fraction in [0, 1] to BPS. It is a
// boundary-only conversion (config loading, telemetry) and must never be
// re-entered on a consensus path.
func FloatToBPS(f float64) (BPS, error) {
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("bps: float %v out of range [0,1]", f)
	}
	return BPS(f*Scale + 0.5), nil
}

// BPSToFloat is the inverse of FloatToBPS, for display/telemetry only.
func BPSToFloat(b BPS) float64 {
	return float64(b) / Scale
}

// PercentToBPS converts a percentage in [0, 100] to BPS.
func PercentToBPS(pct float64) (BPS, error) {
	if pct < 0 || pct > 100 {
		return 0, fmt.Errorf("bps: percent %v out of range [0,100]", pct)
	}
	return FloatToBPS(pct / 100)
}

// ProportionalShare computes floor(total * rate / Scale) using big.Int so
// it is exact for amounts beyond int64 range.
func ProportionalShare(total *big.Int, rate BPS) *big.Int {
	if total == nil {
		return big.NewInt(0)
	}
	num := new(big.Int).Mul(total, big.NewInt(int64(rate)))
	return num.Div(num, big.NewInt(Scale))
}

// ProportionalShareUint64 is the uint64 convenience form of
// ProportionalShare, used throughout the scoring and tokenomics packages
// where amounts comfortably fit in 64 bits.
func ProportionalShareUint64(total uint64, rate BPS) uint64 {
	return ProportionalShare(new(big.Int).SetUint64(total), rate).Uint64()
}

// DistributeByScores splits total across len(scores) buckets proportional
// to each score, then distributes the truncation remainder one unit at a
// time to the highest-scoring indices (ties broken by ascending index).
// When every score is zero, total is split evenly with the remainder
// going to the first (total mod n) indices. The result always sums to
// exactly total. This routine is a leaf of the reward distributor and
// root subnet emission split; it must be bit-exact.
func DistributeByScores(total *big.Int, scores []uint64) []*big.Int {
	n := len(scores)
	shares := make([]*big.Int, n)
	if n == 0 {
		return shares
	}

	sum := uint64(0)
	for _, s := range scores {
		sum += s
	}

	if sum == 0 {
		base := new(big.Int).Div(total, big.NewInt(int64(n)))
		remainder := new(big.Int).Mod(total, big.NewInt(int64(n))).Int64()
		for i := range shares {
			shares[i] = new(big.Int).Set(base)
			if int64(i) < remainder {
				shares[i].Add(shares[i], big.NewInt(1))
			}
		}
		return shares
	}

	sumBig := new(big.Int).SetUint64(sum)
	distributed := big.NewInt(0)
	for i, s := range scores {
		share := new(big.Int).Mul(total, new(big.Int).SetUint64(s))
		share.Div(share, sumBig)
		shares[i] = share
		distributed.Add(distributed, share)
	}

	remainder := new(big.Int).Sub(total, distributed)
	if remainder.Sign() > 0 {
		order := rankByScoreDesc(scores)
		rem := remainder.Int64()
		for i := int64(0); i < rem; i++ {
			idx := order[int(i)%len(order)]
			shares[idx].Add(shares[idx], big.NewInt(1))
		}
	}

	return shares
}

// rankByScoreDesc returns indices ordered by descending score, ties broken
// by ascending index — the deterministic remainder-assignment order.
func rankByScoreDesc(scores []uint64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && less(scores, order[j], order[j-1]) {
			order[j], order[j-1] = order[j-1], order[j]
			j--
		}
	}
	return order
}

// less reports whether index a should sort before index b under
// descending-score, ascending-index order.
func less(scores []uint64, a, b int) bool {
	if scores[a] != scores[b] {
		return scores[a] > scores[b]
	}
	return a < b
}
