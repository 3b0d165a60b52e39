// Package rootsubnet implements the root subnet: stake-weighted weight
// voting by top-N validators that allocates emission shares across
// subnets.
package rootsubnet

import (
	"math/big"
	"sort"
	"strings"
	"sync"

	"aichain-core/chain/bps"
	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// SubnetInfo is a registered subnet's record.
type SubnetInfo struct {
	Netuid     uint64
	Name       string
	Owner      string
	CreatedAt  uint64
	Active     bool
	CostBurned types.Amount
}

// RootValidator is one entry in the top-N-by-stake validator set.
type RootValidator struct {
	Address string
	Stake   types.Amount
	Rank    int
}

// Config governs subnet caps and root validator selection.
type Config struct {
	MaxSubnets        int
	MaxRootValidators int
	MinStakeForRoot   types.Amount
	RegistrationBurn  types.Amount
}

// RootSubnet maintains subnets, the root validator set, the weight
// matrix, and the derived emission shares. No reverse pointers: every
// query recomputes from the authoritative stores.
type RootSubnet struct {
	mu sync.Mutex

	cfg Config

	subnets        map[uint64]*SubnetInfo
	nextNetuid     uint64
	rootValidators []RootValidator
	weightMatrix   map[string]map[uint64]uint32 // validator -> netuid -> bps
	emissionShares map[uint64]uint32
}

func New(cfg Config) *RootSubnet {
	return &RootSubnet{
		cfg:            cfg,
		subnets:        make(map[uint64]*SubnetInfo),
		weightMatrix:   make(map[string]map[uint64]uint32),
		emissionShares: make(map[uint64]uint32),
	}
}

func normalize(addr string) string { return strings.ToLower(addr) }

// RegisterSubnet assigns the next netuid, stores the subnet, and
// initializes its emission share to 0.
func (rs *RootSubnet) RegisterSubnet(name, owner string, block uint64) (uint64, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if len(rs.subnets) >= rs.cfg.MaxSubnets {
		return 0, coreerr.InvalidInput("subnets", "max_subnets cap reached")
	}

	netuid := rs.nextNetuid
	rs.nextNetuid++

	rs.subnets[netuid] = &SubnetInfo{
		Netuid:    netuid,
		Name:      name,
		Owner:     normalize(owner),
		CreatedAt: block,
		Active:    true,
	}
	rs.emissionShares[netuid] = 0
	return netuid, nil
}

// DeregisterSubnet removes a subnet, provided caller is its owner. Its
// column is dropped from every validator's weight row and shares are
// renormalized.
func (rs *RootSubnet) DeregisterSubnet(netuid uint64, caller string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	subnet, ok := rs.subnets[netuid]
	if !ok {
		return coreerr.InvalidInput("netuid", "subnet not found")
	}
	if subnet.Owner != normalize(caller) {
		return coreerr.InvalidInput("caller", "only the subnet owner may deregister")
	}

	delete(rs.subnets, netuid)
	delete(rs.emissionShares, netuid)
	for _, row := range rs.weightMatrix {
		delete(row, netuid)
	}
	rs.renormalizeShares()
	return nil
}

// UpdateRootValidators replaces the root validator set atomically: takes
// the top MaxRootValidators stakers with stake at or above MinStakeForRoot.
func (rs *RootSubnet) UpdateRootValidators(stakes map[string]types.Amount) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	type entry struct {
		addr  string
		stake types.Amount
	}
	entries := make([]entry, 0, len(stakes))
	for addr, stake := range stakes {
		if stake.Cmp(rs.cfg.MinStakeForRoot) >= 0 {
			entries = append(entries, entry{addr: normalize(addr), stake: stake})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		c := entries[i].stake.Cmp(entries[j].stake)
		if c != 0 {
			return c > 0
		}
		return entries[i].addr < entries[j].addr
	})
	if len(entries) > rs.cfg.MaxRootValidators {
		entries = entries[:rs.cfg.MaxRootValidators]
	}

	validators := make([]RootValidator, len(entries))
	validSet := make(map[string]bool, len(entries))
	for i, e := range entries {
		validators[i] = RootValidator{Address: e.addr, Stake: e.stake, Rank: i}
		validSet[e.addr] = true
	}
	rs.rootValidators = validators

	for addr := range rs.weightMatrix {
		if !validSet[addr] {
			delete(rs.weightMatrix, addr)
		}
	}
	rs.renormalizeShares()
}

// SetWeights records a root validator's per-subnet weight row, then
// recomputes emission shares via stake-weighted average across all rows.
func (rs *RootSubnet) SetWeights(validator string, weights map[uint64]uint32) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	addr := normalize(validator)
	if !rs.isRootValidator(addr) {
		return coreerr.InvalidInput("validator", "not a root validator")
	}

	sum := uint32(0)
	for netuid, w := range weights {
		if _, ok := rs.subnets[netuid]; !ok {
			return coreerr.InvalidInput("netuid", "subnet does not exist")
		}
		sum += w
	}
	if sum > bps.Scale {
		return coreerr.InvalidInput("weights", "row sum exceeds 10000 bps")
	}

	row := make(map[uint64]uint32, len(weights))
	for netuid, w := range weights {
		row[netuid] = w
	}
	rs.weightMatrix[addr] = row

	rs.renormalizeShares()
	return nil
}

func (rs *RootSubnet) isRootValidator(addr string) bool {
	for _, v := range rs.rootValidators {
		if v.Address == addr {
			return true
		}
	}
	return false
}

// renormalizeShares recomputes emission_shares as the stake-weighted
// average of every validator's weight row, then normalizes so the total
// is exactly 10000 BPS. Iteration is over sorted netuids for determinism.
func (rs *RootSubnet) renormalizeShares() {
	netuids := make([]uint64, 0, len(rs.subnets))
	for netuid := range rs.subnets {
		netuids = append(netuids, netuid)
	}
	sort.Slice(netuids, func(i, j int) bool { return netuids[i] < netuids[j] })

	if len(netuids) == 0 {
		return
	}

	totalStake := uint64(0)
	validators := make([]string, 0, len(rs.rootValidators))
	stakeByAddr := make(map[string]uint64, len(rs.rootValidators))
	for _, v := range rs.rootValidators {
		validators = append(validators, v.Address)
		w := v.Stake.Wei().Uint64()
		stakeByAddr[v.Address] = w
		totalStake += w
	}
	sort.Strings(validators)

	raw := make(map[uint64]uint64, len(netuids))
	if totalStake > 0 {
		for _, addr := range validators {
			row := rs.weightMatrix[addr]
			stakeWeight := stakeByAddr[addr]
			for _, netuid := range netuids {
				raw[netuid] += stakeWeight * uint64(row[netuid])
			}
		}
	}

	sumRaw := uint64(0)
	for _, v := range raw {
		sumRaw += v
	}

	shares := make(map[uint64]uint32, len(netuids))
	if sumRaw == 0 {
		base := uint32(bps.Scale) / uint32(len(netuids))
		remainder := int(bps.Scale) % len(netuids)
		for i, netuid := range netuids {
			shares[netuid] = base
			if i < remainder {
				shares[netuid]++
			}
		}
	} else {
		weights := make([]uint64, len(netuids))
		for i, netuid := range netuids {
			weights[i] = raw[netuid]
		}
		amounts := bps.DistributeByScores(big.NewInt(bps.Scale), weights)
		for i, netuid := range netuids {
			shares[netuid] = uint32(amounts[i].Uint64())
		}
	}

	rs.emissionShares = shares
}

// Distribute splits totalEmission across subnets proportional to their
// emission share, preserving the total exactly.
func (rs *RootSubnet) Distribute(totalEmission types.Amount) []SubnetAllocation {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	netuids := make([]uint64, 0, len(rs.emissionShares))
	for netuid := range rs.emissionShares {
		netuids = append(netuids, netuid)
	}
	sort.Slice(netuids, func(i, j int) bool { return netuids[i] < netuids[j] })

	weights := make([]uint64, len(netuids))
	for i, netuid := range netuids {
		weights[i] = uint64(rs.emissionShares[netuid])
	}
	amounts := bps.DistributeByScores(totalEmission.Wei(), weights)

	out := make([]SubnetAllocation, len(netuids))
	for i, netuid := range netuids {
		out[i] = SubnetAllocation{
			Netuid:  netuid,
			ShareBPS: rs.emissionShares[netuid],
			Amount:  types.AmountFromWei(amounts[i]),
		}
	}
	return out
}

// SubnetAllocation is one subnet's emission share and resulting amount.
type SubnetAllocation struct {
	Netuid   uint64
	ShareBPS uint32
	Amount   types.Amount
}

// EmissionShares returns a copy of the current emission share map.
func (rs *RootSubnet) EmissionShares() map[uint64]uint32 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make(map[uint64]uint32, len(rs.emissionShares))
	for k, v := range rs.emissionShares {
		out[k] = v
	}
	return out
}

// RootValidators returns a copy of the current root validator set.
func (rs *RootSubnet) RootValidators() []RootValidator {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]RootValidator, len(rs.rootValidators))
	copy(out, rs.rootValidators)
	return out
}
