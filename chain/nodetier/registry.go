// Package nodetier maps stake to node tier and tracks per-node
// performance counters. The tier function is pure and is the single
// source of truth the registry and every consumer (distributor, root
// subnet) relies on.
package nodetier

import (
	"sort"
	"strings"
	"sync"

	"aichain-core/chain/config"
	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// TierForStake is the pure stake-to-tier function. Thresholds come from
// cfg, given in whole tokens; stakeWei is the node's stake in the
// smallest unit.
func TierForStake(cfg config.NodeTierConfig, stakeWei types.Amount) types.NodeTier {
	full := types.NewAmount(cfg.FullNodeMinStake)
	validator := types.NewAmount(cfg.ValidatorMinStake)
	super := types.NewAmount(cfg.SuperValidatorMinStake)

	switch {
	case stakeWei.Cmp(super) >= 0:
		return types.SuperValidator
	case stakeWei.Cmp(validator) >= 0:
		return types.Validator
	case stakeWei.Cmp(full) >= 0:
		return types.FullNode
	default:
		return types.LightNode
	}
}

// Registry is a pure data structure keyed by lower-case address. It owns
// its NodeInfo records; no external reference outlives a call.
type Registry struct {
	mu     sync.RWMutex
	cfg    config.NodeTierConfig
	nodes  map[string]*types.NodeInfo
}

func NewRegistry(cfg config.NodeTierConfig) *Registry {
	return &Registry{cfg: cfg, nodes: make(map[string]*types.NodeInfo)}
}

func normalize(addr string) string {
	return strings.ToLower(addr)
}

// Register inserts a new node, deriving its tier from stake. Fails if the
// address is already present.
func (r *Registry) Register(addr string, stake types.Amount, block uint64) (*types.NodeInfo, error) {
	key := normalize(addr)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[key]; exists {
		return nil, coreerr.InvalidInput("address", "node already registered")
	}

	node := &types.NodeInfo{
		Address:      key,
		Stake:        stake,
		Tier:         TierForStake(r.cfg, stake),
		RegisteredAt: block,
	}
	r.nodes[key] = node
	return node, nil
}

// UpdateStake mutates a node's stake and recomputes its tier in the same
// step, so the invariant tier = f(stake) never goes stale.
func (r *Registry) UpdateStake(addr string, newStake types.Amount) error {
	key := normalize(addr)

	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[key]
	if !ok {
		return coreerr.InvalidInput("address", "node not registered")
	}
	node.Stake = newStake
	node.Tier = TierForStake(r.cfg, newStake)
	return nil
}

// Get returns a copy of the node's record.
func (r *Registry) Get(addr string) (types.NodeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.nodes[normalize(addr)]
	if !ok {
		return types.NodeInfo{}, false
	}
	return *node, true
}

// RecordBlockProduced increments a node's block-production counter and
// records block as its last block. It does not check the node's tier.
func (r *Registry) RecordBlockProduced(addr string, block uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[normalize(addr)]
	if !ok {
		return coreerr.InvalidInput("address", "node not registered")
	}
	node.BlocksProduced++
	node.LastBlock = block
	return nil
}

// RecordTxRelayed increments a node's relay counter.
func (r *Registry) RecordTxRelayed(addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[normalize(addr)]
	if !ok {
		return coreerr.InvalidInput("address", "node not registered")
	}
	node.TxRelayed++
	return nil
}

// SetUptime clamps and stores a node's uptime score in BPS.
func (r *Registry) SetUptime(addr string, uptimeBPS uint32) error {
	if uptimeBPS > 10_000 {
		uptimeBPS = 10_000
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[normalize(addr)]
	if !ok {
		return coreerr.InvalidInput("address", "node not registered")
	}
	node.UptimeBPS = uptimeBPS
	return nil
}

// NodesAtLeast returns, in address-sorted order, every node whose tier is
// at or above min.
func (r *Registry) NodesAtLeast(min types.NodeTier) []types.NodeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.NodeInfo, 0, len(r.nodes))
	for _, node := range r.nodes {
		if node.Tier >= min {
			out = append(out, *node)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// InfrastructureNodes returns nodes at FullNode tier or above.
func (r *Registry) InfrastructureNodes() []types.NodeInfo { return r.NodesAtLeast(types.FullNode) }

// Validators returns nodes at Validator tier or above.
func (r *Registry) Validators() []types.NodeInfo { return r.NodesAtLeast(types.Validator) }

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
