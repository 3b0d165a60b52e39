package tokenomics

import (
	"bytes"
	"sort"
	"sync"

	"aichain-core/chain/coreerr"
	"aichain-core/chain/types"
)

// claimEpoch is one epoch's committed reward set: a sorted address list,
// cached leaves, the root, and the set of already-claimed pairs.
type claimEpoch struct {
	addrs    []string
	rewards  map[string]types.Amount
	leaves   [][]byte
	root     types.Hash
	claimed  map[claimKey]bool
}

type claimKey struct {
	addr   string
	amount string
}

// ClaimManager commits per-epoch reward sets as a Merkle root and issues
// and verifies inclusion proofs. Proofs are always recomputed from the
// stored reward set rather than cached as object references, so no
// mutable internal node ever escapes.
type ClaimManager struct {
	mu     sync.Mutex
	epochs map[uint64]*claimEpoch
}

func NewClaimManager() *ClaimManager {
	return &ClaimManager{epochs: make(map[uint64]*claimEpoch)}
}

// CreateClaimTree drops zero-amount entries, sorts by address ascending,
// builds the canonical sorted-pair Merkle tree, and stores the epoch
// record. An empty reward set still produces a record, rooted at
// sha256("empty").
func (c *ClaimManager) CreateClaimTree(epoch uint64, rewards map[string]types.Amount) (types.Hash, error) {
	nonZero := make(map[string]types.Amount, len(rewards))
	addrs := make([]string, 0, len(rewards))
	for addr, amount := range rewards {
		if amount.IsZero() {
			continue
		}
		nonZero[addr] = amount
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	var root types.Hash
	var leaves [][]byte
	if len(addrs) == 0 {
		root = types.BytesToHash(types.SHA256([]byte("empty")))
	} else {
		leaves = make([][]byte, len(addrs))
		for i, addr := range addrs {
			leaves[i] = leafHash(addr, nonZero[addr])
		}
		root = types.BytesToHash(merkleRoot(leaves))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.epochs[epoch] = &claimEpoch{
		addrs:   addrs,
		rewards: nonZero,
		leaves:  leaves,
		root:    root,
		claimed: make(map[claimKey]bool),
	}
	return root, nil
}

// leafHash is sha256(addr_20 || amount_be_32), the canonical leaf format.
func leafHash(addr string, amount types.Amount) []byte {
	a, err := types.HexToAddress(addr)
	if err != nil {
		// Address was already validated by the caller that populated the
		// reward map; an invalid address here indicates a programming
		// error upstream, not a runtime condition to recover from.
		panic(err)
	}
	amountBuf := make([]byte, 32)
	amount.Wei().FillBytes(amountBuf)
	return types.SHA256(a.Bytes(), amountBuf)
}

// merkleRoot builds the canonical sorted-pair tree bottom-up and returns
// the root hash. An odd trailing node at any level promotes unchanged.
func merkleRoot(leaves [][]byte) []byte {
	level := leaves
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashSortedPair(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}

func hashSortedPair(a, b []byte) []byte {
	if bytes.Compare(a, b) <= 0 {
		return types.SHA256(a, b)
	}
	return types.SHA256(b, a)
}

// GetClaimProof rebuilds the path of sibling hashes for addr in epoch.
// Returns ok=false if the epoch or the address within it is unknown.
func (c *ClaimManager) GetClaimProof(epoch uint64, addr string) (proof [][]byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ep, exists := c.epochs[epoch]
	if !exists {
		return nil, false
	}
	idx := sort.SearchStrings(ep.addrs, addr)
	if idx >= len(ep.addrs) || ep.addrs[idx] != addr {
		return nil, false
	}

	level := ep.leaves
	pos := idx
	var path [][]byte
	for len(level) > 1 {
		var sibling []byte
		if pos%2 == 0 {
			if pos+1 < len(level) {
				sibling = level[pos+1]
			}
		} else {
			sibling = level[pos-1]
		}
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashSortedPair(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		if sibling != nil {
			path = append(path, sibling)
		}
		pos = pos / 2
		level = next
	}
	return path, true
}

// ClaimReward validates and applies a claim for (addr, amount) against
// epoch's stored rewards, proof, and claimed set.
func (c *ClaimManager) ClaimReward(epoch uint64, addr string, amount types.Amount, proof [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ep, exists := c.epochs[epoch]
	if !exists {
		return coreerr.New(coreerr.KindInvalidEpoch, "epoch not found")
	}

	key := claimKey{addr: addr, amount: amount.String()}
	if ep.claimed[key] {
		return coreerr.New(coreerr.KindAlreadyClaimed, "reward already claimed")
	}

	stored, ok := ep.rewards[addr]
	if !ok || stored.Cmp(amount) != 0 {
		return coreerr.New(coreerr.KindAmountMismatch, "claimed amount does not match recorded reward")
	}

	cur := leafHash(addr, amount)
	for _, sib := range proof {
		cur = hashSortedPair(cur, sib)
	}
	if !bytes.Equal(cur, ep.root[:]) {
		return coreerr.New(coreerr.KindInvalidProof, "proof does not reconstruct the stored root")
	}

	ep.claimed[key] = true
	return nil
}

// Root returns the stored root for epoch, if present.
func (c *ClaimManager) Root(epoch uint64) (types.Hash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ep, ok := c.epochs[epoch]
	if !ok {
		return types.Hash{}, false
	}
	return ep.root, true
}
