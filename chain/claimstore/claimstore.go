// Package claimstore persists the epoch hand-off the integration pipeline
// produces (epoch_tokenomics summary and sorted claim_rewards) for the
// host to pick up; running totals are not stored. The core performs no
// file I/O of its own; this is the reference leveldb-backed adapter a host
// deployment can use.
package claimstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"aichain-core/chain/tokenomics"
)

// EpochStateWriter is the narrow interface for recording the tokenomics
// integration's per-epoch output; RunEpoch itself does not call it, and
// cmd/aichain-node calls Store.WriteEpoch after each epoch. Keeping it
// this small means the core
// stays storage-free: it only needs something that can durably record a
// finished epoch, not a full database API.
type EpochStateWriter interface {
	WriteEpoch(result tokenomics.EpochTokenomics) error
}

// rewardEntry is one sorted (address, amount) pair in the persisted
// claim_rewards list.
type rewardEntry struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// epochRecord is the on-disk shape for one epoch: the summary plus the
// sorted reward list, matching the persistent state layout.
type epochRecord struct {
	Epoch          uint64        `json:"epoch"`
	UtilityBPS     uint32        `json:"utilityBps"`
	EmissionAmount string        `json:"emissionAmount"`
	FromPool       string        `json:"fromPool"`
	FromMint       string        `json:"fromMint"`
	BurnedAmount   string        `json:"burnedAmount"`
	DAOAllocation  string        `json:"daoAllocation"`
	ClaimRoot      string        `json:"claimRoot"`
	ClaimRewards   []rewardEntry `json:"claimRewards"`
}

// Store is a goleveldb-backed EpochStateWriter. Each epoch is stored
// under its own key so a host can page through epochs without loading
// the whole history.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a leveldb database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("claimstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func epochKey(epoch uint64) []byte {
	return []byte(fmt.Sprintf("epoch/%020d", epoch))
}

// WriteEpoch persists one epoch's tokenomics result, flattening its
// miner and validator reward maps into the sorted claim_rewards list the
// host is expected to store.
func (s *Store) WriteEpoch(result tokenomics.EpochTokenomics) error {
	addrs := make([]string, 0, len(result.MinerRewards)+len(result.ValidatorRewards))
	amounts := make(map[string]string, len(addrs))
	for addr, amount := range result.MinerRewards {
		addrs = append(addrs, addr)
		amounts[addr] = amount.String()
	}
	for addr, amount := range result.ValidatorRewards {
		addrs = append(addrs, addr)
		amounts[addr] = amount.String()
	}
	sort.Strings(addrs)

	rewards := make([]rewardEntry, len(addrs))
	for i, addr := range addrs {
		rewards[i] = rewardEntry{Address: addr, Amount: amounts[addr]}
	}

	record := epochRecord{
		Epoch:          result.Epoch,
		UtilityBPS:     result.UtilityBPS,
		EmissionAmount: result.EmissionAmount.String(),
		FromPool:       result.FromPool.String(),
		FromMint:       result.FromMint.String(),
		BurnedAmount:   result.BurnedAmount.String(),
		DAOAllocation:  result.DAOAllocation.String(),
		ClaimRoot:      result.ClaimRoot.Hex(),
		ClaimRewards:   rewards,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("claimstore: marshal epoch %d: %w", result.Epoch, err)
	}
	if err := s.db.Put(epochKey(result.Epoch), data, nil); err != nil {
		return fmt.Errorf("claimstore: write epoch %d: %w", result.Epoch, err)
	}
	return nil
}

// ReadEpoch loads a previously written epoch record, for tests and host
// reconciliation tooling.
func (s *Store) ReadEpoch(epoch uint64) (EpochRecordView, error) {
	data, err := s.db.Get(epochKey(epoch), nil)
	if err != nil {
		return EpochRecordView{}, fmt.Errorf("claimstore: read epoch %d: %w", epoch, err)
	}
	var record epochRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return EpochRecordView{}, fmt.Errorf("claimstore: decode epoch %d: %w", epoch, err)
	}
	return EpochRecordView(record), nil
}

// EpochRecordView is the read-side view of a persisted epoch record.
type EpochRecordView epochRecord
