// Package scoring ingests task, block, and attestation events and
// produces deterministic integer performance scores for miners and
// validators.
package scoring

import (
	"strings"
	"sync"

	"aichain-core/chain/bps"
	"aichain-core/chain/config"
	"aichain-core/chain/types"
)

// Manager owns miner and validator metric records by address key. Events
// must be applied in the order the host chain delivered them; the
// manager itself does not reorder.
type Manager struct {
	mu         sync.Mutex
	cfg        config.ScoringConfig
	miners     map[string]*types.MinerMetrics
	validators map[string]*types.ValidatorMetrics
}

func NewManager(cfg config.ScoringConfig) *Manager {
	return &Manager{
		cfg:        cfg,
		miners:     make(map[string]*types.MinerMetrics),
		validators: make(map[string]*types.ValidatorMetrics),
	}
}

func normalize(addr string) string { return strings.ToLower(addr) }

func (m *Manager) minerRecord(addr string) *types.MinerMetrics {
	key := normalize(addr)
	rec, ok := m.miners[key]
	if !ok {
		rec = &types.MinerMetrics{Address: key}
		m.miners[key] = rec
	}
	return rec
}

func (m *Manager) validatorRecord(addr string) *types.ValidatorMetrics {
	key := normalize(addr)
	rec, ok := m.validators[key]
	if !ok {
		rec = &types.ValidatorMetrics{Address: key}
		m.validators[key] = rec
	}
	return rec
}

// TaskCompleted records a successful task execution and recomputes the
// miner's score. qualityBPS is this task's quality in [0, 10000].
func (m *Manager) TaskCompleted(miner string, execMs uint64, qualityBPS uint32, nowUnix int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.minerRecord(miner)
	rec.TasksCompleted++
	rec.TotalExecutionTimeMs += execMs
	rec.AverageQualityBPS = runningMean(rec.AverageQualityBPS, qualityBPS, rec.TasksCompleted)
	rec.LastActiveUnix = nowUnix
	rec.PerformanceScoreBPS = m.computeMinerScore(rec)
}

// TaskFailed records a failed task; it still counts toward the
// min-tasks-for-score denominator.
func (m *Manager) TaskFailed(miner string, nowUnix int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.minerRecord(miner)
	rec.TasksFailed++
	rec.LastActiveUnix = nowUnix
	rec.PerformanceScoreBPS = m.computeMinerScore(rec)
}

// BlockProduced records a produced block for a validator.
func (m *Manager) BlockProduced(validator string, nowUnix int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.validatorRecord(validator)
	rec.BlocksProduced++
	rec.LastActiveUnix = nowUnix
	rec.PerformanceScoreBPS = m.computeValidatorScore(rec)
}

// BlockMissed records a missed block for a validator.
func (m *Manager) BlockMissed(validator string, nowUnix int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.validatorRecord(validator)
	rec.BlocksMissed++
	rec.LastActiveUnix = nowUnix
	rec.PerformanceScoreBPS = m.computeValidatorScore(rec)
}

// AttestationMade records an attestation with its delay in milliseconds.
func (m *Manager) AttestationMade(validator string, delayMs uint64, nowUnix int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.validatorRecord(validator)
	rec.AttestationsMade++
	rec.TotalAttestationDelayMs += delayMs
	rec.LastActiveUnix = nowUnix
	rec.PerformanceScoreBPS = m.computeValidatorScore(rec)
}

// SlashingEvent records a slashing event for a validator, penalizing
// uptime in the next score recomputation.
func (m *Manager) SlashingEvent(validator string, nowUnix int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.validatorRecord(validator)
	rec.SlashingEvents++
	rec.LastActiveUnix = nowUnix
	rec.PerformanceScoreBPS = m.computeValidatorScore(rec)
}

// runningMean updates an integer running mean using multiply-before-divide
// so the result is deterministic: avg_new = (avg_old*(n-1) + q) / n.
func runningMean(avgOld uint32, q uint32, n uint64) uint32 {
	if n == 0 {
		return 0
	}
	num := uint64(avgOld)*(n-1) + uint64(q)
	return uint32(num / n)
}

func (m *Manager) computeMinerScore(rec *types.MinerMetrics) uint32 {
	total := rec.TasksCompleted + rec.TasksFailed
	if total < m.cfg.MinTasksForScore {
		return 0
	}

	completionBPS := uint32(rec.TasksCompleted * bps.Scale / total)

	var latencyBPS uint32
	if rec.TasksCompleted == 0 {
		latencyBPS = 0
	} else {
		avgLatency := rec.TotalExecutionTimeMs / rec.TasksCompleted
		switch {
		case avgLatency <= m.cfg.LatencyTargetMs:
			latencyBPS = bps.Scale
		case avgLatency >= m.cfg.LatencyPenaltyMs:
			latencyBPS = 0
		default:
			span := m.cfg.LatencyPenaltyMs - m.cfg.LatencyTargetMs
			over := avgLatency - m.cfg.LatencyTargetMs
			latencyBPS = uint32(bps.Scale - (over*bps.Scale)/span)
		}
	}

	qualityBPS := rec.AverageQualityBPS

	score := (uint64(completionBPS)*uint64(m.cfg.MinerCompletionBPS) +
		uint64(latencyBPS)*uint64(m.cfg.MinerLatencyBPS) +
		uint64(qualityBPS)*uint64(m.cfg.MinerQualityBPS)) / bps.Scale
	return uint32(score)
}

func (m *Manager) computeValidatorScore(rec *types.ValidatorMetrics) uint32 {
	total := rec.BlocksProduced + rec.BlocksMissed
	var blockBPS uint32
	if total > 0 {
		blockBPS = uint32(rec.BlocksProduced * bps.Scale / total)
	}

	var attestBPS uint32
	if rec.AttestationsMade > 0 {
		avgDelay := rec.TotalAttestationDelayMs / rec.AttestationsMade
		if avgDelay < bps.Scale {
			attestBPS = uint32(bps.Scale - avgDelay)
		}
	}

	var uptimeBPS int64 = bps.Scale - int64(rec.SlashingEvents)*1000
	if uptimeBPS < 0 {
		uptimeBPS = 0
	}

	score := (uint64(blockBPS)*uint64(m.cfg.ValidatorBlockBPS) +
		uint64(attestBPS)*uint64(m.cfg.ValidatorAttestBPS) +
		uint64(uptimeBPS)*uint64(m.cfg.ValidatorUptimeBPS)) / bps.Scale
	return uint32(score)
}

// ApplyDecay multiplies every performance score by score_decay_bps/10000,
// used for periodic idle decay.
func (m *Manager) ApplyDecay() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.miners {
		rec.PerformanceScoreBPS = uint32(uint64(rec.PerformanceScoreBPS) * uint64(m.cfg.ScoreDecayBPS) / bps.Scale)
	}
	for _, rec := range m.validators {
		rec.PerformanceScoreBPS = uint32(uint64(rec.PerformanceScoreBPS) * uint64(m.cfg.ScoreDecayBPS) / bps.Scale)
	}
}

// MinerScore returns a miner's current score, 0 if unknown.
func (m *Manager) MinerScore(addr string) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.miners[normalize(addr)]; ok {
		return rec.PerformanceScoreBPS
	}
	return 0
}

// ValidatorScore returns a validator's current score, 0 if unknown.
func (m *Manager) ValidatorScore(addr string) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.validators[normalize(addr)]; ok {
		return rec.PerformanceScoreBPS
	}
	return 0
}

// MinerScores returns every tracked miner's score keyed by address.
func (m *Manager) MinerScores() map[string]uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint32, len(m.miners))
	for addr, rec := range m.miners {
		out[addr] = rec.PerformanceScoreBPS
	}
	return out
}
