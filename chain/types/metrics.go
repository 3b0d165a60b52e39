package types

// MinerMetrics tracks a miner's task-completion performance. Matches the
// fields consumed by the scoring manager (§4.10).
type MinerMetrics struct {
	Address               string `json:"address"`
	TasksCompleted        uint64 `json:"tasksCompleted"`
	TasksFailed           uint64 `json:"tasksFailed"`
	TotalExecutionTimeMs  uint64 `json:"totalExecutionTimeMs"`
	AverageQualityBPS     uint32 `json:"averageQualityBps"`
	PerformanceScoreBPS   uint32 `json:"performanceScoreBps"`
	LastActiveUnix        int64  `json:"lastActiveUnix"`
}

// ValidatorMetrics tracks a validator's block-production and attestation
// performance.
type ValidatorMetrics struct {
	Address                  string `json:"address"`
	BlocksProduced           uint64 `json:"blocksProduced"`
	BlocksMissed             uint64 `json:"blocksMissed"`
	AttestationsMade         uint64 `json:"attestationsMade"`
	TotalAttestationDelayMs  uint64 `json:"totalAttestationDelayMs"`
	SlashingEvents           uint64 `json:"slashingEvents"`
	PerformanceScoreBPS      uint32 `json:"performanceScoreBps"`
	LastActiveUnix           int64  `json:"lastActiveUnix"`
}
