// Package config holds the core's configuration contract: JSON-loadable
// structs with an explicit Validate method, following the same
// load-then-validate shape as the host chain's genesis config.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"aichain-core/chain/bps"
)

// TokenomicsConfig governs the emission controller and utility function.
type TokenomicsConfig struct {
	MaxSupplyTokens    int64    `json:"maxSupplyTokens"`
	BaseRewardTokens   int64    `json:"baseRewardTokens"`
	HalvingInterval    uint64   `json:"halvingInterval"`
	MaxExpectedTasks   uint64   `json:"maxExpectedTasks"`
	UtilityWeightsBPS  [3]uint32 `json:"utilityWeightsBps"` // task, difficulty, participation
	MinDailyEmission   int64    `json:"minDailyEmissionTokens"`
}

// DefaultTokenomicsConfig returns the spec's documented defaults.
func DefaultTokenomicsConfig() TokenomicsConfig {
	return TokenomicsConfig{
		MaxSupplyTokens:   21_000_000,
		BaseRewardTokens:  1000,
		HalvingInterval:   210_000,
		MaxExpectedTasks:  10_000,
		UtilityWeightsBPS: [3]uint32{5000, 3000, 2000},
		MinDailyEmission:  100,
	}
}

func (c TokenomicsConfig) Validate() error {
	if c.MaxSupplyTokens <= 0 {
		return fmt.Errorf("config: maxSupplyTokens must be positive")
	}
	if c.BaseRewardTokens < 0 {
		return fmt.Errorf("config: baseRewardTokens must be non-negative")
	}
	if c.HalvingInterval == 0 {
		return fmt.Errorf("config: halvingInterval must be positive")
	}
	if c.MaxExpectedTasks == 0 {
		return fmt.Errorf("config: maxExpectedTasks must be positive")
	}
	sum := uint32(0)
	for _, w := range c.UtilityWeightsBPS {
		sum += w
	}
	if sum != bps.Scale {
		return fmt.Errorf("config: utilityWeightsBps must sum to %d, got %d", bps.Scale, sum)
	}
	return nil
}

// DistributionConfig governs the reward distributor's per-role split.
type DistributionConfig struct {
	MinersBPS        uint32 `json:"minersBps"`
	ValidatorsBPS    uint32 `json:"validatorsBps"`
	DelegatorsBPS    uint32 `json:"delegatorsBps"`
	SubnetOwnersBPS  uint32 `json:"subnetOwnersBps"`
	DAOBPS           uint32 `json:"daoBps"`

	// LockBonusByPeriod maps a lock period in days to an additive BPS
	// bonus on a delegator's personal share.
	LockBonusByPeriod map[uint32]uint32 `json:"lockBonusBps"`
}

func DefaultDistributionConfig() DistributionConfig {
	return DistributionConfig{
		MinersBPS:       3500,
		ValidatorsBPS:   3000,
		DelegatorsBPS:   1200,
		SubnetOwnersBPS: 1000,
		DAOBPS:          1300,
		LockBonusByPeriod: map[uint32]uint32{
			30:  1000,
			90:  2500,
			180: 5000,
			365: 10_000,
		},
	}
}

func (c DistributionConfig) Validate() error {
	sum := c.MinersBPS + c.ValidatorsBPS + c.DelegatorsBPS + c.SubnetOwnersBPS + c.DAOBPS
	if sum != bps.Scale {
		return fmt.Errorf("config: distribution shares must sum to %d, got %d", bps.Scale, sum)
	}
	return nil
}

// LockBonusBPS returns the additive bonus BPS for a lock period in days,
// capped so the effective multiplier never exceeds 2x base (a bonus of
// bps.Scale).
func (c DistributionConfig) LockBonusBPS(periodDays uint32) uint32 {
	bonus := c.LockBonusBPS0(periodDays)
	if bonus > bps.Scale {
		return bps.Scale
	}
	return bonus
}

// LockBonusBPS0 looks up the exact configured bonus, or the richest
// tier not exceeding periodDays; 0 if none apply.
func (c DistributionConfig) LockBonusBPS0(periodDays uint32) uint32 {
	best := uint32(0)
	bestPeriod := uint32(0)
	for period, bonus := range c.LockBonusByPeriod {
		if period <= periodDays && period >= bestPeriod {
			bestPeriod = period
			best = bonus
		}
	}
	return best
}

// BurnConfig governs the burn manager's rates.
type BurnConfig struct {
	TxFeeBurnBPS               uint32 `json:"txFeeBurnBps"`
	SubnetRegistrationBurnBPS  uint32 `json:"subnetRegistrationBurnBps"`
	UnmetQuotaBurnBPS          uint32 `json:"unmetQuotaBurnBps"`
	SlashingBurnBPS            uint32 `json:"slashingBurnBps"`
}

func DefaultBurnConfig() BurnConfig {
	return BurnConfig{
		TxFeeBurnBPS:              5000,
		SubnetRegistrationBurnBPS: 5000,
		UnmetQuotaBurnBPS:         10_000,
		SlashingBurnBPS:           8000,
	}
}

func (c BurnConfig) Validate() error {
	for name, v := range map[string]uint32{
		"txFeeBurnBps":              c.TxFeeBurnBPS,
		"subnetRegistrationBurnBps": c.SubnetRegistrationBurnBPS,
		"unmetQuotaBurnBps":         c.UnmetQuotaBurnBPS,
		"slashingBurnBps":           c.SlashingBurnBPS,
	} {
		if v > bps.Scale {
			return fmt.Errorf("config: %s must be <= %d, got %d", name, bps.Scale, v)
		}
	}
	return nil
}

// ScoringConfig governs the scoring manager's weights and thresholds.
type ScoringConfig struct {
	MinerCompletionBPS   uint32 `json:"minerCompletionBps"`
	MinerLatencyBPS      uint32 `json:"minerLatencyBps"`
	MinerQualityBPS      uint32 `json:"minerQualityBps"`
	ValidatorBlockBPS    uint32 `json:"validatorBlockBps"`
	ValidatorAttestBPS   uint32 `json:"validatorAttestBps"`
	ValidatorUptimeBPS   uint32 `json:"validatorUptimeBps"`
	ScoreDecayBPS        uint32 `json:"scoreDecayBps"`
	MinTasksForScore     uint64 `json:"minTasksForScore"`
	LatencyTargetMs      uint64 `json:"latencyTargetMs"`
	LatencyPenaltyMs     uint64 `json:"latencyPenaltyMs"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MinerCompletionBPS: 4000,
		MinerLatencyBPS:    3000,
		MinerQualityBPS:    3000,
		ValidatorBlockBPS:  5000,
		ValidatorAttestBPS: 3000,
		ValidatorUptimeBPS: 2000,
		ScoreDecayBPS:      9900,
		MinTasksForScore:   10,
		LatencyTargetMs:    1000,
		LatencyPenaltyMs:   5000,
	}
}

func (c ScoringConfig) Validate() error {
	if c.MinerCompletionBPS+c.MinerLatencyBPS+c.MinerQualityBPS != bps.Scale {
		return fmt.Errorf("config: miner scoring weights must sum to %d", bps.Scale)
	}
	if c.ValidatorBlockBPS+c.ValidatorAttestBPS+c.ValidatorUptimeBPS != bps.Scale {
		return fmt.Errorf("config: validator scoring weights must sum to %d", bps.Scale)
	}
	if c.LatencyPenaltyMs <= c.LatencyTargetMs {
		return fmt.Errorf("config: latencyPenaltyMs must exceed latencyTargetMs")
	}
	return nil
}

// NodeTierConfig governs the stake thresholds for each tier, in whole
// tokens.
type NodeTierConfig struct {
	LightNodeMinStake     int64 `json:"lightNodeMinStakeTokens"`
	FullNodeMinStake      int64 `json:"fullNodeMinStakeTokens"`
	ValidatorMinStake     int64 `json:"validatorMinStakeTokens"`
	SuperValidatorMinStake int64 `json:"superValidatorMinStakeTokens"`
}

func DefaultNodeTierConfig() NodeTierConfig {
	return NodeTierConfig{
		LightNodeMinStake:      0,
		FullNodeMinStake:       10,
		ValidatorMinStake:      100,
		SuperValidatorMinStake: 1000,
	}
}

func (c NodeTierConfig) Validate() error {
	if !(c.LightNodeMinStake <= c.FullNodeMinStake &&
		c.FullNodeMinStake <= c.ValidatorMinStake &&
		c.ValidatorMinStake <= c.SuperValidatorMinStake) {
		return fmt.Errorf("config: node tier thresholds must be non-decreasing")
	}
	return nil
}

// RpcConfig governs the resilient RPC client.
type RpcConfig struct {
	URL                   string `json:"url"`
	TimeoutMs             uint64 `json:"timeoutMs"`
	MaxConnections        int    `json:"maxConnections"`
	MaxRetries            int    `json:"maxRetries"`
	InitialDelayMs        uint64 `json:"initialDelayMs"`
	BackoffBase           float64 `json:"backoffBase"`
	MaxDelayMs            uint64 `json:"maxDelayMs"`
	FailureThreshold      int    `json:"failureThreshold"`
	RecoveryTimeoutMs     uint64 `json:"recoveryTimeoutMs"`
	HalfOpenMaxCalls      int    `json:"halfOpenMaxCalls"`
	HealthCheckIntervalMs uint64 `json:"healthCheckIntervalMs"`
}

func DefaultRpcConfig() RpcConfig {
	return RpcConfig{
		TimeoutMs:             30_000,
		MaxConnections:        100,
		MaxRetries:            3,
		InitialDelayMs:        1000,
		BackoffBase:           2,
		MaxDelayMs:            30_000,
		FailureThreshold:      5,
		RecoveryTimeoutMs:     60_000,
		HalfOpenMaxCalls:      3,
		HealthCheckIntervalMs: 30_000,
	}
}

func (c RpcConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("config: rpc url must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: maxRetries must be non-negative")
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("config: failureThreshold must be positive")
	}
	if c.HalfOpenMaxCalls <= 0 {
		return fmt.Errorf("config: halfOpenMaxCalls must be positive")
	}
	return nil
}

// Config bundles every component's configuration, matching the
// per-process config file loaded by cmd/aichain-node.
type Config struct {
	Tokenomics   TokenomicsConfig   `json:"tokenomics"`
	Distribution DistributionConfig `json:"distribution"`
	Burn         BurnConfig         `json:"burn"`
	Scoring      ScoringConfig      `json:"scoring"`
	NodeTier     NodeTierConfig     `json:"nodeTier"`
	Rpc          RpcConfig          `json:"rpc"`
}

func Default() Config {
	return Config{
		Tokenomics:   DefaultTokenomicsConfig(),
		Distribution: DefaultDistributionConfig(),
		Burn:         DefaultBurnConfig(),
		Scoring:      DefaultScoringConfig(),
		NodeTier:     DefaultNodeTierConfig(),
		Rpc:          DefaultRpcConfig(),
	}
}

// Validate checks every sub-config in turn.
func (c Config) Validate() error {
	if err := c.Tokenomics.Validate(); err != nil {
		return err
	}
	if err := c.Distribution.Validate(); err != nil {
		return err
	}
	if err := c.Burn.Validate(); err != nil {
		return err
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if err := c.NodeTier.Validate(); err != nil {
		return err
	}
	if err := c.Rpc.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads a JSON config file, starting from defaults for any field the
// file omits, then validates the merged result.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}
