package scoring

import (
	"testing"

	"aichain-core/chain/config"
)

func testManager() *Manager {
	return NewManager(config.DefaultScoringConfig())
}

func TestMinerScoreZeroBelowMinTasks(t *testing.T) {
	m := testManager()
	for i := 0; i < 5; i++ {
		m.TaskCompleted("0xminer", 500, 9000, 1)
	}
	if got := m.MinerScore("0xminer"); got != 0 {
		t.Errorf("expected 0 below MinTasksForScore, got %d", got)
	}
}

func TestMinerScorePositiveAfterMinTasks(t *testing.T) {
	m := testManager()
	for i := 0; i < 10; i++ {
		m.TaskCompleted("0xminer", 500, 9000, 1)
	}
	score := m.MinerScore("0xminer")
	if score == 0 {
		t.Error("expected positive score after min tasks with good completion/latency/quality")
	}
	if score > 10_000 {
		t.Errorf("score must not exceed 10000 bps, got %d", score)
	}
}

func TestMinerScoreLatencyPenalty(t *testing.T) {
	fast := testManager()
	slow := testManager()
	for i := 0; i < 10; i++ {
		fast.TaskCompleted("0xfast", 100, 9000, 1)
		slow.TaskCompleted("0xslow", 6000, 9000, 1)
	}
	if fast.MinerScore("0xfast") <= slow.MinerScore("0xslow") {
		t.Error("expected faster miner to score higher than a slower one, all else equal")
	}
}

func TestTaskFailedCountsTowardDenominator(t *testing.T) {
	m := testManager()
	for i := 0; i < 9; i++ {
		m.TaskFailed("0xminer", 1)
	}
	if got := m.MinerScore("0xminer"); got != 0 {
		t.Errorf("expected 0 with 9 failed tasks, got %d", got)
	}
	m.TaskFailed("0xminer", 1)
	// 10 total tasks, 0 completed: completion bps = 0, so score stays 0.
	if got := m.MinerScore("0xminer"); got != 0 {
		t.Errorf("expected 0 score with zero completions, got %d", got)
	}
}

func TestValidatorScoreBlockProduction(t *testing.T) {
	m := testManager()
	m.BlockProduced("0xval", 1)
	m.BlockProduced("0xval", 2)
	m.BlockMissed("0xval", 3)
	score := m.ValidatorScore("0xval")
	if score == 0 {
		t.Error("expected positive validator score with 2/3 blocks produced")
	}
}

func TestSlashingReducesValidatorScore(t *testing.T) {
	clean := testManager()
	slashed := testManager()
	for i := 0; i < 5; i++ {
		clean.BlockProduced("0xclean", 1)
		slashed.BlockProduced("0xslashed", 1)
	}
	slashed.SlashingEvent("0xslashed", 1)

	if slashed.ValidatorScore("0xslashed") >= clean.ValidatorScore("0xclean") {
		t.Error("expected slashed validator to score lower than an equivalent clean one")
	}
}

func TestApplyDecayShrinksScores(t *testing.T) {
	m := testManager()
	for i := 0; i < 10; i++ {
		m.TaskCompleted("0xminer", 100, 9000, 1)
	}
	before := m.MinerScore("0xminer")
	m.ApplyDecay()
	after := m.MinerScore("0xminer")
	if after > before {
		t.Errorf("expected decay to shrink or hold score, got %d before and %d after", before, after)
	}
}

func TestMinerScoresSnapshot(t *testing.T) {
	m := testManager()
	for i := 0; i < 10; i++ {
		m.TaskCompleted("0xAAA", 100, 9000, 1)
	}
	scores := m.MinerScores()
	if _, ok := scores["0xaaa"]; !ok {
		t.Error("expected MinerScores to key by normalized lowercase address")
	}
}

func TestUnknownAddressScoresAreZero(t *testing.T) {
	m := testManager()
	if m.MinerScore("0xunknown") != 0 {
		t.Error("expected 0 for unknown miner")
	}
	if m.ValidatorScore("0xunknown") != 0 {
		t.Error("expected 0 for unknown validator")
	}
}
