package types

import "testing"

func TestAppendLogAccumulates(t *testing.T) {
	r := &Receipt{Status: StatusSuccess}
	r.AppendLog("reward_split", map[string]string{"to": "miner"})
	r.AppendLog("reward_split", map[string]string{"to": "validator"})

	if len(r.Logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(r.Logs))
	}
	if r.Logs[0].Fields["to"] != "miner" {
		t.Errorf("unexpected first log fields %+v", r.Logs[0].Fields)
	}
	if r.Logs[1].Fields["to"] != "validator" {
		t.Errorf("unexpected second log fields %+v", r.Logs[1].Fields)
	}
}

func TestAppendLogOnZeroValueReceipt(t *testing.T) {
	var r Receipt
	r.AppendLog("init", nil)
	if len(r.Logs) != 1 {
		t.Fatalf("expected AppendLog to work on a zero-value receipt, got %d logs", len(r.Logs))
	}
}

func TestReceiptStatusValues(t *testing.T) {
	if StatusFailed != 0 {
		t.Error("expected StatusFailed == 0")
	}
	if StatusSuccess != 1 {
		t.Error("expected StatusSuccess == 1")
	}
}
