package types

import "testing"

func TestNodeTierStrings(t *testing.T) {
	cases := map[NodeTier]string{
		LightNode:      "LightNode",
		FullNode:       "FullNode",
		Validator:      "Validator",
		SuperValidator: "SuperValidator",
	}
	for tier, want := range cases {
		if got := tier.String(); got != want {
			t.Errorf("tier %d: expected %s, got %s", tier, want, got)
		}
	}
}

func TestNodeTierStringUnknown(t *testing.T) {
	var tier NodeTier = 99
	if tier.String() != "Unknown" {
		t.Errorf("expected Unknown for out-of-range tier, got %s", tier.String())
	}
}

func TestCanProduceBlocksRequiresValidatorOrAbove(t *testing.T) {
	cases := map[NodeTier]bool{
		LightNode:      false,
		FullNode:       false,
		Validator:      true,
		SuperValidator: true,
	}
	for tier, want := range cases {
		n := &NodeInfo{Tier: tier}
		if got := n.CanProduceBlocks(); got != want {
			t.Errorf("tier %s: expected CanProduceBlocks=%v, got %v", tier, want, got)
		}
	}
}

func TestReceivesInfrastructureRewardsRequiresFullNodeOrAbove(t *testing.T) {
	cases := map[NodeTier]bool{
		LightNode:      false,
		FullNode:       true,
		Validator:      true,
		SuperValidator: true,
	}
	for tier, want := range cases {
		n := &NodeInfo{Tier: tier}
		if got := n.ReceivesInfrastructureRewards(); got != want {
			t.Errorf("tier %s: expected ReceivesInfrastructureRewards=%v, got %v", tier, want, got)
		}
	}
}

func TestReceivesValidatorRewardsRequiresValidatorOrAbove(t *testing.T) {
	cases := map[NodeTier]bool{
		LightNode:      false,
		FullNode:       false,
		Validator:      true,
		SuperValidator: true,
	}
	for tier, want := range cases {
		n := &NodeInfo{Tier: tier}
		if got := n.ReceivesValidatorRewards(); got != want {
			t.Errorf("tier %s: expected ReceivesValidatorRewards=%v, got %v", tier, want, got)
		}
	}
}
