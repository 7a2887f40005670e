package model

import (
	"encoding/json"
	"testing"
)

func TestTier_Rank(t *testing.T) {
	exact := Tier{Kind: TierExact}
	normalized := Tier{Kind: TierNormalized}
	fuzzy := Tier{Kind: TierFuzzy, Score: 99}
	notFound := Tier{Kind: TierNotFound}

	if !(exact.Rank() > normalized.Rank() && normalized.Rank() > fuzzy.Rank()) {
		t.Error("Expected rank order exact > normalized > fuzzy")
	}
	if fuzzy.Rank() <= notFound.Rank() {
		t.Error("Expected any acceptance tier to outrank a rejection tier")
	}
}

func TestTier_Accepted(t *testing.T) {
	cases := []struct {
		tier Tier
		want bool
	}{
		{Tier{Kind: TierExact}, true},
		{Tier{Kind: TierNormalized}, true},
		{Tier{Kind: TierFuzzy, Score: 92}, true},
		{Tier{Kind: TierEmpty}, false},
		{Tier{Kind: TierNotFound}, false},
	}
	for _, c := range cases {
		if got := c.tier.Accepted(); got != c.want {
			t.Errorf("Tier %s: expected Accepted %v, got %v", c.tier, c.want, got)
		}
	}
}

func TestTier_JSONRoundTrip(t *testing.T) {
	for _, tier := range []Tier{
		{Kind: TierExact},
		{Kind: TierNormalized},
		{Kind: TierFuzzy, Score: 95},
		{Kind: TierNotFound},
	} {
		data, err := json.Marshal(tier)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		var back Tier
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if back != tier {
			t.Errorf("Expected %s to survive the round trip, got %s", tier, back)
		}
	}
}

func TestTier_MarshalForm(t *testing.T) {
	data, err := json.Marshal(Tier{Kind: TierFuzzy, Score: 93})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `"fuzzy_93"` {
		t.Errorf("Expected \"fuzzy_93\", got %s", data)
	}
}

func TestParseTier_Invalid(t *testing.T) {
	for _, s := range []string{"", "fuzzy_", "fuzzy_abc", "partial"} {
		if _, err := ParseTier(s); err == nil {
			t.Errorf("Expected error for %q, got nil", s)
		}
	}
}

func TestIsConfigurationError(t *testing.T) {
	err := ConfigErrorf("bad lengths: %d", 0)
	if !IsConfigurationError(err) {
		t.Error("Expected ConfigErrorf result to match")
	}
	if IsConfigurationError(json.Unmarshal([]byte("x"), &struct{}{})) {
		t.Error("Expected unrelated error not to match")
	}
}
