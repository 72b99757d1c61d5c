package faction

import (
	"math/rand"
	"testing"
)

func TestProfileForKnownTiers(t *testing.T) {
	for _, tier := range Tiers() {
		profile, ok := ProfileFor(tier.Name)
		if !ok {
			t.Fatalf("tier %q not resolvable", tier.Name)
		}
		if !profile.Valid() {
			t.Fatalf("tier %q carries an invalid profile: %+v", tier.Name, profile)
		}
	}
}

func TestProfileForUnknownTierFallsBack(t *testing.T) {
	profile, ok := ProfileFor("nonsense")
	if ok {
		t.Fatalf("unknown tier resolved")
	}
	if !profile.Valid() {
		t.Fatalf("fallback profile invalid: %+v", profile)
	}
}

func TestOpponentsCountAndNames(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	specs := Opponents("swift", 3, rnd)
	if len(specs) != 3 {
		t.Fatalf("opponents = %d, want 3", len(specs))
	}
	for _, spec := range specs {
		if spec.Human {
			t.Fatalf("opponent marked human: %+v", spec)
		}
		if spec.Name == "" {
			t.Fatalf("opponent without a name")
		}
	}
	if Opponents("swift", 0, rnd) != nil {
		t.Fatalf("expected nil for zero opponents")
	}
}
