// Package faction defines the pacing tiers simulated opponents draw from.
// Call sites configure data, not behavior: every tier is just a speed range
// and jitter bounds handed to the race engine.
package faction

import (
	"math/rand"
	"sort"

	"github.com/m4dpr0f/cjsr-sub002/internal/race"
)

// Tier names an opponent pacing profile.
type Tier struct {
	Name        string
	Description string
	Profile     race.Profile
}

var tiers = map[string]Tier{
	"hatchling": {
		Name:        "hatchling",
		Description: "gentle warm-up pace",
		Profile:     race.Profile{Tier: "hatchling", MinWPM: 25, MaxWPM: 45},
	},
	"steady": {
		Name:        "steady",
		Description: "fixed 60 WPM metronome",
		Profile:     race.Profile{Tier: "steady", MinWPM: 60, MaxWPM: 60},
	},
	"swift": {
		Name:        "swift",
		Description: "fast and consistent",
		Profile:     race.Profile{Tier: "swift", MinWPM: 75, MaxWPM: 90},
	},
	"wild": {
		Name:        "wild",
		Description: "anyone's race",
		Profile:     race.Profile{Tier: "wild", MinWPM: 40, MaxWPM: 110, JitterLow: 0.7, JitterHigh: 1.3},
	},
}

var opponentNames = []string{
	"Quill", "Vex", "Ember", "Saffron", "Talon", "Mariner", "Onyx", "Juniper",
}

// Tiers lists the available tiers sorted by name.
func Tiers() []Tier {
	out := make([]Tier, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProfileFor resolves a tier name. Unknown names report ok=false; callers
// fall back to the engine's default profile rather than failing the race.
func ProfileFor(name string) (race.Profile, bool) {
	tier, ok := tiers[name]
	if !ok {
		return race.DefaultProfile(), false
	}
	return tier.Profile, true
}

// Opponents builds n simulated entrant specs for a tier, with stable display
// names so lanes read consistently across a session.
func Opponents(tierName string, n int, rnd *rand.Rand) []race.Spec {
	profile, _ := ProfileFor(tierName)
	if n <= 0 {
		return nil
	}
	order := rnd.Perm(len(opponentNames))
	specs := make([]race.Spec, 0, n)
	for i := 0; i < n; i++ {
		name := opponentNames[order[i%len(order)]]
		specs = append(specs, race.Spec{Name: name, Profile: profile})
	}
	return specs
}
