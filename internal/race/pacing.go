package race

import (
	"math/rand"
	"time"
)

// Default jitter bounds applied when a profile leaves them unset.
const (
	defaultJitterLow  = 0.85
	defaultJitterHigh = 1.15
)

// Profile describes how a simulated participant advances: the closed WPM
// range its target speed is drawn from, and the multiplicative jitter bounds
// applied per tick. A profile with MinWPM == MaxWPM is a fixed-speed tier.
type Profile struct {
	Tier       string
	MinWPM     float64
	MaxWPM     float64
	JitterLow  float64
	JitterHigh float64
}

// DefaultProfile is the fallback for participant specs that arrive without a
// usable pacing profile. A single bad entrant must not abort the race.
func DefaultProfile() Profile {
	return Profile{Tier: "default", MinWPM: 45, MaxWPM: 65, JitterLow: defaultJitterLow, JitterHigh: defaultJitterHigh}
}

// Valid reports whether the profile carries a usable speed range.
func (p Profile) Valid() bool {
	return p.MaxWPM > 0 && p.MinWPM > 0 && p.MinWPM <= p.MaxWPM
}

func (p Profile) normalized() Profile {
	if !p.Valid() {
		return DefaultProfile()
	}
	if p.JitterLow <= 0 || p.JitterHigh <= 0 || p.JitterLow > p.JitterHigh {
		p.JitterLow = defaultJitterLow
		p.JitterHigh = defaultJitterHigh
	}
	return p
}

// DrawSpeed picks a target speed from the profile's closed WPM range. A
// fixed-speed tier returns its constant without consulting the source.
func (p Profile) DrawSpeed(rnd *rand.Rand) float64 {
	p = p.normalized()
	if p.MinWPM == p.MaxWPM {
		return p.MinWPM
	}
	return p.MinWPM + rnd.Float64()*(p.MaxWPM-p.MinWPM)
}

func (p Profile) jitterFactor(rnd *rand.Rand) float64 {
	p = p.normalized()
	if p.JitterLow == p.JitterHigh {
		return p.JitterLow
	}
	return p.JitterLow + rnd.Float64()*(p.JitterHigh-p.JitterLow)
}

// Advance computes the progress a simulated participant reaches after one
// tick. The target speed is converted to characters per second, scaled by the
// tick duration and the jitter factor, and expressed as a percentage of the
// target text. Progress never decreases and is clamped at 100, so the visible
// motion stays consistent regardless of how the tick rate is tuned.
func Advance(targetWPM, jitter float64, tick time.Duration, prior float64, textLen int) float64 {
	if textLen <= 0 || tick <= 0 || targetWPM <= 0 {
		return prior
	}
	if prior >= 100 {
		return 100
	}
	rate := targetWPM * 5 / 60
	expected := rate * tick.Seconds()
	inc := expected * jitter / float64(textLen) * 100
	if inc < 0 {
		inc = 0
	}
	next := prior + inc
	if next > 100 {
		return 100
	}
	return next
}
