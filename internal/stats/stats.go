// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/m4dpr0f/cjsr-sub002/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates stored races for the stats command.
type Summary struct {
	Races       int
	Wins        int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
	TotalReward int64
}

// Summarize computes a Summary over race aggregates.
func Summarize(races []model.RaceAggregate) Summary {
	var s Summary
	s.Races = len(races)
	if s.Races == 0 {
		return s
	}
	var totalWPM, totalAcc float64
	for _, race := range races {
		totalWPM += race.WPM
		totalAcc += race.Accuracy
		s.TotalReward += int64(race.Reward)
		if race.WPM > s.BestWPM {
			s.BestWPM = race.WPM
		}
		if race.Position == 1 {
			s.Wins++
		}
	}
	count := float64(s.Races)
	s.AvgWPM = totalWPM / count
	s.AvgAccuracy = totalAcc / count
	return s
}

// WPMSeries extracts the WPM values in stored order.
func WPMSeries(races []model.RaceAggregate) []float64 {
	out := make([]float64, len(races))
	for i, race := range races {
		out[i] = race.WPM
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the summary block for stored races.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Races == 0 {
		_, err := fmt.Fprintln(w, "No races found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Races: %d", s.Races),
		fmt.Sprintf("Wins: %d", s.Wins),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		fmt.Sprintf("Total XP: %d", s.TotalReward),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
