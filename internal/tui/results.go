package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m4dpr0f/cjsr-sub002/internal/race"
)

// renderResults shows the final standings once a race has finished.
// Participants without a placement are listed after the finishers.
func renderResults(participants []race.Participant) string {
	placed := make([]race.Participant, 0, len(participants))
	unplaced := make([]race.Participant, 0)
	for _, p := range participants {
		if p.Finished() {
			placed = append(placed, p)
		} else {
			unplaced = append(unplaced, p)
		}
	}
	sort.Slice(placed, func(i, j int) bool { return placed[i].Position < placed[j].Position })

	var b strings.Builder
	b.WriteString(headingStyle.Render("Results"))
	b.WriteByte('\n')
	for _, p := range placed {
		secs := float64(*p.FinishTimeMs) / 1000.0
		line := fmt.Sprintf("  #%d %-12s %5.1f wpm  %5.1f%%  %5.1fs  +%d xp",
			p.Position, p.Name, p.WPM, p.Accuracy, secs, p.Reward)
		if p.Human {
			line = currentWordStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, p := range unplaced {
		fmt.Fprintf(&b, "   - %-12s %5.1f wpm  (did not finish)\n", p.Name, p.WPM)
	}
	b.WriteString(footerStyle.Render("press q to quit"))
	return b.String()
}
