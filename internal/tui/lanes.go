package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/m4dpr0f/cjsr-sub002/internal/race"
)

const (
	laneNameWidth = 10
	laneInfoWidth = 14
)

// renderLanes draws one progress bar per participant in lane order.
func renderLanes(bar progress.Model, participants []race.Participant) string {
	var b strings.Builder
	for i, p := range participants {
		name := p.Name
		if p.Human {
			name = name + " *"
		}
		if len([]rune(name)) > laneNameWidth {
			name = string([]rune(name)[:laneNameWidth])
		}
		info := fmt.Sprintf("%5.1f wpm", p.WPM)
		if p.Finished() {
			info = fmt.Sprintf("#%d  %5.1f wpm", p.Position, p.WPM)
		}
		fmt.Fprintf(&b, "%-*s %s %*s", laneNameWidth, name, bar.ViewAs(p.Progress/100), laneInfoWidth, info)
		if i < len(participants)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// laneBarWidth sizes the progress bars to the terminal, leaving room for the
// name and info columns.
func laneBarWidth(totalWidth int) int {
	width := totalWidth - laneNameWidth - laneInfoWidth - 4
	if width < 10 {
		width = 10
	}
	if width > 60 {
		width = 60
	}
	return width
}
