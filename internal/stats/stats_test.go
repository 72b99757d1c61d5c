package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/m4dpr0f/cjsr-sub002/internal/model"
)

func sampleRaces() []model.RaceAggregate {
	base := time.Unix(0, 0)
	return []model.RaceAggregate{
		{RaceID: 1, EndedAt: base, Mode: "practice", Position: 1, WPM: 50, Accuracy: 95, Reward: 58},
		{RaceID: 2, EndedAt: base.Add(time.Minute), Mode: "practice", Position: 3, WPM: 60, Accuracy: 97, Reward: 41},
		{RaceID: 3, EndedAt: base.Add(2 * time.Minute), Mode: "campaign", Position: 1, WPM: 70, Accuracy: 99, Reward: 120},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRaces())
	if s.Races != 3 {
		t.Fatalf("races = %d, want 3", s.Races)
	}
	if s.Wins != 2 {
		t.Fatalf("wins = %d, want 2", s.Wins)
	}
	if s.AvgWPM != 60 {
		t.Fatalf("avg wpm = %v, want 60", s.AvgWPM)
	}
	if s.BestWPM != 70 {
		t.Fatalf("best wpm = %v, want 70", s.BestWPM)
	}
	if s.TotalReward != 219 {
		t.Fatalf("total reward = %d, want 219", s.TotalReward)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Races != 0 || s.TotalReward != 0 {
		t.Fatalf("empty summary not zero: %+v", s)
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No races found.") {
		t.Fatalf("unexpected empty output: %s", buf.String())
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5, 4.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("moving average[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	// Window 1 is a copy.
	flat := MovingAverage(values, 1)
	for i := range values {
		if flat[i] != values[i] {
			t.Fatalf("window-1 average changed values")
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("empty sparkline = %q", got)
	}
	got := Sparkline([]float64{0, 50, 100})
	if len(got) != 3 {
		t.Fatalf("sparkline length = %d, want 3", len(got))
	}
	if got[0] != sparkChars[0] || got[2] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("sparkline extremes wrong: %q", got)
	}
	flat := Sparkline([]float64{5, 5, 5})
	if len(flat) != 3 || flat[0] != flat[1] || flat[1] != flat[2] {
		t.Fatalf("flat sparkline wrong: %q", flat)
	}
}

func TestRenderHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, sampleRaces()); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"When", "Mode", "practice", "campaign", "58", "120"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("history output missing %q:\n%s", needle, out)
		}
	}
}

func TestRenderWPMPlotShape(t *testing.T) {
	var buf bytes.Buffer
	values := []float64{40, 45, 50, 55, 60, 65, 70}
	if err := RenderWPMPlot(&buf, values, 2, 40, 5); err != nil {
		t.Fatalf("render plot: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Title + 5 plot rows + trailing blank collapsed by TrimRight.
	if len(lines) != 6 {
		t.Fatalf("plot lines = %d, want 6:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "WPM curve") {
		t.Fatalf("missing plot title: %s", lines[0])
	}
}
