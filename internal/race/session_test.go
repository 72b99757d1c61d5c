package race

import (
	"strings"
	"testing"
	"time"
)

var t0 = time.Unix(1000, 0)

// newClockedSession builds a session whose internal clock is test-controlled.
func newClockedSession(t *testing.T, target string, specs []Spec, opts Options) (*Session, *time.Time) {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	s, err := NewSession(target, specs, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	clk := t0
	s.now = func() time.Time { return clk }
	return s, &clk
}

func startActive(t *testing.T, s *Session, clk *time.Time) {
	t.Helper()
	snap := s.Tick(*clk)
	if snap.Phase != PhaseCountdown {
		t.Fatalf("phase after first tick = %s, want countdown", snap.Phase)
	}
	*clk = clk.Add(DefaultCountdown)
	snap = s.Tick(*clk)
	if snap.Phase != PhaseActive {
		t.Fatalf("phase after countdown = %s, want active", snap.Phase)
	}
}

func TestSessionRejectsEmptyTarget(t *testing.T) {
	if _, err := NewSession("   ", nil, Options{}); err == nil {
		t.Fatalf("expected error for empty target text")
	}
}

func TestSessionPhasePath(t *testing.T) {
	s, clk := newClockedSession(t, "hello", []Spec{{Name: "me", Human: true}}, Options{})
	if snap := s.Snapshot(); snap.Phase != PhasePending {
		t.Fatalf("initial phase = %s, want pending", snap.Phase)
	}

	snap := s.Tick(*clk)
	if snap.Phase != PhaseCountdown {
		t.Fatalf("phase = %s, want countdown", snap.Phase)
	}
	if snap.CountdownSec != 3 {
		t.Fatalf("countdown = %d, want 3", snap.CountdownSec)
	}

	// Input during the countdown is silently dropped.
	if res := s.SubmitKeystroke(Key{Rune: 'h'}); res.Accepted {
		t.Fatalf("keystroke accepted during countdown")
	}

	*clk = clk.Add(time.Second)
	snap = s.Tick(*clk)
	if snap.Phase != PhaseCountdown || snap.CountdownSec != 2 {
		t.Fatalf("mid-countdown snapshot: phase=%s sec=%d", snap.Phase, snap.CountdownSec)
	}

	*clk = clk.Add(2 * time.Second)
	snap = s.Tick(*clk)
	if snap.Phase != PhaseActive {
		t.Fatalf("phase = %s, want active", snap.Phase)
	}
	if snap.Cursor != 0 {
		t.Fatalf("countdown keystroke leaked into cursor: %d", snap.Cursor)
	}
}

func TestHumanWinsFiftyCharScenario(t *testing.T) {
	target := strings.Repeat("abcde", 10) // 50 runes
	specs := []Spec{
		{Name: "me", Human: true},
		{Name: "pacer", Profile: Profile{Tier: "crawl", MinWPM: 1, MaxWPM: 1}},
	}
	s, clk := newClockedSession(t, target, specs, Options{})
	var events []FinishEvent
	s.OnFinish(func(ev FinishEvent) { events = append(events, ev) })
	startActive(t, s, clk)

	runes := []rune(target)
	for _, r := range runes[:49] {
		if res := s.SubmitKeystroke(Key{Rune: r}); !res.Accepted {
			t.Fatalf("keystroke %q rejected", r)
		}
	}
	*clk = clk.Add(30 * time.Second)
	res := s.SubmitKeystroke(Key{Rune: runes[49]})
	if !res.Completed {
		t.Fatalf("expected completion on final keystroke")
	}

	if len(events) != 1 {
		t.Fatalf("finish events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Position != 1 {
		t.Fatalf("position = %d, want 1", ev.Position)
	}
	if ev.Reward != 58 { // 8 + floor(50*1.0)
		t.Fatalf("reward = %d, want 58", ev.Reward)
	}
	if ev.WPM != 20 { // (50/5) / (30s/60s)
		t.Fatalf("wpm = %v, want 20", ev.WPM)
	}

	snap := s.Snapshot()
	human := snap.Participants[0]
	if human.Progress != 100 || human.Accuracy != 100 {
		t.Fatalf("human snapshot: progress=%v accuracy=%v", human.Progress, human.Accuracy)
	}
}

func TestSimultaneousFinishersGetDistinctPositions(t *testing.T) {
	specs := []Spec{
		{Name: "a", Profile: Profile{MinWPM: 100, MaxWPM: 100}},
		{Name: "b", Profile: Profile{MinWPM: 100, MaxWPM: 100}},
		{Name: "c", Profile: Profile{MinWPM: 100, MaxWPM: 100}},
	}
	s, clk := newClockedSession(t, "short text", specs, Options{MinEntrants: 3})
	var events []FinishEvent
	s.OnFinish(func(ev FinishEvent) { events = append(events, ev) })
	startActive(t, s, clk)

	// A huge tick pushes everyone past 100 in the same invocation.
	*clk = clk.Add(time.Minute)
	snap := s.Tick(*clk)
	if snap.Phase != PhaseFinished {
		t.Fatalf("phase = %s, want finished", snap.Phase)
	}
	if len(events) != 3 {
		t.Fatalf("finish events = %d, want 3", len(events))
	}
	seen := map[int]bool{}
	for _, ev := range events {
		if seen[ev.Position] {
			t.Fatalf("duplicate position %d", ev.Position)
		}
		seen[ev.Position] = true
	}
	if !seen[1] || !seen[2] || !seen[3] {
		t.Fatalf("positions not 1..3: %v", seen)
	}
	// Lane order breaks the tie.
	if events[0].Name != "a" || events[1].Name != "b" || events[2].Name != "c" {
		t.Fatalf("tie-break order wrong: %s %s %s", events[0].Name, events[1].Name, events[2].Name)
	}
}

func TestGracePeriodEndsRaceWithStragglers(t *testing.T) {
	specs := []Spec{
		{Name: "me", Human: true},
		{Name: "slow", Profile: Profile{MinWPM: 1, MaxWPM: 1}},
	}
	s, clk := newClockedSession(t, "ok", specs, Options{Grace: 5 * time.Second})
	startActive(t, s, clk)

	s.SubmitKeystroke(Key{Rune: 'o'})
	if res := s.SubmitKeystroke(Key{Rune: 'k'}); !res.Completed {
		t.Fatalf("expected human completion")
	}

	*clk = clk.Add(time.Second)
	if snap := s.Tick(*clk); snap.Phase != PhaseActive {
		t.Fatalf("race ended before grace elapsed: %s", snap.Phase)
	}
	*clk = clk.Add(5 * time.Second)
	snap := s.Tick(*clk)
	if snap.Phase != PhaseFinished {
		t.Fatalf("phase = %s, want finished after grace", snap.Phase)
	}
	straggler := snap.Participants[1]
	if straggler.Finished() || straggler.Position != 0 {
		t.Fatalf("straggler unexpectedly placed: %+v", straggler)
	}
}

func TestTeardownFreezesState(t *testing.T) {
	specs := []Spec{
		{Name: "me", Human: true},
		{Name: "npc", Profile: Profile{MinWPM: 80, MaxWPM: 80}},
	}
	s, clk := newClockedSession(t, "hello world", specs, Options{})
	startActive(t, s, clk)

	*clk = clk.Add(time.Second)
	s.Tick(*clk)
	s.SubmitKeystroke(Key{Rune: 'h'})
	before := s.Snapshot()

	s.Teardown()
	s.Teardown() // idempotent

	// A stale timer callback fires after teardown.
	*clk = clk.Add(10 * time.Second)
	after := s.Tick(*clk)
	if after.Phase != before.Phase {
		t.Fatalf("phase changed after teardown: %s -> %s", before.Phase, after.Phase)
	}
	for i := range before.Participants {
		if after.Participants[i].Progress != before.Participants[i].Progress {
			t.Fatalf("participant %d mutated after teardown: %v -> %v",
				i, before.Participants[i].Progress, after.Participants[i].Progress)
		}
	}
	if res := s.SubmitKeystroke(Key{Rune: 'e'}); res.Accepted {
		t.Fatalf("keystroke accepted after teardown")
	}
	s.ApplyRemote(ProgressEvent{ParticipantID: before.Participants[1].ID, Progress: 99})
	if snap := s.Snapshot(); snap.Participants[1].Progress != before.Participants[1].Progress {
		t.Fatalf("remote update mutated torn-down session")
	}
}

func TestApplyRemoteMergesMonotonically(t *testing.T) {
	s, clk := newClockedSession(t, "network race", nil, Options{MinEntrants: 2})

	p1, err := s.AddRemote("alice")
	if err != nil {
		t.Fatalf("add remote: %v", err)
	}
	p2, err := s.AddRemote("bob")
	if err != nil {
		t.Fatalf("add remote: %v", err)
	}
	var events []FinishEvent
	s.OnFinish(func(ev FinishEvent) { events = append(events, ev) })
	startActive(t, s, clk)

	if _, err := s.AddRemote("late"); err == nil {
		t.Fatalf("expected join rejection after start")
	}

	s.ApplyRemote(ProgressEvent{ParticipantID: p1.ID, Progress: 50, WPM: 70})
	s.ApplyRemote(ProgressEvent{ParticipantID: p1.ID, Progress: 30, WPM: 65})
	snap := s.Snapshot()
	if snap.Participants[0].Progress != 50 {
		t.Fatalf("stale update moved progress backwards: %v", snap.Participants[0].Progress)
	}

	s.ApplyRemote(ProgressEvent{ParticipantID: p1.ID, Progress: 100, WPM: 80})
	s.ApplyRemote(ProgressEvent{ParticipantID: p2.ID, Progress: 100, WPM: 60})
	if len(events) != 2 {
		t.Fatalf("finish events = %d, want 2", len(events))
	}
	if events[0].Position != 1 || events[1].Position != 2 {
		t.Fatalf("positions = %d,%d, want 1,2", events[0].Position, events[1].Position)
	}

	// Finished participants are pinned; repeated updates do nothing.
	s.ApplyRemote(ProgressEvent{ParticipantID: p1.ID, Progress: 100})
	if len(events) != 2 {
		t.Fatalf("finish event fired twice for the same participant")
	}
}

func TestMalformedSpecFallsBackToDefaultProfile(t *testing.T) {
	s, _ := newClockedSession(t, "fallback", []Spec{{Name: "npc"}}, Options{})
	def := DefaultProfile()
	p := s.Snapshot().Participants[0]
	if p.TargetWPM < def.MinWPM || p.TargetWPM > def.MaxWPM {
		t.Fatalf("target speed %v outside default range", p.TargetWPM)
	}
}
