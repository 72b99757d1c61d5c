package race

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the session lifecycle state. The only legal path is
// pending -> countdown -> active -> finished; no phase is revisited.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseCountdown Phase = "countdown"
	PhaseActive    Phase = "active"
	PhaseFinished  Phase = "finished"
)

// Defaults applied by NewSession when an Options field is zero.
const (
	DefaultCountdown  = 3 * time.Second
	DefaultGrace      = 10 * time.Second
	DefaultRewardBase = 8
)

// Options tunes a session. The zero value gives a single-player practice
// session with the default countdown, grace period, and reward base.
type Options struct {
	Countdown   time.Duration
	Grace       time.Duration
	MinEntrants int
	RewardBase  int
	RaceBonus   int
	Seed        int64
}

// FinishEvent is emitted exactly once per participant, at the moment its
// progress reaches 100.
type FinishEvent struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Human         bool    `json:"human"`
	Position      int     `json:"position"`
	FinishTimeMs  int64   `json:"finishTimeMs"`
	Reward        int     `json:"reward"`
	WPM           float64 `json:"wpm"`
}

// ProgressEvent is an inbound update for a networked participant. The
// lifecycle merges these as if the peer were locally simulated.
type ProgressEvent struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Progress      float64 `json:"progress"`
	WPM           float64 `json:"wpm"`
	Accuracy      float64 `json:"accuracy"`
}

// Snapshot is a consistent view of the session for rendering. Participant
// records are copies; mutating them does not touch the session.
type Snapshot struct {
	Phase        Phase         `json:"phase"`
	CountdownSec int           `json:"countdownSec,omitempty"`
	ElapsedMs    int64         `json:"elapsedMs"`
	Cursor       int           `json:"cursor"`
	Errored      bool          `json:"errored"`
	Errors       int           `json:"errors"`
	Participants []Participant `json:"participants"`
}

// Session owns the race state machine and all the mutation paths into it.
// Hosts drive it: a timer calls Tick, the input surface calls SubmitKeystroke,
// a network feed calls ApplyRemote. After Teardown every entry point is a
// no-op, so a stale timer callback can never resurrect a dead session.
type Session struct {
	mu   sync.Mutex
	opts Options
	rnd  *rand.Rand
	now  func() time.Time

	target []rune
	cursor *Cursor

	phase         Phase
	countdownAt   time.Time
	startedAt     time.Time
	firstKeyAt    time.Time
	lastTick      time.Time
	graceDeadline time.Time
	lastElapsedMs int64

	participants []*Participant
	profiles     map[string]Profile
	humanID      string

	nextPosition int
	onFinish     func(FinishEvent)
	torn         bool
}

// NewSession creates a race over the target text with the given entrants.
// Entrants keep their insertion order as lane order. Starting a session with
// an empty target is the one unrecoverable misuse and fails fast.
func NewSession(target string, specs []Spec, opts Options) (*Session, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("race: target text is empty")
	}
	if opts.Countdown <= 0 {
		opts.Countdown = DefaultCountdown
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.MinEntrants <= 0 {
		opts.MinEntrants = 1
	}
	if opts.RewardBase <= 0 {
		opts.RewardBase = DefaultRewardBase
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		opts:         opts,
		rnd:          rand.New(rand.NewSource(seed)),
		now:          time.Now,
		target:       []rune(target),
		cursor:       NewCursor(target),
		phase:        PhasePending,
		profiles:     map[string]Profile{},
		nextPosition: 1,
	}
	for _, spec := range specs {
		s.addLocked(spec)
	}
	return s, nil
}

func (s *Session) addLocked(spec Spec) *Participant {
	id := spec.ID
	if id == "" {
		id = uuid.New().String()
	}
	name := spec.Name
	if name == "" {
		name = "racer-" + id[:minInt(8, len(id))]
	}
	p := &Participant{
		ID:       id,
		Name:     name,
		Human:    spec.Human,
		Accuracy: 100,
	}
	if spec.Human {
		if s.humanID == "" {
			s.humanID = id
		}
	} else {
		profile := spec.Profile.normalized()
		s.profiles[id] = profile
		p.TargetWPM = profile.DrawSpeed(s.rnd)
		p.WPM = p.TargetWPM
	}
	s.participants = append(s.participants, p)
	return p
}

// OnFinish registers the callback fired once per participant completion.
// The callback runs outside the session lock.
func (s *Session) OnFinish(fn func(FinishEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// AddRemote registers a networked participant. Peers can only join while the
// session is still assembling.
func (s *Session) AddRemote(name string) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn {
		return Participant{}, fmt.Errorf("race: session is torn down")
	}
	if s.phase != PhasePending {
		return Participant{}, fmt.Errorf("race: race already underway")
	}
	p := s.addLocked(Spec{Name: name})
	p.Remote = true
	return *p, nil
}

// SubmitKeystroke feeds one key from the human entrant. Keys arriving in any
// phase other than active are silently ignored; the controller is defensive
// against out-of-order UI events.
func (s *Session) SubmitKeystroke(k Key) KeyResult {
	s.mu.Lock()
	if s.torn || s.phase != PhaseActive || s.humanID == "" {
		s.mu.Unlock()
		return KeyResult{}
	}
	res := s.cursor.Apply(k)
	now := s.now()
	if res.Accepted && s.firstKeyAt.IsZero() {
		s.firstKeyAt = now
	}
	var event *FinishEvent
	if p := s.byIDLocked(s.humanID); p != nil && !p.Finished() {
		cp := *p
		cp.Progress = float64(s.cursor.Index()) / float64(s.cursor.Len()) * 100
		cp.WPM = WPM(s.cursor.Index(), s.typingElapsedLocked(now))
		cp.Accuracy = Accuracy(s.cursor.Keypresses(), s.cursor.Errors())
		*p = cp
		if res.Completed {
			event = s.finishLocked(p, now)
		}
	}
	s.mu.Unlock()
	s.fire(event)
	return res
}

// Tick advances the state machine once. The host's timer owns the schedule;
// the session only ever reacts. The returned snapshot is what the host should
// render for this frame.
func (s *Session) Tick(now time.Time) Snapshot {
	s.mu.Lock()
	if s.torn {
		snap := s.snapshotLocked(now)
		s.mu.Unlock()
		return snap
	}
	var events []FinishEvent
	switch s.phase {
	case PhasePending:
		if len(s.participants) >= s.opts.MinEntrants {
			s.phase = PhaseCountdown
			s.countdownAt = now
		}
	case PhaseCountdown:
		if now.Sub(s.countdownAt) >= s.opts.Countdown {
			s.phase = PhaseActive
			s.startedAt = now
			s.lastTick = now
		}
	case PhaseActive:
		events = s.advanceLocked(now)
	case PhaseFinished:
		// Frozen; reads only.
	}
	snap := s.snapshotLocked(now)
	s.mu.Unlock()
	for i := range events {
		s.fire(&events[i])
	}
	return snap
}

func (s *Session) advanceLocked(now time.Time) []FinishEvent {
	dt := now.Sub(s.lastTick)
	if dt < 0 {
		dt = 0
	}
	s.lastTick = now
	s.lastElapsedMs = now.Sub(s.startedAt).Milliseconds()

	var events []FinishEvent
	for _, p := range s.participants {
		if p.Human || p.Remote || p.Finished() {
			continue
		}
		profile := s.profiles[p.ID]
		cp := *p
		cp.Progress = Advance(p.TargetWPM, profile.jitterFactor(s.rnd), dt, p.Progress, len(s.target))
		*p = cp
		if cp.Progress >= 100 {
			if ev := s.finishLocked(p, now); ev != nil {
				events = append(events, *ev)
			}
		}
	}
	if p := s.byIDLocked(s.humanID); p != nil && !p.Finished() {
		cp := *p
		cp.WPM = WPM(s.cursor.Index(), s.typingElapsedLocked(now))
		cp.Accuracy = Accuracy(s.cursor.Keypresses(), s.cursor.Errors())
		*p = cp
	}
	if s.shouldFinishLocked(now) {
		s.phase = PhaseFinished
	}
	return events
}

func (s *Session) shouldFinishLocked(now time.Time) bool {
	if len(s.participants) == 0 {
		return false
	}
	all := true
	for _, p := range s.participants {
		if !p.Finished() {
			all = false
			break
		}
	}
	if all {
		return true
	}
	return !s.graceDeadline.IsZero() && !now.Before(s.graceDeadline)
}

// ApplyRemote merges a peer progress update. Progress is monotonic: a late or
// reordered update can never move a participant backwards, and a finished
// participant is pinned at 100.
func (s *Session) ApplyRemote(ev ProgressEvent) {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return
	}
	p := s.byIDLocked(ev.ParticipantID)
	if p == nil {
		if s.phase != PhasePending {
			s.mu.Unlock()
			return
		}
		p = s.addLocked(Spec{ID: ev.ParticipantID, Name: ev.Name})
		p.Remote = true
	}
	var event *FinishEvent
	if !p.Finished() {
		cp := *p
		if ev.Progress > cp.Progress {
			cp.Progress = math.Min(ev.Progress, 100)
		}
		cp.WPM = ev.WPM
		cp.Accuracy = ev.Accuracy
		*p = cp
		if s.phase == PhaseActive && cp.Progress >= 100 {
			event = s.finishLocked(p, s.now())
		}
	}
	s.mu.Unlock()
	s.fire(event)
}

// finishLocked assigns the next position and computes the reward. Positions
// are strictly increasing in resolver-invocation order, so two participants
// crossing 100 on the same tick still get distinct places.
func (s *Session) finishLocked(p *Participant, now time.Time) *FinishEvent {
	if p.Finished() {
		return nil
	}
	ms := now.Sub(s.startedAt).Milliseconds()
	cp := *p
	cp.Progress = 100
	cp.FinishTimeMs = &ms
	cp.Position = s.nextPosition
	s.nextPosition++
	cp.Reward = Reward(len(s.target), cp.Position, s.opts.RewardBase+s.opts.RaceBonus)
	*p = cp

	if s.graceDeadline.IsZero() && (cp.Human || s.humanID == "") {
		s.graceDeadline = now.Add(s.opts.Grace)
	}
	return &FinishEvent{
		ParticipantID: cp.ID,
		Name:          cp.Name,
		Human:         cp.Human,
		Position:      cp.Position,
		FinishTimeMs:  ms,
		Reward:        cp.Reward,
		WPM:           cp.WPM,
	}
}

// Teardown stops the session for good. It is idempotent, and every later
// Tick, SubmitKeystroke, or ApplyRemote leaves the state untouched.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torn = true
}

// Snapshot returns the current state without advancing anything.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.now())
}

// Target returns the session's target text runes.
func (s *Session) Target() []rune {
	return s.target
}

func (s *Session) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Phase:        s.phase,
		ElapsedMs:    s.lastElapsedMs,
		Cursor:       s.cursor.Index(),
		Errored:      s.cursor.Errored(),
		Errors:       s.cursor.Errors(),
		Participants: make([]Participant, len(s.participants)),
	}
	for i, p := range s.participants {
		snap.Participants[i] = *p
	}
	if s.phase == PhaseCountdown {
		remaining := s.opts.Countdown - now.Sub(s.countdownAt)
		snap.CountdownSec = int(math.Ceil(remaining.Seconds()))
		if snap.CountdownSec < 0 {
			snap.CountdownSec = 0
		}
	}
	return snap
}

func (s *Session) typingElapsedLocked(now time.Time) time.Duration {
	if s.firstKeyAt.IsZero() {
		return 0
	}
	return now.Sub(s.firstKeyAt)
}

func (s *Session) byIDLocked(id string) *Participant {
	if id == "" {
		return nil
	}
	for _, p := range s.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) fire(ev *FinishEvent) {
	if ev == nil {
		return
	}
	s.mu.Lock()
	fn := s.onFinish
	s.mu.Unlock()
	if fn != nil {
		fn(*ev)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
