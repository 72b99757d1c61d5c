package race

// Spec describes one entrant at session creation. A spec without a usable
// pacing profile falls back to DefaultProfile rather than failing the race.
type Spec struct {
	ID      string
	Name    string
	Human   bool
	Profile Profile
}

// Participant is one racer's live state. Reads always see a whole record:
// each tick builds a modified copy and swaps it in, never mutating fields
// one by one under a reader's feet.
type Participant struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Human     bool    `json:"human"`
	Remote    bool    `json:"remote"`
	TargetWPM float64 `json:"-"`

	Progress float64 `json:"progress"`
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`

	FinishTimeMs *int64 `json:"finishTimeMs,omitempty"`
	Position     int    `json:"position,omitempty"`
	Reward       int    `json:"reward,omitempty"`
}

// Finished reports whether the participant has crossed 100% progress.
func (p Participant) Finished() bool { return p.FinishTimeMs != nil }
