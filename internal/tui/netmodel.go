package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/m4dpr0f/cjsr-sub002/internal/lobby"
	"github.com/m4dpr0f/cjsr-sub002/internal/model"
	"github.com/m4dpr0f/cjsr-sub002/internal/race"
	"github.com/m4dpr0f/cjsr-sub002/internal/store"
)

type lobbyEventMsg lobby.Event

type lobbyClosedMsg struct{}

func waitEvent(events <-chan lobby.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return lobbyClosedMsg{}
		}
		return lobbyEventMsg(ev)
	}
}

// NetModel implements the Bubble Tea UI for a race joined over a lobby. The
// host resolves the lifecycle and placements; this model is a view over its
// state broadcasts, plus a local cursor for the player's own typing.
type NetModel struct {
	client *lobby.Client
	store  *store.Store
	name   string

	participantID string
	cursor        *race.Cursor
	target        []rune

	firstKeyAt time.Time

	snap     race.Snapshot
	finishes []race.FinishEvent
	bar      progress.Model

	width  int
	height int

	err   error
	done  bool
	saved bool
}

// NewNetModel constructs a TUI model over a dialed lobby client.
func NewNetModel(client *lobby.Client, st *store.Store, name string) *NetModel {
	return &NetModel{
		client: client,
		store:  st,
		name:   name,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (m *NetModel) Init() tea.Cmd {
	return waitEvent(m.client.Events())
}

// Update implements tea.Model.
func (m *NetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = laneBarWidth(m.width)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case lobbyEventMsg:
		m.handleEvent(lobby.Event(msg))
		if m.done {
			return m, nil
		}
		return m, waitEvent(m.client.Events())
	case lobbyClosedMsg:
		m.done = true
		if m.err == nil {
			m.err = fmt.Errorf("connection closed by host")
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *NetModel) handleEvent(ev lobby.Event) {
	switch {
	case ev.Welcome != nil:
		m.participantID = ev.Welcome.ParticipantID
		m.target = []rune(ev.Welcome.Text)
		m.cursor = race.NewCursor(ev.Welcome.Text)
	case ev.State != nil:
		m.snap = *ev.State
		if m.snap.Phase == race.PhaseFinished && !m.saved {
			m.saved = true
			m.saveResult()
		}
	case ev.Finish != nil:
		m.finishes = append(m.finishes, *ev.Finish)
	case ev.Err != nil:
		m.err = ev.Err
	}
}

func (m *NetModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if err := m.client.Close(); err != nil {
			logErrf("failed to close connection: %v\n", err)
		}
		return m, tea.Quit
	case tea.KeyBackspace, tea.KeyDelete:
		m.applyKey(race.Key{Backspace: true})
		return m, nil
	case tea.KeySpace:
		m.applyKey(race.Key{Rune: ' '})
		return m, nil
	case tea.KeyRunes:
		if m.snap.Phase == race.PhaseFinished {
			for _, r := range msg.Runes {
				if r == 'q' {
					if err := m.client.Close(); err != nil {
						logErrf("failed to close connection: %v\n", err)
					}
					return m, tea.Quit
				}
			}
			return m, nil
		}
		for _, r := range msg.Runes {
			m.applyKey(race.Key{Rune: r})
		}
		return m, nil
	default:
		return m, nil
	}
}

// applyKey advances the local cursor and reports the new progress to the
// host, which remains the authority on placement.
func (m *NetModel) applyKey(k race.Key) {
	if m.cursor == nil || m.snap.Phase != race.PhaseActive || m.cursor.Completed() {
		return
	}
	res := m.cursor.Apply(k)
	if res.Accepted && m.firstKeyAt.IsZero() {
		m.firstKeyAt = time.Now()
	}
	ev := race.ProgressEvent{
		ParticipantID: m.participantID,
		Name:          m.name,
		Progress:      float64(m.cursor.Index()) / float64(m.cursor.Len()) * 100,
		WPM:           race.WPM(m.cursor.Index(), m.typingElapsed()),
		Accuracy:      race.Accuracy(m.cursor.Keypresses(), m.cursor.Errors()),
	}
	if err := m.client.SendProgress(ev); err != nil {
		m.err = err
	}
}

func (m *NetModel) typingElapsed() time.Duration {
	if m.firstKeyAt.IsZero() {
		return 0
	}
	return time.Since(m.firstKeyAt)
}

// View implements tea.Model.
func (m *NetModel) View() string {
	if m.err != nil && m.snap.Phase != race.PhaseFinished {
		return footerStyle.Render(fmt.Sprintf("lobby error: %v\npress ctrl+c to quit", m.err))
	}
	switch m.snap.Phase {
	case race.PhaseCountdown:
		var b strings.Builder
		b.WriteString(headingStyle.Render("Get ready"))
		b.WriteString("\n\n")
		b.WriteString(countdownStyle.Render(fmt.Sprintf("  %d", m.snap.CountdownSec)))
		b.WriteString("\n\n")
		b.WriteString(renderLanes(m.bar, m.lanes()))
		return b.String()
	case race.PhaseActive:
		return m.viewActive()
	case race.PhaseFinished:
		return renderResults(m.lanes())
	default:
		return footerStyle.Render("waiting for racers...")
	}
}

func (m *NetModel) viewActive() string {
	if m.cursor == nil {
		return footerStyle.Render("joining...")
	}
	styled := buildStyledRunes(m.target, m.cursor.Index(), m.cursor.Errored())
	width := m.width
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	b.WriteString(wrapStyledRunes(styled, width))
	b.WriteString("\n\n")
	b.WriteString(renderLanes(m.bar, m.lanes()))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d errors   esc to quit", m.cursor.Errors())))
	return b.String()
}

// lanes returns the host's participant view with the local player's lane
// overridden by local cursor state, so the player's own progress never lags
// a broadcast round-trip.
func (m *NetModel) lanes() []race.Participant {
	lanes := make([]race.Participant, len(m.snap.Participants))
	copy(lanes, m.snap.Participants)
	for i := range lanes {
		if lanes[i].ID != m.participantID {
			continue
		}
		lanes[i].Human = true
		if m.cursor != nil && !lanes[i].Finished() {
			local := float64(m.cursor.Index()) / float64(m.cursor.Len()) * 100
			if local > lanes[i].Progress {
				lanes[i].Progress = local
			}
		}
	}
	return lanes
}

func (m *NetModel) saveResult() {
	if m.store == nil {
		return
	}
	var self *race.Participant
	for i := range m.snap.Participants {
		if m.snap.Participants[i].ID == m.participantID {
			self = &m.snap.Participants[i]
			break
		}
	}
	if self == nil || m.cursor == nil {
		return
	}
	result := model.RaceResult{
		EndedAt:     time.Now().UTC(),
		Mode:        "online",
		PromptChars: len(m.target),
		Entrants:    len(m.snap.Participants),
		Position:    self.Position,
		WPM:         self.WPM,
		Accuracy:    self.Accuracy,
		Errors:      m.cursor.Errors(),
		Reward:      self.Reward,
		DurationMs:  m.snap.ElapsedMs,
	}
	if self.FinishTimeMs != nil {
		result.DurationMs = *self.FinishTimeMs
	}
	if _, err := m.store.InsertRace(context.Background(), result); err != nil {
		logErrf("failed to save race: %v\n", err)
	}
}
