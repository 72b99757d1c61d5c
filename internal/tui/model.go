// Package tui provides the Bubble Tea race interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/m4dpr0f/cjsr-sub002/internal/model"
	"github.com/m4dpr0f/cjsr-sub002/internal/race"
	"github.com/m4dpr0f/cjsr-sub002/internal/store"
)

const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model implements the Bubble Tea UI for a local race.
type Model struct {
	config  model.Config
	store   *store.Store
	session *race.Session

	snap race.Snapshot
	bar  progress.Model

	width  int
	height int

	humanFinish *race.FinishEvent
	saved       bool
}

// NewModel constructs a race TUI model over an assembled session.
func NewModel(cfg model.Config, st *store.Store, session *race.Session) *Model {
	m := &Model{
		config:  cfg,
		store:   st,
		session: session,
		bar:     progress.New(progress.WithDefaultGradient()),
		snap:    session.Snapshot(),
	}
	session.OnFinish(func(ev race.FinishEvent) {
		if ev.Human {
			cp := ev
			m.humanFinish = &cp
		}
	})
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = laneBarWidth(m.width)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		m.snap = m.session.Tick(time.Time(msg))
		if m.snap.Phase == race.PhaseFinished && !m.saved {
			m.saved = true
			m.saveResult()
		}
		return m, tickCmd()
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.session.Teardown()
		return m, tea.Quit
	case tea.KeyBackspace, tea.KeyDelete:
		m.session.SubmitKeystroke(race.Key{Backspace: true})
		return m, nil
	case tea.KeySpace:
		m.session.SubmitKeystroke(race.Key{Rune: ' '})
		return m, nil
	case tea.KeyRunes:
		if m.snap.Phase == race.PhaseFinished {
			for _, r := range msg.Runes {
				if r == 'q' {
					return m, tea.Quit
				}
			}
			return m, nil
		}
		for _, r := range msg.Runes {
			m.session.SubmitKeystroke(race.Key{Rune: r})
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.snap.Phase {
	case race.PhasePending:
		return footerStyle.Render("waiting for racers...")
	case race.PhaseCountdown:
		return m.viewCountdown()
	case race.PhaseActive:
		return m.viewActive()
	case race.PhaseFinished:
		return renderResults(m.snap.Participants)
	}
	return ""
}

func (m *Model) viewCountdown() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Get ready"))
	b.WriteString("\n\n")
	b.WriteString(countdownStyle.Render(fmt.Sprintf("  %d", m.snap.CountdownSec)))
	b.WriteString("\n\n")
	b.WriteString(m.viewLanes())
	return b.String()
}

func (m *Model) viewActive() string {
	target := m.session.Target()
	styled := buildStyledRunes(target, m.snap.Cursor, m.snap.Errored)
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(wrapStyledRunes(styled, width))
	b.WriteString("\n\n")
	b.WriteString(m.viewLanes())
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render(m.footerLine()))
	return b.String()
}

func (m *Model) viewLanes() string {
	return renderLanes(m.bar, m.snap.Participants)
}

func (m *Model) footerLine() string {
	var wpm, acc float64
	for _, p := range m.snap.Participants {
		if p.Human {
			wpm = p.WPM
			acc = p.Accuracy
			break
		}
	}
	return fmt.Sprintf("%.1f wpm   %.1f%% acc   %d errors   esc to quit",
		wpm, acc, m.snap.Errors)
}

// saveResult persists the human's outcome. Races the human abandoned or did
// not finish inside the grace window are stored without a placement.
func (m *Model) saveResult() {
	if m.store == nil {
		return
	}
	var human *race.Participant
	for i := range m.snap.Participants {
		if m.snap.Participants[i].Human {
			human = &m.snap.Participants[i]
			break
		}
	}
	if human == nil {
		return
	}
	result := model.RaceResult{
		EndedAt:     time.Now().UTC(),
		Mode:        m.config.Mode,
		Tier:        m.config.Tier,
		PromptChars: len(m.session.Target()),
		Entrants:    len(m.snap.Participants),
		Position:    human.Position,
		WPM:         human.WPM,
		Accuracy:    human.Accuracy,
		Errors:      m.snap.Errors,
		Reward:      human.Reward,
		DurationMs:  m.snap.ElapsedMs,
	}
	if human.FinishTimeMs != nil {
		result.DurationMs = *human.FinishTimeMs
	}
	if _, err := m.store.InsertRace(context.Background(), result); err != nil {
		logErrf("failed to save race: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
