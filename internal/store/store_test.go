package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m4dpr0f/cjsr-sub002/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cjsr.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertRaces(t *testing.T, st *Store, count int, mode string) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		result := model.RaceResult{
			EndedAt:     time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
			Mode:        mode,
			Tier:        "swift",
			PromptChars: 60,
			Entrants:    4,
			Position:    1 + i%3,
			WPM:         55 + float64(i),
			Accuracy:    97.5,
			Errors:      2,
			Reward:      50 + i,
			DurationMs:  30000,
		}
		if _, err := st.InsertRace(ctx, result); err != nil {
			t.Fatalf("insert race: %v", err)
		}
	}
}

func TestListRacesFilters(t *testing.T) {
	st := openTestStore(t)
	insertRaces(t, st, 3, "practice")
	insertRaces(t, st, 2, "campaign")

	ctx := context.Background()
	all, err := st.ListRaces(ctx, model.Filter{})
	if err != nil {
		t.Fatalf("list races: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("races = %d, want 5", len(all))
	}

	practice, err := st.ListRaces(ctx, model.Filter{Mode: "practice"})
	if err != nil {
		t.Fatalf("list practice: %v", err)
	}
	if len(practice) != 3 {
		t.Fatalf("practice races = %d, want 3", len(practice))
	}

	last, err := st.ListRaces(ctx, model.Filter{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("last races = %d, want 2", len(last))
	}
	if !last[0].EndedAt.Before(last[1].EndedAt) {
		t.Fatalf("expected oldest-first ordering: %v, %v", last[0].EndedAt, last[1].EndedAt)
	}

	since := time.Unix(0, 0).Add(90 * time.Second)
	recent, err := st.ListRaces(ctx, model.Filter{Since: &since, Mode: "practice"})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("recent races = %d, want 1", len(recent))
	}
}

func TestTotalExperience(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	total, err := st.TotalExperience(ctx)
	if err != nil {
		t.Fatalf("total experience: %v", err)
	}
	if total != 0 {
		t.Fatalf("empty store experience = %d, want 0", total)
	}

	insertRaces(t, st, 3, "practice") // rewards 50, 51, 52
	total, err = st.TotalExperience(ctx)
	if err != nil {
		t.Fatalf("total experience: %v", err)
	}
	if total != 153 {
		t.Fatalf("experience = %d, want 153", total)
	}
}
