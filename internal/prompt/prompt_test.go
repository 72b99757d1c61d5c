package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPickerReturnsFromBuiltinSet(t *testing.T) {
	p := NewPicker(nil)
	got := p.Pick()
	found := false
	for _, text := range builtin {
		if text == got {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("picked prompt not in builtin set: %q", got)
	}
}

func TestCampaignIndexBounds(t *testing.T) {
	if _, err := Campaign(-1); err == nil {
		t.Fatalf("expected error for negative index")
	}
	if _, err := Campaign(CampaignLength()); err == nil {
		t.Fatalf("expected error past the last race")
	}
	text, err := Campaign(0)
	if err != nil {
		t.Fatalf("campaign 0: %v", err)
	}
	if text == "" {
		t.Fatalf("empty campaign prompt")
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")
	content := "first prompt\n\n  \nsecond prompt\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write prompt file: %v", err)
	}
	prompts, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(prompts))
	}
	if prompts[0] != "first prompt" || prompts[1] != "second prompt" {
		t.Fatalf("unexpected prompts: %v", prompts)
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write prompt file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty prompt file")
	}
}
