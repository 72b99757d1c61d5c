// Package prompt supplies target texts for races.
package prompt

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
)

// Builtin prompts used when no prompt file is configured.
var builtin = []string{
	"The quick brown fox jumps over the lazy dog while the scribe records every word.",
	"A steady hand and a steadier eye win more races than raw speed ever will.",
	"Ink dries fast on the track, so write clean the first time through.",
	"Every letter you place is a stride; every error is a stumble you must walk back.",
	"Racing is typing and typing is racing, at least until the last character lands.",
	"Keep your eyes two words ahead and your fingers one word behind.",
	"The wild tier never runs the same race twice, which is exactly the point.",
	"Short sentences sprint; long sentences are marathons with commas for water stations.",
}

// Campaign prompts are ordered: the race index selects one, and the reward
// bonus scales with how deep into the sequence the player is.
var campaign = []string{
	"First light on the track and the letters are still warming up.",
	"The second stretch narrows; precision matters more than pace here.",
	"Halfway through the circuit the pack thins and the prompts grow teeth.",
	"Few racers read this far; fewer still type it without a stumble.",
	"The final gate takes every word you have and gives back only a finish line.",
}

// Picker selects prompts with a seeded source so practice runs vary.
type Picker struct {
	rnd     *rand.Rand
	prompts []string
}

// NewPicker builds a picker over the given prompts, or the builtin set when
// none are supplied.
func NewPicker(prompts []string) *Picker {
	if len(prompts) == 0 {
		prompts = builtin
	}
	return &Picker{
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		prompts: prompts,
	}
}

// Pick returns one prompt.
func (p *Picker) Pick() string {
	return p.prompts[p.rnd.Intn(len(p.prompts))]
}

// Campaign returns the prompt for a zero-based race index.
func Campaign(index int) (string, error) {
	if index < 0 || index >= len(campaign) {
		return "", fmt.Errorf("campaign race %d does not exist (have %d)", index, len(campaign))
	}
	return campaign[index], nil
}

// CampaignLength reports how many campaign races exist.
func CampaignLength() int { return len(campaign) }

// Load reads one prompt per line from a file, skipping blanks.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for a read-only prompt file.
			_ = cerr
		}
	}()

	var prompts []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("prompt file is empty")
	}
	return prompts, nil
}
