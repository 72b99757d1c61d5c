// Package race implements the typing race engine: keystroke validation,
// live metrics, simulated-opponent pacing, the session lifecycle, and
// placement/reward resolution.
package race

// Key is a single input event fed to the cursor.
type Key struct {
	Rune      rune
	Backspace bool
}

// KeyResult reports what a keystroke did.
type KeyResult struct {
	Accepted  bool
	Completed bool
}

// Cursor validates keystrokes against a target text. A wrong character is
// rejected and sets an error flag; the cursor does not advance past it until
// the player types the expected character.
type Cursor struct {
	target     []rune
	typed      []rune
	errored    bool
	errors     int
	keypresses int
	completed  bool
}

// NewCursor creates a cursor over the target text.
func NewCursor(target string) *Cursor {
	return &Cursor{target: []rune(target)}
}

// Apply consumes one keystroke. Backspace steps back one position and clears
// the error flag. A correct printable rune advances the cursor; a wrong one
// is rejected and counted as an error. Control runes are ignored.
func (c *Cursor) Apply(k Key) KeyResult {
	if c.completed {
		return KeyResult{}
	}
	if k.Backspace {
		if len(c.typed) > 0 {
			c.typed = c.typed[:len(c.typed)-1]
		}
		c.errored = false
		return KeyResult{}
	}
	if !printable(k.Rune) {
		return KeyResult{}
	}
	pos := len(c.typed)
	if pos >= len(c.target) {
		return KeyResult{}
	}
	c.keypresses++
	if k.Rune != c.target[pos] {
		c.errored = true
		c.errors++
		return KeyResult{}
	}
	c.typed = append(c.typed, k.Rune)
	c.errored = false
	if len(c.typed) == len(c.target) {
		c.completed = true
		return KeyResult{Accepted: true, Completed: true}
	}
	return KeyResult{Accepted: true}
}

// Index returns the current cursor position in runes.
func (c *Cursor) Index() int { return len(c.typed) }

// Len returns the target length in runes.
func (c *Cursor) Len() int { return len(c.target) }

// Errored reports whether the last keystroke was rejected and not yet corrected.
func (c *Cursor) Errored() bool { return c.errored }

// Errors returns the number of rejected keystrokes so far.
func (c *Cursor) Errors() int { return c.errors }

// Keypresses returns the number of printable keystrokes attempted, including
// rejected ones. Backspace is not counted.
func (c *Cursor) Keypresses() int { return c.keypresses }

// Completed reports whether the whole target has been typed correctly.
func (c *Cursor) Completed() bool { return c.completed }

// Target returns the target text runes.
func (c *Cursor) Target() []rune { return c.target }

func printable(r rune) bool {
	return r == ' ' || r > ' '
}
