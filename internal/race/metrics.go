package race

import "time"

// WPM computes words per minute using the 5-characters-per-word convention.
// Elapsed is measured from the first accepted keystroke; before that it is
// undefined and WPM reports 0.
func WPM(correctChars int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	return (float64(correctChars) / 5.0) / minutes
}

// Accuracy computes the percentage of attempted keystrokes that were correct,
// clamped to [0,100]. With no keystrokes yet it reports 100, so the UI shows
// an optimistic default instead of an undefined value.
func Accuracy(keypresses, errors int) float64 {
	if keypresses <= 0 {
		return 100
	}
	acc := 100 * float64(keypresses-errors) / float64(keypresses)
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}
