package race

import (
	"testing"
	"time"
)

func TestWPM(t *testing.T) {
	cases := []struct {
		name    string
		correct int
		elapsed time.Duration
		want    float64
	}{
		{"no input", 0, 0, 0},
		{"zero elapsed", 25, 0, 0},
		{"fifty chars in thirty seconds", 50, 30 * time.Second, 20},
		{"one word per minute", 5, time.Minute, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WPM(tc.correct, tc.elapsed)
			if got != tc.want {
				t.Fatalf("WPM(%d, %v) = %v, want %v", tc.correct, tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestAccuracy(t *testing.T) {
	cases := []struct {
		name       string
		keypresses int
		errors     int
		want       float64
	}{
		{"optimistic before input", 0, 0, 100},
		{"all correct", 10, 0, 100},
		{"half wrong", 10, 5, 50},
		{"all wrong", 4, 4, 0},
		{"clamped below zero", 2, 5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Accuracy(tc.keypresses, tc.errors)
			if got != tc.want {
				t.Fatalf("Accuracy(%d, %d) = %v, want %v", tc.keypresses, tc.errors, got, tc.want)
			}
		})
	}
}
