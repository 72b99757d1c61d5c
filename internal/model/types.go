// Package model defines shared data structures.
package model

import "time"

// Config defines settings for a local race.
type Config struct {
	Tier       string
	Opponents  int
	Countdown  int
	GraceSec   int
	PromptFile string
	Mode       string
	RaceIndex  int
}

// LobbyConfig defines settings for hosting or joining a networked race.
type LobbyConfig struct {
	Addr string
	Name string
}

// RaceResult captures the human player's outcome of a finished race.
type RaceResult struct {
	EndedAt     time.Time
	Mode        string
	Tier        string
	PromptChars int
	Entrants    int
	Position    int
	WPM         float64
	Accuracy    float64
	Errors      int
	Reward      int
	DurationMs  int64
}

// Filter narrows which race results a stats query returns.
type Filter struct {
	Mode  string
	Since *time.Time
	Last  int
}

// RaceAggregate summarizes a stored race for reporting.
type RaceAggregate struct {
	RaceID     int64
	EndedAt    time.Time
	Mode       string
	Position   int
	WPM        float64
	Accuracy   float64
	Reward     int
	DurationMs int64
}
