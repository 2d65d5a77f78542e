// Package model contains the canonical documents passed between pipeline
// layers and persisted by the repository.
package model

import (
	"time"

	"github.com/okian/seiseki/internal/domain/games"
)

// ChartData holds the service-specific identifiers a chart can be resolved
// by. Which fields are populated depends on the game.
type ChartData struct {
	// InGameID is the identifier used by arcade services.
	InGameID int `json:"inGameID,omitempty"`

	// HashMD5 and HashSHA256 identify BMS charts by content hash.
	HashMD5    string `json:"hashMD5,omitempty"`
	HashSHA256 string `json:"hashSHA256,omitempty"`

	// SongHash is the checksum-like identifier DDR uses on e-amusement.
	SongHash string `json:"songHash,omitempty"`

	// NoteCount determines the theoretical maximum score for EX-score
	// based games.
	NoteCount int `json:"noteCount,omitempty"`
}

// Chart identifies a playable unit: one difficulty variant of a song.
// Charts are immutable once published; primary-flag transfer during
// re-releases is catalog maintenance, outside this module.
type Chart struct {
	ChartID    string         `json:"chartID"`
	SongID     int            `json:"songID"`
	Game       games.Game     `json:"game"`
	Playtype   games.Playtype `json:"playtype"`
	Difficulty string         `json:"difficulty"`
	Level      string         `json:"level"`
	LevelNum   float64        `json:"levelNum"`

	// IsPrimary marks the canonical chart among versioned re-releases.
	// Exactly one chart per (game, song, playtype, difficulty) is primary.
	IsPrimary bool     `json:"isPrimary"`
	Versions  []string `json:"versions,omitempty"`

	Data ChartData `json:"data"`
}

// Song is the title/artist record charts reference.
type Song struct {
	SongID int        `json:"songID"`
	Game   games.Game `json:"game"`
	Title  string     `json:"title"`
	Artist string     `json:"artist"`
}

// ScoreData is the normalized per-play result block.
type ScoreData struct {
	Score   int     `json:"score"`
	Percent float64 `json:"percent"`
	Grade   string  `json:"grade"`
	Lamp    string  `json:"lamp"`

	// HitData is the per-judgement hit breakdown; keys are game-specific.
	HitData map[string]int `json:"hitData"`

	// HitMeta is free-form auxiliary play data (fast/slow, gauge, bp).
	HitMeta map[string]interface{} `json:"hitMeta"`
}

// DryScore is the canonical output of conversion: a score with no identity
// yet. It is produced once per raw record and never mutated afterwards.
type DryScore struct {
	Game       games.Game `json:"game"`
	Service    string     `json:"service"`
	ImportType string     `json:"importType"`
	Comment    string     `json:"comment,omitempty"`

	// TimeAchieved is when the play happened. Zero means unknown.
	TimeAchieved time.Time `json:"timeAchieved"`

	ScoreData ScoreData `json:"scoreData"`

	// ScoreMeta records play options: gauge type, random type, assist
	// flags. Keys and values are canonical vocabulary, never raw
	// service enumerations.
	ScoreMeta map[string]string `json:"scoreMeta"`
}

// Score is a DryScore wrapped with identity once durably stored. Immutable
// after write; corrections happen via new scores.
type Score struct {
	DryScore

	ScoreID  string         `json:"scoreID"`
	UserID   int            `json:"userID"`
	ChartID  string         `json:"chartID"`
	SongID   int            `json:"songID"`
	Playtype games.Playtype `json:"playtype"`

	// CalculatedData holds per-score derived statistics. Absent keys mean
	// "not applicable" for this score.
	CalculatedData map[string]float64 `json:"calculatedData"`
}

// PBComposition records which underlying scores a personal best was
// composed from, per axis.
type PBComposition struct {
	ScorePB string `json:"scorePB"`
	LampPB  string `json:"lampPB"`
}

// PBScore is the canonical per (user, chart) personal best: the
// best-score-valued play merged with the best-lamp-valued play, which need
// not be the same play. Recomputed, never manually edited.
type PBScore struct {
	UserID   int            `json:"userID"`
	ChartID  string         `json:"chartID"`
	SongID   int            `json:"songID"`
	Game     games.Game     `json:"game"`
	Playtype games.Playtype `json:"playtype"`

	ScoreData      ScoreData          `json:"scoreData"`
	CalculatedData map[string]float64 `json:"calculatedData"`

	ComposedFrom PBComposition `json:"composedFrom"`
}

// GameStats is the per (user, game, playtype) aggregate profile record.
type GameStats struct {
	UserID   int            `json:"userID"`
	Game     games.Game     `json:"game"`
	Playtype games.Playtype `json:"playtype"`

	Rating     float64 `json:"rating"`
	LampRating float64 `json:"lampRating"`

	CustomRatings map[string]float64 `json:"customRatings"`
	Classes       map[string]int     `json:"classes"`
}

// ClassDelta records one class key transitioning between values during an
// import. Old is -1 when the user had no prior value for the key.
type ClassDelta struct {
	Game     games.Game     `json:"game"`
	Playtype games.Playtype `json:"playtype"`
	Key      string         `json:"key"`
	Old      int            `json:"old"`
	New      int            `json:"new"`
}

// TierlistEntry is one externally curated (chart, lamp-or-score) value used
// to override raw chart level.
type TierlistEntry struct {
	ChartID string `json:"chartID"`

	// Kind is "score" or "lamp".
	Kind string `json:"kind"`

	// Key is the lamp the entry applies to; empty for score entries.
	Key string `json:"key,omitempty"`

	Value float64 `json:"value"`
}

// BPIData carries the per-chart reference scores the BPI index compares
// against.
type BPIData struct {
	ChartID       string   `json:"chartID"`
	KaidenAverage int      `json:"kaidenAverage"`
	WorldRecord   int      `json:"worldRecord"`
	Coefficient   *float64 `json:"coefficient,omitempty"`
}

// ImportFailure is one classified per-record failure.
type ImportFailure struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Record  interface{} `json:"record"`
}

// ImportResult summarizes one orchestration run. Processed counts every
// record the run attempted, successes and classified failures alike.
type ImportResult struct {
	Processed   int             `json:"processed"`
	Failures    []ImportFailure `json:"failures"`
	ClassDeltas []ClassDelta    `json:"classDeltas"`
	ScoreIDs    []string        `json:"scoreIDs"`
	Fatal       bool            `json:"fatal"`
}
