// Package games holds the static per-game configuration the pipeline
// dispatches on: lamp orderings, grade bands, rating parameters, class
// vocabularies and difficulty alias sets.
//
// Everything here is constant data. Nothing in this package performs I/O.
package games

import "fmt"

// Game identifies a supported game.
type Game string

// Supported games.
const (
	IIDX     Game = "iidx"
	SDVX     Game = "sdvx"
	DDR      Game = "ddr"
	CHUNITHM Game = "chunithm"
	GITADORA Game = "gitadora"
	USC      Game = "usc"
	BMS      Game = "bms"
)

// Playtype identifies a play-style variant within a game.
type Playtype string

// Known playtypes.
const (
	PlaytypeSP     Playtype = "SP"
	PlaytypeDP     Playtype = "DP"
	PlaytypeSingle Playtype = "Single"
	Playtype7K     Playtype = "7K"
	Playtype14K    Playtype = "14K"
	PlaytypeGita   Playtype = "Gita"
	PlaytypeDora   Playtype = "Dora"
)

// RatingParameters drive the generic rating curve for games without a
// bespoke formula.
type RatingParameters struct {
	FailHarshnessMultiplier float64
	PivotPercent            float64
	ClearExpMultiplier      float64
}

// GradeBand maps a lower percent bound (inclusive) to a grade. Bands must be
// listed in ascending bound order.
type GradeBand struct {
	LowerBound float64
	Grade      string
}

// Aggregation selects how a per-chart calculated value folds into a profile
// custom rating.
type Aggregation int

// Aggregation kinds.
const (
	AggregateTopNAverage Aggregation = iota
	AggregateTopNSum
	AggregateSum
)

// CustomRating describes one profile-level custom rating derived from a
// per-chart calculated data key.
type CustomRating struct {
	Key         string
	Aggregation Aggregation
	N           int
}

// Config is the full static configuration for one game.
type Config struct {
	Playtypes []Playtype

	// Lamps in ascending clear-quality order.
	Lamps []string

	// ClearLamp is the lowest lamp regarded as a clear.
	ClearLamp string

	// GradeBands maps percent to grade, ascending.
	GradeBands []GradeBand

	// PercentMax is the valid upper bound for percent, including any
	// explicit tolerance above 100.
	PercentMax float64

	Rating RatingParameters

	// ValidClasses maps class keys (e.g. "dan") to their maximum value.
	ValidClasses map[string]int

	// ClassesNonDecreasing suppresses class regressions during stats
	// recomputation when set.
	ClassesNonDecreasing bool

	// ProfileRatingN is the N used for top-N rating aggregation.
	ProfileRatingN int

	CustomRatings []CustomRating
}

// DifficultyAliases maps a logical difficulty name to the set of stored
// difficulty labels it expands to. Lookup must expand these before querying.
var DifficultyAliases = map[Game]map[string][]string{
	SDVX: {
		"ANY_INF": {"INF", "GRV", "HVN", "VVD"},
	},
}

var configs = map[Game]Config{
	IIDX: {
		Playtypes: []Playtype{PlaytypeSP, PlaytypeDP},
		Lamps: []string{
			"NO PLAY", "FAILED", "ASSIST CLEAR", "EASY CLEAR",
			"CLEAR", "HARD CLEAR", "EX HARD CLEAR", "FULL COMBO",
		},
		ClearLamp: "CLEAR",
		GradeBands: []GradeBand{
			{0, "F"}, {22.22, "E"}, {33.33, "D"}, {44.44, "C"},
			{55.55, "B"}, {66.66, "A"}, {77.77, "AA"}, {88.88, "AAA"},
			{94.44, "MAX-"}, {100, "MAX"},
		},
		PercentMax:     100,
		Rating:         RatingParameters{1.5, 0.7777, 1.25},
		ValidClasses:   map[string]int{"dan": 18},
		ProfileRatingN: 20,
		CustomRatings: []CustomRating{
			{Key: "BPI", Aggregation: AggregateTopNAverage, N: 20},
		},
	},
	SDVX: {
		Playtypes: []Playtype{PlaytypeSingle},
		Lamps: []string{
			"FAILED", "CLEAR", "EXCESSIVE CLEAR",
			"ULTIMATE CHAIN", "PERFECT ULTIMATE CHAIN",
		},
		ClearLamp: "CLEAR",
		GradeBands: []GradeBand{
			{0, "D"}, {70, "C"}, {80, "B"}, {87, "A"}, {90, "A+"},
			{93, "AA"}, {95, "AA+"}, {97, "AAA"}, {98, "AAA+"}, {99, "S"},
		},
		PercentMax:     100,
		Rating:         RatingParameters{1, 0.92, 1.45},
		ValidClasses:   map[string]int{"dan": 12},
		ProfileRatingN: 20,
		CustomRatings: []CustomRating{
			{Key: "VF6", Aggregation: AggregateTopNSum, N: 50},
		},
	},
	DDR: {
		Playtypes: []Playtype{PlaytypeSP, PlaytypeDP},
		Lamps: []string{
			"FAILED", "CLEAR", "LIFE4", "FULL COMBO",
			"GREAT FULL COMBO", "PERFECT FULL COMBO", "MARVELOUS FULL COMBO",
		},
		ClearLamp: "CLEAR",
		GradeBands: []GradeBand{
			{0, "D"}, {55, "C"}, {65, "B"}, {75, "A"},
			{85, "AA"}, {95, "AAA"},
		},
		PercentMax:     100,
		Rating:         RatingParameters{1, 0.9, 1},
		ValidClasses:   map[string]int{"dan": 20},
		ProfileRatingN: 20,
		CustomRatings: []CustomRating{
			{Key: "MFCP", Aggregation: AggregateSum},
		},
	},
	CHUNITHM: {
		Playtypes: []Playtype{PlaytypeSingle},
		Lamps: []string{
			"FAILED", "CLEAR", "FULL COMBO",
			"ALL JUSTICE", "ALL JUSTICE CRITICAL",
		},
		ClearLamp: "CLEAR",
		GradeBands: []GradeBand{
			{0, "D"}, {50, "C"}, {60, "B"}, {70, "BB"}, {80, "BBB"},
			{90, "A"}, {92.5, "AA"}, {95, "AAA"}, {97.5, "S"},
			{100, "SS"}, {100.75, "SSS"},
		},
		// CHUNITHM scores above the notional 1,000,000 push percent past
		// 100 by up to one percent.
		PercentMax:     101,
		Rating:         RatingParameters{1, 0.975, 1},
		ValidClasses:   map[string]int{"dan": 15, "emblem": 15},
		ProfileRatingN: 30,
	},
	GITADORA: {
		Playtypes: []Playtype{PlaytypeGita, PlaytypeDora},
		Lamps:     []string{"FAILED", "CLEAR", "FULL COMBO", "EXCELLENT"},
		ClearLamp: "CLEAR",
		GradeBands: []GradeBand{
			{0, "C"}, {63, "B"}, {73, "A"}, {80, "S"}, {95, "SS"}, {100, "MAX"},
		},
		PercentMax:     100,
		Rating:         RatingParameters{1, 0.8, 1.1},
		ValidClasses:   map[string]int{"colour": 15},
		ProfileRatingN: 50,
	},
	USC: {
		Playtypes: []Playtype{PlaytypeSingle},
		Lamps: []string{
			"FAILED", "CLEAR", "EXCESSIVE CLEAR",
			"ULTIMATE CHAIN", "PERFECT ULTIMATE CHAIN",
		},
		ClearLamp: "CLEAR",
		GradeBands: []GradeBand{
			{0, "D"}, {70, "C"}, {80, "B"}, {87, "A"}, {90, "A+"},
			{93, "AA"}, {95, "AA+"}, {97, "AAA"}, {98, "AAA+"}, {99, "S"},
		},
		PercentMax:     100,
		Rating:         RatingParameters{1, 0.92, 1.45},
		ValidClasses:   map[string]int{},
		ProfileRatingN: 20,
	},
	BMS: {
		Playtypes: []Playtype{Playtype7K, Playtype14K},
		Lamps: []string{
			"NO PLAY", "FAILED", "ASSIST CLEAR", "EASY CLEAR",
			"CLEAR", "HARD CLEAR", "EX HARD CLEAR", "FULL COMBO",
		},
		ClearLamp: "EASY CLEAR",
		GradeBands: []GradeBand{
			{0, "F"}, {22.22, "E"}, {33.33, "D"}, {44.44, "C"},
			{55.55, "B"}, {66.66, "A"}, {77.77, "AA"}, {88.88, "AAA"},
			{94.44, "MAX-"}, {100, "MAX"},
		},
		PercentMax:     100,
		Rating:         RatingParameters{1.5, 0.7777, 1.25},
		ValidClasses:   map[string]int{},
		ProfileRatingN: 20,
	},
}

// Conf returns the configuration for a game. It panics on unknown games;
// game values reaching this point are produced by the import-type registry,
// never by raw user input.
func Conf(game Game) Config {
	c, ok := configs[game]
	if !ok {
		panic(fmt.Sprintf("games: no configuration for game %q", game))
	}
	return c
}

// IsSupported reports whether game has a registered configuration.
func IsSupported(game Game) bool {
	_, ok := configs[game]
	return ok
}

// LampIndex returns the ordinal of lamp within the game's lamp ordering, or
// -1 if the lamp is unknown.
func LampIndex(game Game, lamp string) int {
	for i, l := range Conf(game).Lamps {
		if l == lamp {
			return i
		}
	}
	return -1
}

// ClearLampIndex returns the ordinal of the game's canonical clear lamp.
func ClearLampIndex(game Game) int {
	return LampIndex(game, Conf(game).ClearLamp)
}

// GradeFromPercent classifies percent into the game's grade bands.
func GradeFromPercent(game Game, percent float64) string {
	bands := Conf(game).GradeBands
	grade := bands[0].Grade
	for _, b := range bands {
		if percent >= b.LowerBound {
			grade = b.Grade
		}
	}
	return grade
}

// ExpandDifficulty resolves a logical difficulty to the set of stored
// difficulty labels it matches. Non-aliased difficulties map to themselves.
func ExpandDifficulty(game Game, difficulty string) []string {
	if aliases, ok := DifficultyAliases[game]; ok {
		if expanded, ok := aliases[difficulty]; ok {
			return expanded
		}
	}
	return []string{difficulty}
}
