package convert

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
)

// FervidexScore is one play as reported by the fervidex IIDX client.
type FervidexScore struct {
	// Chart is the compact chart reference, e.g. "spa" for SP ANOTHER.
	Chart string `json:"chart"`

	// EntryID is the arcade in-game song identifier.
	EntryID int `json:"entry_id"`

	ExScore   int  `json:"ex_score"`
	ClearType int  `json:"clear_type"`
	MissCount *int `json:"miss_count,omitempty"`

	PGreat int `json:"pgreat"`
	Great  int `json:"great"`
	Good   int `json:"good"`
	Bad    int `json:"bad"`
	Poor   int `json:"poor"`

	Slow     int `json:"slow"`
	Fast     int `json:"fast"`
	MaxCombo int `json:"max_combo"`

	// Gauge is the life-gauge trajectory over the play, in percent.
	Gauge []float64 `json:"gauge"`

	Option *FervidexOptions `json:"option,omitempty"`
}

// FervidexOptions are the raw play-option enumerations fervidex reports.
type FervidexOptions struct {
	Gauge  *int `json:"gauge,omitempty"`
	Range  *int `json:"range,omitempty"`
	Style  *int `json:"style,omitempty"`
	Assist *int `json:"assist,omitempty"`
}

var fervidexLamps = map[int]string{
	0: "NO PLAY",
	1: "FAILED",
	2: "ASSIST CLEAR",
	3: "EASY CLEAR",
	4: "CLEAR",
	5: "HARD CLEAR",
	6: "EX HARD CLEAR",
	7: "FULL COMBO",
}

// Canonical vocabularies for fervidex play options. Absent raw values take
// the game default rather than being omitted, so stored metadata is uniform.
var (
	fervidexGauges = map[int]string{
		0: "ASSISTED EASY", 1: "EASY", 2: "NORMAL", 3: "HARD", 4: "EX-HARD",
	}
	fervidexRanges = map[int]string{
		0: "NONE", 1: "SUDDEN+", 2: "HIDDEN+", 3: "SUD+ HID+", 4: "LIFT", 5: "LIFT SUD+",
	}
	fervidexStyles = map[int]string{
		0: "NONRAN", 1: "RANDOM", 2: "R-RANDOM", 3: "S-RANDOM", 4: "MIRROR",
	}
	fervidexAssists = map[int]string{
		0: "NO ASSIST", 1: "AUTO SCRATCH", 2: "LEGACY NOTE", 3: "FULL ASSIST",
	}
)

const (
	defaultFervidexGauge  = "NORMAL"
	defaultFervidexRange  = "NONE"
	defaultFervidexStyle  = "NONRAN"
	defaultFervidexAssist = "NO ASSIST"
)

// SplitFervidexChartRef decodes a compact chart reference like "spa" into a
// playtype and difficulty. A reference fervidex should never emit is an
// integration bug on our side, so it is classified internal.
func SplitFervidexChartRef(ref string, record interface{}) (games.Playtype, string, error) {
	var playtype games.Playtype
	switch {
	case strings.HasPrefix(ref, "sp"):
		playtype = games.PlaytypeSP
	case strings.HasPrefix(ref, "dp"):
		playtype = games.PlaytypeDP
	default:
		return "", "", Internal(record, "invalid fervidex chart ref %q", ref)
	}

	var difficulty string
	switch ref[2:] {
	case "b":
		difficulty = "BEGINNER"
	case "n":
		difficulty = "NORMAL"
	case "h":
		difficulty = "HYPER"
	case "a":
		difficulty = "ANOTHER"
	case "l":
		difficulty = "LEGGENDARIA"
	default:
		return "", "", Internal(record, "invalid fervidex chart ref %q", ref)
	}
	return playtype, difficulty, nil
}

func fervidexOption(raw *int, table map[int]string, fallback, name string, record interface{}) (string, error) {
	if raw == nil {
		return fallback, nil
	}
	v, ok := table[*raw]
	if !ok {
		return "", InvalidScore(record, "invalid fervidex %s option %d", name, *raw)
	}
	return v, nil
}

// Fervidex converts one fervidex play into a dry IIDX score.
func (c *Converter) Fervidex(ctx context.Context, rec *FervidexScore) (*Output, error) {
	if len(rec.Chart) < 3 {
		return nil, Internal(rec, "invalid fervidex chart ref %q", rec.Chart)
	}
	playtype, difficulty, err := SplitFervidexChartRef(rec.Chart, rec)
	if err != nil {
		return nil, err
	}

	chart, err := c.resolver.ChartOnInGameID(ctx, games.IIDX, rec.EntryID, playtype, difficulty)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(rec, "no IIDX chart for in-game ID %d (%s %s)", rec.EntryID, playtype, difficulty)
	}
	if err != nil {
		return nil, err
	}

	song, err := c.songForChart(ctx, chart, rec)
	if err != nil {
		return nil, err
	}

	lamp, ok := fervidexLamps[rec.ClearType]
	if !ok {
		return nil, InvalidScore(rec, "invalid fervidex clear_type %d", rec.ClearType)
	}

	grade, percent, err := GradeAndPercent(games.IIDX, rec.ExScore, chart, rec)
	if err != nil {
		return nil, err
	}

	gauge, err := fervidexOption(rec.Option.gaugePtr(), fervidexGauges, defaultFervidexGauge, "gauge", rec)
	if err != nil {
		return nil, err
	}
	rng, err := fervidexOption(rec.Option.rangePtr(), fervidexRanges, defaultFervidexRange, "range", rec)
	if err != nil {
		return nil, err
	}
	style, err := fervidexOption(rec.Option.stylePtr(), fervidexStyles, defaultFervidexStyle, "style", rec)
	if err != nil {
		return nil, err
	}
	assist, err := fervidexOption(rec.Option.assistPtr(), fervidexAssists, defaultFervidexAssist, "assist", rec)
	if err != nil {
		return nil, err
	}

	hitMeta := map[string]interface{}{
		"fastCount": rec.Fast,
		"slowCount": rec.Slow,
		"maxCombo":  rec.MaxCombo,
	}
	if len(rec.Gauge) > 0 {
		final := rec.Gauge[len(rec.Gauge)-1]
		if final > 100 {
			return nil, InvalidScore(rec, "fervidex gauge value %.2f exceeds 100", final)
		}
		hitMeta["gauge"] = final
		hitMeta["gaugeHistory"] = rec.Gauge
	}
	if rec.MissCount != nil {
		hitMeta["bp"] = *rec.MissCount
	}

	dry := &model.DryScore{
		Game:       games.IIDX,
		Service:    "fervidex",
		ImportType: "ir/fervidex",
		ScoreData: model.ScoreData{
			Score:   rec.ExScore,
			Percent: percent,
			Grade:   grade,
			Lamp:    lamp,
			HitData: map[string]int{
				"pgreat": rec.PGreat,
				"great":  rec.Great,
				"good":   rec.Good,
				"bad":    rec.Bad,
				"poor":   rec.Poor,
			},
			HitMeta: hitMeta,
		},
		ScoreMeta: map[string]string{
			"gauge":  gauge,
			"range":  rng,
			"random": style,
			"assist": assist,
		},
	}

	return &Output{Song: song, Chart: chart, Dry: dry}, nil
}

func (o *FervidexOptions) gaugePtr() *int {
	if o == nil {
		return nil
	}
	return o.Gauge
}

func (o *FervidexOptions) rangePtr() *int {
	if o == nil {
		return nil
	}
	return o.Range
}

func (o *FervidexOptions) stylePtr() *int {
	if o == nil {
		return nil
	}
	return o.Style
}

func (o *FervidexOptions) assistPtr() *int {
	if o == nil {
		return nil
	}
	return o.Assist
}
