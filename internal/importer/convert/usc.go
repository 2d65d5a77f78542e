package convert

import (
	"context"
	"errors"
	"time"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
)

// USCScore is one play submitted by an unnamed_sdvx_clone IR client. The
// chart is identified by the batch-level chart hash, not per record.
type USCScore struct {
	Score     int     `json:"score"`
	Gauge     float64 `json:"gauge"` // 0..1 at end of play
	Timestamp int64   `json:"timestamp"`

	Crit  int `json:"crit"`
	Near  int `json:"near"`
	Error int `json:"error"`

	Options USCOptions `json:"options"`
}

// USCOptions are the play options an IR client reports.
type USCOptions struct {
	// GaugeType is 0 for normal gauge, 1 for hard gauge.
	GaugeType int  `json:"gaugeType"`
	Mirror    bool `json:"mirror"`
	Random    bool `json:"random"`
}

const uscMaxScore = 10_000_000

// uscLamp derives the lamp from score, error count and surviving gauge. USC
// reports no explicit clear state.
func uscLamp(rec *USCScore) string {
	switch {
	case rec.Score == uscMaxScore:
		return "PERFECT ULTIMATE CHAIN"
	case rec.Error == 0:
		return "ULTIMATE CHAIN"
	case rec.Options.GaugeType == 1:
		if rec.Gauge > 0 {
			return "EXCESSIVE CLEAR"
		}
		return "FAILED"
	default:
		if rec.Gauge >= 0.7 {
			return "CLEAR"
		}
		return "FAILED"
	}
}

// USC converts one IR submission into a dry USC score. chartHash identifies
// the chart for the whole batch.
func (c *Converter) USC(ctx context.Context, rec *USCScore, chartHash string) (*Output, error) {
	chart, err := c.resolver.ChartOnHash(ctx, games.USC, chartHash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(rec, "no USC chart for hash %s", chartHash)
	}
	if err != nil {
		return nil, err
	}

	song, err := c.songForChart(ctx, chart, rec)
	if err != nil {
		return nil, err
	}

	grade, percent, err := GradeAndPercent(games.USC, rec.Score, chart, rec)
	if err != nil {
		return nil, err
	}

	gaugeType := "NORMAL"
	if rec.Options.GaugeType == 1 {
		gaugeType = "HARD"
	}
	noteMod := "NORMAL"
	switch {
	case rec.Options.Mirror && rec.Options.Random:
		noteMod = "MIR-RAN"
	case rec.Options.Mirror:
		noteMod = "MIRROR"
	case rec.Options.Random:
		noteMod = "RANDOM"
	}

	dry := &model.DryScore{
		Game:         games.USC,
		Service:      "USC-ir",
		ImportType:   "ir/usc",
		TimeAchieved: time.Unix(rec.Timestamp, 0).UTC(),
		ScoreData: model.ScoreData{
			Score:   rec.Score,
			Percent: percent,
			Grade:   grade,
			Lamp:    uscLamp(rec),
			HitData: map[string]int{
				"critical": rec.Crit,
				"near":     rec.Near,
				"miss":     rec.Error,
			},
			HitMeta: map[string]interface{}{
				"gauge": rec.Gauge * 100,
			},
		},
		ScoreMeta: map[string]string{
			"gaugeType": gaugeType,
			"noteMod":   noteMod,
		},
	}

	return &Output{Song: song, Chart: chart, Dry: dry}, nil
}
