package convert

import (
	"context"
	"errors"
	"time"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
)

// MERScore is one IIDX play as exported by the MER service.
type MERScore struct {
	MusicID   int    `json:"music_id"`
	PlayType  string `json:"play_type"` // SINGLE or DOUBLE
	DiffType  string `json:"diff_type"` // NORMAL, HYPER, ANOTHER, ...
	Score     int    `json:"score"`
	MissCount int    `json:"miss_count"` // -1 means not recorded
	ClearType string `json:"clear_type"`

	// UpdateTime is "2006-01-02 15:04:05" in JST.
	UpdateTime string `json:"update_time"`
}

const merTimeLayout = "2006-01-02 15:04:05"

var merTimeZone = time.FixedZone("JST", 9*60*60)

// MER converts one MER export row into a dry IIDX score.
func (c *Converter) MER(ctx context.Context, rec *MERScore) (*Output, error) {
	var playtype games.Playtype
	switch rec.PlayType {
	case "SINGLE":
		playtype = games.PlaytypeSP
	case "DOUBLE":
		playtype = games.PlaytypeDP
	default:
		return nil, InvalidScore(rec, "invalid MER play_type %q", rec.PlayType)
	}

	chart, err := c.resolver.ChartOnInGameID(ctx, games.IIDX, rec.MusicID, playtype, rec.DiffType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(rec, "no IIDX chart for music_id %d (%s %s)", rec.MusicID, playtype, rec.DiffType)
	}
	if err != nil {
		return nil, err
	}

	song, err := c.songForChart(ctx, chart, rec)
	if err != nil {
		return nil, err
	}

	// MER spells the top lamp differently from the canonical vocabulary.
	lamp := rec.ClearType
	if lamp == "FULLCOMBO CLEAR" {
		lamp = "FULL COMBO"
	}
	if err := ValidateLamp(games.IIDX, lamp, rec); err != nil {
		return nil, err
	}

	grade, percent, err := GradeAndPercent(games.IIDX, rec.Score, chart, rec)
	if err != nil {
		return nil, err
	}

	hitMeta := map[string]interface{}{}
	if rec.MissCount >= 0 {
		hitMeta["bp"] = rec.MissCount
	}

	var achieved time.Time
	if rec.UpdateTime != "" {
		achieved, err = time.ParseInLocation(merTimeLayout, rec.UpdateTime, merTimeZone)
		if err != nil {
			return nil, InvalidScore(rec, "invalid MER update_time %q", rec.UpdateTime)
		}
	}

	dry := &model.DryScore{
		Game:         games.IIDX,
		Service:      "MER",
		ImportType:   "api/mer-iidx",
		TimeAchieved: achieved,
		ScoreData: model.ScoreData{
			Score:   rec.Score,
			Percent: percent,
			Grade:   grade,
			Lamp:    lamp,
			HitData: map[string]int{},
			HitMeta: hitMeta,
		},
		ScoreMeta: map[string]string{},
	}

	return &Output{Song: song, Chart: chart, Dry: dry}, nil
}
