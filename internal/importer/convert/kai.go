package convert

import (
	"context"
	"errors"
	"time"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
)

// KaiSDVXScore is one SDVX play as returned by a Kai-family score API
// (FLO, EAG, MIN).
type KaiSDVXScore struct {
	MusicID         int    `json:"music_id"`
	MusicDifficulty int    `json:"music_difficulty"`
	ClearType       int    `json:"clear_type"`
	ScoreValue      int    `json:"score"`
	MaxChain        int    `json:"max_chain"`
	Critical        int    `json:"critical"`
	Near            int    `json:"near"`
	Error           int    `json:"error"`
	EarlyCount      *int   `json:"early,omitempty"`
	LateCount       *int   `json:"late,omitempty"`
	Timestamp       string `json:"timestamp"` // RFC 3339
}

// The fourth slot covers every version-specific top difficulty (INF, GRV,
// HVN, VVD); the lookup layer expands the alias.
var kaiSDVXDifficulties = map[int]string{
	0: "NOV",
	1: "ADV",
	2: "EXH",
	3: "ANY_INF",
	4: "MXM",
}

var kaiSDVXLamps = map[int]string{
	1: "FAILED",
	2: "CLEAR",
	3: "EXCESSIVE CLEAR",
	4: "ULTIMATE CHAIN",
	5: "PERFECT ULTIMATE CHAIN",
}

// KaiSDVX converts one Kai API record into a dry SDVX score. service names
// the concrete network ("FLO", "EAG", "MIN") for provenance.
func (c *Converter) KaiSDVX(ctx context.Context, rec *KaiSDVXScore, service string) (*Output, error) {
	difficulty, ok := kaiSDVXDifficulties[rec.MusicDifficulty]
	if !ok {
		return nil, InvalidScore(rec, "invalid kai music_difficulty %d", rec.MusicDifficulty)
	}

	lamp, ok := kaiSDVXLamps[rec.ClearType]
	if !ok {
		return nil, InvalidScore(rec, "invalid kai clear_type %d", rec.ClearType)
	}

	chart, err := c.resolver.ChartOnInGameID(ctx, games.SDVX, rec.MusicID, games.PlaytypeSingle, difficulty)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(rec, "no SDVX chart for music_id %d difficulty %s", rec.MusicID, difficulty)
	}
	if err != nil {
		return nil, err
	}

	song, err := c.songForChart(ctx, chart, rec)
	if err != nil {
		return nil, err
	}

	grade, percent, err := GradeAndPercent(games.SDVX, rec.ScoreValue, chart, rec)
	if err != nil {
		return nil, err
	}

	var achieved time.Time
	if rec.Timestamp != "" {
		achieved, err = time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return nil, InvalidScore(rec, "invalid kai timestamp %q", rec.Timestamp)
		}
	}

	hitMeta := map[string]interface{}{
		"maxCombo": rec.MaxChain,
	}
	if rec.EarlyCount != nil {
		hitMeta["fastCount"] = *rec.EarlyCount
	}
	if rec.LateCount != nil {
		hitMeta["slowCount"] = *rec.LateCount
	}

	dry := &model.DryScore{
		Game:         games.SDVX,
		Service:      service,
		ImportType:   "api/kai-sdvx",
		TimeAchieved: achieved,
		ScoreData: model.ScoreData{
			Score:   rec.ScoreValue,
			Percent: percent,
			Grade:   grade,
			Lamp:    lamp,
			HitData: map[string]int{
				"critical": rec.Critical,
				"near":     rec.Near,
				"miss":     rec.Error,
			},
			HitMeta: hitMeta,
		},
		ScoreMeta: map[string]string{},
	}

	return &Output{Song: song, Chart: chart, Dry: dry}, nil
}
