package convert

import (
	"context"
	"errors"
	"time"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
)

// ArtemisChunithmPlaylog is one row of an ARTEMiS chunithm playlog table.
type ArtemisChunithmPlaylog struct {
	MusicID int `json:"musicId"`

	// Level is the difficulty index, 0 BASIC through 4 ULTIMA. WORLD'S END
	// rows are filtered before conversion.
	Level int `json:"level"`

	Score        int  `json:"score"`
	IsClear      bool `json:"isClear"`
	IsFullCombo  bool `json:"isFullCombo"`
	IsAllJustice bool `json:"isAllJustice"`

	JudgeCritical int `json:"judgeCritical"`
	JudgeJustice  int `json:"judgeJustice"`
	JudgeAttack   int `json:"judgeAttack"`
	JudgeGuilty   int `json:"judgeGuilty"`

	MaxCombo int `json:"maxCombo"`

	UserPlayDate time.Time `json:"userPlayDate"`
}

var artemisChunithmDifficulties = map[int]string{
	0: "BASIC",
	1: "ADVANCED",
	2: "EXPERT",
	3: "MASTER",
	4: "ULTIMA",
}

// artemisChunithmLamp derives the lamp from the playlog clear flags. An
// all-justice play with zero non-critical justices is the top lamp.
func artemisChunithmLamp(rec *ArtemisChunithmPlaylog) string {
	switch {
	case rec.IsAllJustice && rec.JudgeJustice == 0:
		return "ALL JUSTICE CRITICAL"
	case rec.IsAllJustice:
		return "ALL JUSTICE"
	case rec.IsFullCombo:
		return "FULL COMBO"
	case rec.IsClear:
		return "CLEAR"
	default:
		return "FAILED"
	}
}

// ArtemisChunithm converts one ARTEMiS playlog row into a dry CHUNITHM score.
func (c *Converter) ArtemisChunithm(ctx context.Context, rec *ArtemisChunithmPlaylog) (*Output, error) {
	difficulty, ok := artemisChunithmDifficulties[rec.Level]
	if !ok {
		return nil, InvalidScore(rec, "invalid chunithm difficulty index %d", rec.Level)
	}

	chart, err := c.resolver.ChartOnInGameID(ctx, games.CHUNITHM, rec.MusicID, games.PlaytypeSingle, difficulty)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(rec, "no CHUNITHM chart for musicId %d difficulty %s", rec.MusicID, difficulty)
	}
	if err != nil {
		return nil, err
	}

	song, err := c.songForChart(ctx, chart, rec)
	if err != nil {
		return nil, err
	}

	grade, percent, err := GradeAndPercent(games.CHUNITHM, rec.Score, chart, rec)
	if err != nil {
		return nil, err
	}

	dry := &model.DryScore{
		Game:         games.CHUNITHM,
		Service:      "ARTEMiS",
		ImportType:   "api/artemis-chunithm",
		TimeAchieved: rec.UserPlayDate,
		ScoreData: model.ScoreData{
			Score:   rec.Score,
			Percent: percent,
			Grade:   grade,
			Lamp:    artemisChunithmLamp(rec),
			HitData: map[string]int{
				"jcrit":   rec.JudgeCritical,
				"justice": rec.JudgeJustice,
				"attack":  rec.JudgeAttack,
				"miss":    rec.JudgeGuilty,
			},
			HitMeta: map[string]interface{}{
				"maxCombo": rec.MaxCombo,
			},
		},
		ScoreMeta: map[string]string{},
	}

	return &Output{Song: song, Chart: chart, Dry: dry}, nil
}
