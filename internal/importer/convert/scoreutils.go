package convert

import (
	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
)

// Output is one successfully converted record: the resolved catalog documents
// plus the canonical dry score.
type Output struct {
	Song  *model.Song
	Chart *model.Chart
	Dry   *model.DryScore
}

// CalculatePercent derives the 0..100 percent for a raw score on a chart.
// Each game has a fixed theoretical maximum; EX-score games derive it from
// the chart's note count.
//
// Returns an InvalidScore failure when the result exceeds the game's
// configured maximum (some games tolerate slightly above 100).
func CalculatePercent(game games.Game, score int, chart *model.Chart, record interface{}) (float64, error) {
	if score < 0 {
		return 0, InvalidScore(record, "%s score %d is negative", game, score)
	}

	var percent float64
	switch game {
	case games.IIDX, games.BMS:
		max := chart.Data.NoteCount * 2
		if max == 0 {
			return 0, Internal(record, "chart %s has no note count, cannot derive percent", chart.ChartID)
		}
		percent = float64(score) / float64(max) * 100
	case games.CHUNITHM:
		percent = float64(score) / 10_000
	case games.SDVX, games.USC:
		percent = float64(score) / 10_000_000 * 100
	case games.DDR:
		percent = float64(score) / 1_000_000 * 100
	default:
		return 0, Internal(record, "no percent formula for game %s", game)
	}

	if max := games.Conf(game).PercentMax; percent > max {
		return 0, InvalidScore(record, "%s percent %.4f exceeds maximum %.2f", game, percent, max)
	}
	return percent, nil
}

// GradeAndPercent derives both percent and its grade classification in one
// step, since they are always needed together.
func GradeAndPercent(game games.Game, score int, chart *model.Chart, record interface{}) (string, float64, error) {
	percent, err := CalculatePercent(game, score, chart, record)
	if err != nil {
		return "", 0, err
	}
	return games.GradeFromPercent(game, percent), percent, nil
}

// ValidateLamp checks lamp against the game's lamp vocabulary.
func ValidateLamp(game games.Game, lamp string, record interface{}) error {
	if games.LampIndex(game, lamp) < 0 {
		return InvalidScore(record, "invalid %s lamp %q", game, lamp)
	}
	return nil
}
