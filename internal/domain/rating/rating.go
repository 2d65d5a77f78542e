// Package rating implements the per-score derived statistics: the generic
// rating curve, game-specific indices and lamp-based ratings.
//
// Every function here degrades invalid input to a "not applicable" result
// plus a diagnostic, never an error: a single malformed historical input
// must not block an otherwise-valid import.
package rating

import (
	"context"
	"errors"
	"math"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
	"github.com/okian/seiseki/pkg/metrics"
)

// maxGenericRating is the sanity ceiling for the generic curve. Anything
// above it (or non-finite) is treated as invalid input.
const maxGenericRating = 1000

// floorToNDP floors v to n decimal places.
func floorToNDP(v float64, n int) float64 {
	mul := math.Pow(10, float64(n))
	return math.Floor(v*mul) / mul
}

// GenericRating computes the fallback rating used by games without a
// bespoke formula. percent is 0-100.
//
// Below the pivot the curve is a power function through the origin; at and
// above it, a cosh curve. The two branches meet at the pivot, where the
// rating equals the chart level.
func GenericRating(ctx context.Context, percent, levelNum float64, params games.RatingParameters, log logger.Logger) float64 {
	p := percent / 100

	if p < params.PivotPercent {
		return math.Pow(p, params.FailHarshnessMultiplier*levelNum) *
			(levelNum / math.Pow(params.PivotPercent, params.FailHarshnessMultiplier*levelNum))
	}

	rating := math.Cosh(params.ClearExpMultiplier*levelNum*(p-params.PivotPercent)) + (levelNum - 1)

	if math.IsInf(rating, 0) || math.IsNaN(rating) || rating > maxGenericRating {
		log.Warn(ctx, "generic rating out of range, defaulting to 0",
			logger.Float64("percent", p),
			logger.Float64("levelNum", levelNum),
			logger.Float64("rating", rating),
		)
		metrics.RecordRatingDiagnostic()
		return 0
	}

	return rating
}

// KTRating computes the generic rating for a score, overriding the chart
// level with score-tierlist data when present.
func KTRating(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (float64, error) {
	params := games.Conf(dry.Game).Rating

	levelNum := chart.LevelNum

	entry, err := store.FindTierlistEntry(ctx, chart.ChartID, "score")
	switch {
	case err == nil:
		levelNum = entry.Value
	case errors.Is(err, repository.ErrNotFound):
		// no tierlist override
	default:
		return 0, err
	}

	return GenericRating(ctx, dry.ScoreData.Percent, levelNum, params, log), nil
}

// LampRating computes the lamp rating for a score.
//
// Without tierlist data a clear is worth the chart level and anything below
// the clear lamp is worth 0. With tierlist data, all entries whose lamp is
// met-or-exceeded are scanned for the maximum value: tierlist values are
// not monotonic with lamp ordinal (some charts are harder to normal-clear
// than to hard-clear), so a single lookup is not enough.
func LampRating(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart) (float64, error) {
	baseline := lampRatingNoTierlist(dry, chart)

	entries, err := store.FindTierlistEntries(ctx, chart.ChartID, "lamp")
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}
	if len(entries) == 0 {
		return baseline, nil
	}

	userLampIndex := games.LampIndex(dry.Game, dry.ScoreData.Lamp)

	rating := baseline
	for _, e := range entries {
		if e.Value > rating && games.LampIndex(dry.Game, e.Key) <= userLampIndex {
			rating = e.Value
		}
	}

	return rating, nil
}

func lampRatingNoTierlist(dry *model.DryScore, chart *model.Chart) float64 {
	if games.LampIndex(dry.Game, dry.ScoreData.Lamp) >= games.ClearLampIndex(dry.Game) {
		return chart.LevelNum
	}
	return 0
}

// Percentile returns the percent of recorded population scores on the chart
// that are strictly worse than score. The second return is false when the
// chart has no population scores at all.
func Percentile(ctx context.Context, store repository.Store, score int, chartID string) (float64, bool, error) {
	total, err := store.CountChartScores(ctx, chartID)
	if err != nil {
		return 0, false, err
	}
	if total == 0 {
		return 0, false, nil
	}

	worse, err := store.CountChartScoresBelow(ctx, chartID, score)
	if err != nil {
		return 0, false, err
	}

	return 100 * float64(worse) / float64(total), true, nil
}
