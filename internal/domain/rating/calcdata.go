package rating

import (
	"context"
	"errors"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
)

// Calculator produces the calculated-data map for one game. Keys absent
// from the result mean "not applicable" for that score.
type Calculator func(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (map[string]float64, error)

// calculators is the explicit per-game dispatch table. Every supported game
// is enumerable here and testable in isolation; games without an entry fall
// back to calcGeneric.
var calculators = map[games.Game]Calculator{
	games.IIDX:     calcIIDX,
	games.SDVX:     calcSDVX,
	games.USC:      calcSDVX,
	games.DDR:      calcDDR,
	games.CHUNITHM: calcCHUNITHM,
	games.GITADORA: calcGITADORA,
	games.BMS:      calcGeneric,
}

// CreateCalculatedData computes all derived statistics for a converted
// score against its chart.
func CreateCalculatedData(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (map[string]float64, error) {
	calc, ok := calculators[dry.Game]
	if !ok {
		calc = calcGeneric
	}
	return calc(ctx, store, dry, chart, log)
}

// calcGeneric covers games with no bespoke statistics: the generic rating
// curve plus the lamp rating.
func calcGeneric(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (map[string]float64, error) {
	out := make(map[string]float64)

	r, err := KTRating(ctx, store, dry, chart, log)
	if err != nil {
		return nil, err
	}
	out["rating"] = r

	lr, err := LampRating(ctx, store, dry, chart)
	if err != nil {
		return nil, err
	}
	out["lampRating"] = lr

	return out, nil
}

func calcIIDX(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (map[string]float64, error) {
	out, err := calcGeneric(ctx, store, dry, chart, log)
	if err != nil {
		return nil, err
	}

	bpiData, err := store.FindBPIData(ctx, chart.ChartID)
	switch {
	case err == nil:
		maxEx := chart.Data.NoteCount * 2
		if maxEx > 0 {
			out["BPI"] = BPI(bpiData.KaidenAverage, bpiData.WorldRecord, dry.ScoreData.Score, maxEx, bpiData.Coefficient)
		}
	case errors.Is(err, repository.ErrNotFound):
		// no reference data; BPI not applicable
	default:
		return nil, err
	}

	pct, ok, err := Percentile(ctx, store, dry.ScoreData.Score, chart.ChartID)
	if err != nil {
		return nil, err
	}
	if ok {
		out["K%"] = pct
	}

	return out, nil
}

func calcSDVX(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (map[string]float64, error) {
	out, err := calcGeneric(ctx, store, dry, chart, log)
	if err != nil {
		return nil, err
	}

	vf, ok := VF6(ctx, dry.ScoreData.Grade, dry.ScoreData.Lamp, dry.ScoreData.Percent, chart.LevelNum, log)
	if ok {
		out["VF6"] = vf
	}

	return out, nil
}

func calcDDR(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, log logger.Logger) (map[string]float64, error) {
	out, err := calcGeneric(ctx, store, dry, chart, log)
	if err != nil {
		return nil, err
	}

	mfcp, ok := MFCP(ctx, dry.ScoreData.Lamp, chart.Difficulty, chart.LevelNum, log)
	if ok {
		out["MFCP"] = mfcp
	}

	return out, nil
}

func calcCHUNITHM(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, _ logger.Logger) (map[string]float64, error) {
	out := make(map[string]float64)

	out["rating"] = CHUNITHMRating(dry.ScoreData.Score, chart.LevelNum)

	lr, err := LampRating(ctx, store, dry, chart)
	if err != nil {
		return nil, err
	}
	out["lampRating"] = lr

	return out, nil
}

func calcGITADORA(ctx context.Context, store repository.Store, dry *model.DryScore, chart *model.Chart, _ logger.Logger) (map[string]float64, error) {
	out := make(map[string]float64)

	out["rating"] = GITADORASkill(dry.ScoreData.Percent, chart.LevelNum)

	lr, err := LampRating(ctx, store, dry, chart)
	if err != nil {
		return nil, err
	}
	out["lampRating"] = lr

	return out, nil
}
