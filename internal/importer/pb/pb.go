// Package pb recomposes personal bests. A personal best is not a single
// play: the best score-valued play and the best lamp-valued play are merged
// into one document, with composedFrom recording both sources.
package pb

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
	"github.com/okian/seiseki/pkg/metrics"
)

// Processor recomputes the personal best for (user, chart) pairs. Updates
// for the same pair are serialized on a keyed mutex; distinct pairs proceed
// concurrently.
type Processor struct {
	store repository.Store
	log   logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProcessor creates a Processor over store.
func NewProcessor(store repository.Store) *Processor {
	return &Processor{
		store: store,
		log:   logger.Named("pb"),
		locks: make(map[string]*sync.Mutex),
	}
}

func (p *Processor) lockFor(userID int, chartID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := fmt.Sprintf("%d/%s", userID, chartID)
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	return l
}

// Update recomposes the personal best for (userID, chartID) from every
// stored score on that chart and upserts it. Recomposition is a pure
// function of the score set, so replaying it in any order converges.
func (p *Processor) Update(ctx context.Context, userID int, chartID string) error {
	l := p.lockFor(userID, chartID)
	l.Lock()
	defer l.Unlock()

	scores, err := p.store.FindUserChartScores(ctx, userID, chartID)
	if err != nil {
		return fmt.Errorf("pb: loading scores for user %d chart %s: %w", userID, chartID, err)
	}
	if len(scores) == 0 {
		return nil
	}

	scorePB := scores[0]
	lampPB := scores[0]
	for _, s := range scores[1:] {
		if s.ScoreData.Score > scorePB.ScoreData.Score {
			scorePB = s
		}
		if games.LampIndex(s.Game, s.ScoreData.Lamp) > games.LampIndex(lampPB.Game, lampPB.ScoreData.Lamp) {
			lampPB = s
		}
	}

	merged := compose(scorePB, lampPB)
	if err := p.store.UpsertPB(ctx, merged); err != nil {
		return fmt.Errorf("pb: upserting pb for user %d chart %s: %w", userID, chartID, err)
	}

	metrics.RecordPBUpdate()
	return nil
}

// compose merges the score axis of scorePB with the lamp axis of lampPB.
func compose(scorePB, lampPB *model.Score) *model.PBScore {
	data := scorePB.ScoreData
	data.Lamp = lampPB.ScoreData.Lamp

	calc := make(map[string]float64, len(scorePB.CalculatedData))
	for k, v := range scorePB.CalculatedData {
		calc[k] = v
	}
	// Lamp-derived statistics follow the lamp play, not the score play.
	if v, ok := lampPB.CalculatedData["lampRating"]; ok {
		calc["lampRating"] = v
	} else {
		delete(calc, "lampRating")
	}

	return &model.PBScore{
		UserID:         scorePB.UserID,
		ChartID:        scorePB.ChartID,
		SongID:         scorePB.SongID,
		Game:           scorePB.Game,
		Playtype:       scorePB.Playtype,
		ScoreData:      data,
		CalculatedData: calc,
		ComposedFrom: model.PBComposition{
			ScorePB: scorePB.ScoreID,
			LampPB:  lampPB.ScoreID,
		},
	}
}
