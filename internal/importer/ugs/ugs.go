// Package ugs maintains the per (user, game, playtype) aggregate profile:
// folded ratings over personal bests, class values, and the deltas between
// the previous and recomputed state.
package ugs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
	"github.com/okian/seiseki/pkg/metrics"
)

// ClassHandler derives class values (dan grades, colours, emblems) for a
// user. Import sources that know the user's classes provide one; ratings
// carries the freshly folded profile ratings for handlers that derive
// classes from them. A nil map means "no class information".
type ClassHandler func(ctx context.Context, game games.Game, playtype games.Playtype, userID int, ratings map[string]float64) (map[string]int, error)

// Updater recomputes game stats after an import.
type Updater struct {
	store repository.Store
	log   logger.Logger
}

// NewUpdater creates an Updater over store.
func NewUpdater(store repository.Store) *Updater {
	return &Updater{store: store, log: logger.Named("ugs")}
}

// Update recomputes ratings and classes for (userID, game, playtype),
// persists the new stats, and returns the class deltas. handler may be nil.
func (u *Updater) Update(ctx context.Context, userID int, game games.Game, playtype games.Playtype, handler ClassHandler) ([]model.ClassDelta, error) {
	pbs, err := u.store.FindUserPBs(ctx, userID, game, playtype)
	if err != nil {
		return nil, fmt.Errorf("ugs: loading pbs for user %d: %w", userID, err)
	}

	conf := games.Conf(game)

	rating := topNAverage(collect(pbs, "rating"), conf.ProfileRatingN)
	lampRating := topNAverage(collect(pbs, "lampRating"), conf.ProfileRatingN)

	custom := make(map[string]float64, len(conf.CustomRatings))
	for _, cr := range conf.CustomRatings {
		values := collect(pbs, cr.Key)
		switch cr.Aggregation {
		case games.AggregateTopNAverage:
			custom[cr.Key] = topNAverage(values, cr.N)
		case games.AggregateTopNSum:
			custom[cr.Key] = topNSum(values, cr.N)
		case games.AggregateSum:
			custom[cr.Key] = sum(values)
		}
	}

	prior, err := u.store.FindGameStats(ctx, userID, game, playtype)
	if errors.Is(err, repository.ErrNotFound) {
		prior = nil
	} else if err != nil {
		return nil, fmt.Errorf("ugs: loading stats for user %d: %w", userID, err)
	}

	classes, deltas := u.mergeClasses(ctx, prior, conf, game, playtype, userID, handler, rating, lampRating, custom)

	stats := &model.GameStats{
		UserID:        userID,
		Game:          game,
		Playtype:      playtype,
		Rating:        rating,
		LampRating:    lampRating,
		CustomRatings: custom,
		Classes:       classes,
	}

	if prior == nil {
		err = u.store.InsertGameStats(ctx, stats)
	} else {
		err = u.store.UpdateGameStats(ctx, stats)
	}
	if err != nil {
		return nil, fmt.Errorf("ugs: persisting stats for user %d: %w", userID, err)
	}

	metrics.RecordStatsUpsert()
	for range deltas {
		metrics.RecordClassDelta()
	}
	return deltas, nil
}

// mergeClasses folds handler-provided classes over the prior snapshot,
// validating against the game's class vocabulary and honoring the
// non-decreasing policy. Classes the handler does not report carry over.
func (u *Updater) mergeClasses(ctx context.Context, prior *model.GameStats, conf games.Config, game games.Game, playtype games.Playtype, userID int, handler ClassHandler, rating, lampRating float64, custom map[string]float64) (map[string]int, []model.ClassDelta) {
	classes := make(map[string]int)
	if prior != nil {
		for k, v := range prior.Classes {
			classes[k] = v
		}
	}

	if handler == nil {
		return classes, nil
	}

	ratings := map[string]float64{"rating": rating, "lampRating": lampRating}
	for k, v := range custom {
		ratings[k] = v
	}

	reported, err := handler(ctx, game, playtype, userID, ratings)
	if err != nil {
		// Class information is auxiliary; a failing handler degrades the
		// import to "no class update" rather than failing it.
		u.log.Warn(ctx, "class handler failed",
			logger.String("game", string(game)),
			logger.Int("userID", userID),
			logger.Error(err),
		)
		return classes, nil
	}

	var deltas []model.ClassDelta
	keys := make([]string, 0, len(reported))
	for k := range reported {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := reported[key]
		max, ok := conf.ValidClasses[key]
		if !ok || value < 0 || value > max {
			u.log.Warn(ctx, "discarding invalid class value",
				logger.String("game", string(game)),
				logger.String("class", key),
				logger.Int("value", value),
			)
			continue
		}

		old, had := classes[key]
		if !had {
			old = -1
		}
		if conf.ClassesNonDecreasing && had && value < old {
			continue
		}
		if had && value == old {
			continue
		}

		classes[key] = value
		deltas = append(deltas, model.ClassDelta{
			Game:     game,
			Playtype: playtype,
			Key:      key,
			Old:      old,
			New:      value,
		})
	}
	return classes, deltas
}

func collect(pbs []*model.PBScore, key string) []float64 {
	var out []float64
	for _, pb := range pbs {
		if v, ok := pb.CalculatedData[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// topNAverage averages the N largest values, dividing by N even when fewer
// values exist. A sparse profile rates lower than a full one.
func topNAverage(values []float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return topNSum(values, n) / float64(n)
}

func topNSum(values []float64, n int) float64 {
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sum(sorted)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
