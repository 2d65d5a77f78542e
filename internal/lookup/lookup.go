// Package lookup resolves raw identifier tuples to canonical chart and song
// documents. It is read-only: the catalog is maintained elsewhere.
package lookup

import (
	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"

	"context"
)

// Resolver answers chart/song resolution queries for converters.
//
// All methods return repository.ErrNotFound when no document matches.
// Chart-not-found is a normal outcome converters handle; song-not-found for
// an existing chart indicates catalog corruption.
type Resolver struct {
	store repository.Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store repository.Store) *Resolver {
	return &Resolver{store: store}
}

// ChartOnInGameID finds a chart by arcade service identifier, expanding
// difficulty aliases (e.g. SDVX ANY_INF) before querying.
func (r *Resolver) ChartOnInGameID(ctx context.Context, game games.Game, inGameID int, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	difficulties := games.ExpandDifficulty(game, difficulty)
	return r.store.FindChartOnInGameID(ctx, game, inGameID, playtype, difficulties)
}

// ChartOnHash finds a chart by content hash. Both accepted hash algorithms
// are matched with OR semantics.
func (r *Resolver) ChartOnHash(ctx context.Context, game games.Game, hash string) (*model.Chart, error) {
	return r.store.FindChartOnHash(ctx, game, hash)
}

// ChartOnSongHash finds a DDR chart by its e-amusement song hash combined
// with playtype and difficulty.
func (r *Resolver) ChartOnSongHash(ctx context.Context, songHash string, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	return r.store.FindChartOnSongHash(ctx, songHash, playtype, difficulty)
}

// PrimaryChart finds the chart marked primary for (game, song, playtype,
// difficulty). Versioned non-primary charts are not returned here.
func (r *Resolver) PrimaryChart(ctx context.Context, game games.Game, songID int, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	return r.store.FindPrimaryChart(ctx, game, songID, playtype, difficulty)
}

// Song finds a song by its internal identifier.
func (r *Resolver) Song(ctx context.Context, game games.Game, songID int) (*model.Song, error) {
	return r.store.FindSong(ctx, game, songID)
}
