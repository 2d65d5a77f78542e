// Package repository defines the document-store contract the pipeline
// persists through, and its implementations.
//
// The pipeline treats persistence as an abstract document store with
// find/insert/update/count semantics over named collections. Connection
// lifecycle is owned by the caller; implementations must be safe for
// concurrent use.
package repository

import (
	"context"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
)

// Store provides typed access to the songs, charts, scores, personal-bests,
// game-stats, tierlist and bpi-data collections.
//
// Find methods return ErrNotFound when no document matches; callers decide
// whether that is a normal outcome or an integrity violation.
type Store interface {
	// Songs
	FindSong(ctx context.Context, game games.Game, songID int) (*model.Song, error)
	InsertSong(ctx context.Context, song *model.Song) error

	// Charts
	InsertChart(ctx context.Context, chart *model.Chart) error

	// FindChartOnInGameID matches a chart by arcade service identifier.
	// difficulties carries one or more accepted labels (alias expansion
	// happens in the lookup layer).
	FindChartOnInGameID(ctx context.Context, game games.Game, inGameID int, playtype games.Playtype, difficulties []string) (*model.Chart, error)

	// FindChartOnHash matches a chart by content hash. Both accepted hash
	// fields are matched with OR semantics.
	FindChartOnHash(ctx context.Context, game games.Game, hash string) (*model.Chart, error)

	// FindChartOnSongHash matches a DDR chart by its e-amusement song hash.
	FindChartOnSongHash(ctx context.Context, songHash string, playtype games.Playtype, difficulty string) (*model.Chart, error)

	// FindPrimaryChart matches the canonical chart for a song, playtype
	// and difficulty.
	FindPrimaryChart(ctx context.Context, game games.Game, songID int, playtype games.Playtype, difficulty string) (*model.Chart, error)

	// Scores
	InsertScores(ctx context.Context, scores []*model.Score) error
	FindUserChartScores(ctx context.Context, userID int, chartID string) ([]*model.Score, error)
	CountChartScores(ctx context.Context, chartID string) (int, error)
	CountChartScoresBelow(ctx context.Context, chartID string, score int) (int, error)

	// Personal bests
	FindPB(ctx context.Context, userID int, chartID string) (*model.PBScore, error)
	UpsertPB(ctx context.Context, pb *model.PBScore) error
	FindUserPBs(ctx context.Context, userID int, game games.Game, playtype games.Playtype) ([]*model.PBScore, error)

	// Game stats
	FindGameStats(ctx context.Context, userID int, game games.Game, playtype games.Playtype) (*model.GameStats, error)
	InsertGameStats(ctx context.Context, stats *model.GameStats) error
	UpdateGameStats(ctx context.Context, stats *model.GameStats) error

	// Tierlist data (read-only for the pipeline)
	InsertTierlistEntry(ctx context.Context, entry *model.TierlistEntry) error
	FindTierlistEntry(ctx context.Context, chartID, kind string) (*model.TierlistEntry, error)
	FindTierlistEntries(ctx context.Context, chartID, kind string) ([]model.TierlistEntry, error)

	// BPI reference data (read-only for the pipeline)
	InsertBPIData(ctx context.Context, data *model.BPIData) error
	FindBPIData(ctx context.Context, chartID string) (*model.BPIData, error)
}
