package convert

import (
	"context"
	"errors"

	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/lookup"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
)

// Converter holds the shared dependencies of the per-format conversion
// functions.
type Converter struct {
	resolver *lookup.Resolver
	log      logger.Logger
}

// New creates a Converter over the given resolver.
func New(resolver *lookup.Resolver) *Converter {
	return &Converter{resolver: resolver, log: logger.Named("convert")}
}

// songForChart loads the parent song of a resolved chart. A chart whose song
// does not exist is catalog corruption; it is escalated loudly, not treated
// as a routine miss.
func (c *Converter) songForChart(ctx context.Context, chart *model.Chart, record interface{}) (*model.Song, error) {
	song, err := c.resolver.Song(ctx, chart.Game, chart.SongID)
	if errors.Is(err, repository.ErrNotFound) {
		c.log.Severe(ctx, "chart references a song that does not exist",
			logger.String("chartID", chart.ChartID),
			logger.String("game", string(chart.Game)),
			logger.Int("songID", chart.SongID),
		)
		return nil, Internal(record, "chart %s references missing song %d", chart.ChartID, chart.SongID)
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}
