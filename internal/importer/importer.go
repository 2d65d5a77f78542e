// Package importer orchestrates a score import end to end: parse, convert
// under a bounded worker pool, persist through the batching queue, recompose
// personal bests, and recompute the user's aggregate stats.
package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/domain/rating"
	"github.com/okian/seiseki/internal/importer/adapters"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/pb"
	"github.com/okian/seiseki/internal/importer/queue"
	"github.com/okian/seiseki/internal/importer/ugs"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
	"github.com/okian/seiseki/pkg/metrics"
)

const defaultWorkers = 8

// Engine runs imports against one store.
type Engine struct {
	store   repository.Store
	queue   *queue.ScoreQueue
	pbs     *pb.Processor
	stats   *ugs.Updater
	workers int
	log     logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the conversion worker-pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithQueueThreshold sets the insert queue's auto-flush threshold.
func WithQueueThreshold(n int) Option {
	return func(e *Engine) {
		e.queue = queue.New(e.store, queue.WithThreshold(n))
	}
}

// New creates an Engine over store.
func New(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		queue:   queue.New(store),
		pbs:     pb.NewProcessor(store),
		stats:   ugs.NewUpdater(store),
		workers: defaultWorkers,
		log:     logger.Named("importer"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// chartRef is one (chart, playtype) pair a converted score touched.
type chartRef struct {
	chartID  string
	playtype games.Playtype
}

// runState is the mutable state of one import run. All mutation goes
// through its mutex; workers never share anything else.
type runState struct {
	mu        sync.Mutex
	processed int
	failures  []model.ImportFailure
	scoreIDs  []string
	touched   map[chartRef]struct{}
	fatalErr  error
}

func (s *runState) fail(f *convert.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.failures = append(s.failures, model.ImportFailure{
		Kind:    string(f.Kind),
		Message: f.Message,
		Record:  f.Record,
	})
}

func (s *runState) success(scoreID string, ref chartRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.scoreIDs = append(s.scoreIDs, scoreID)
	s.touched[ref] = struct{}{}
}

func (s *runState) fatal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatalErr == nil {
		s.fatalErr = err
	}
}

// RunImport executes one import of adapter's records on behalf of userID.
//
// Per-record failures accumulate into the result and never abort the run.
// A malformed batch aborts before any record is processed. A mid-run fatal
// condition (iterator transport failure, store write failure) stops
// dispatch; scores already converted are still flushed exactly once.
func (e *Engine) RunImport(ctx context.Context, userID int, adapter adapters.Adapter) (*model.ImportResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordImportDuration(float64(time.Since(start).Milliseconds()))
	}()

	it, err := adapter.Parse(ctx)
	if err != nil {
		e.log.Error(ctx, "import batch rejected",
			logger.String("importType", adapter.ImportType()),
			logger.Int("userID", userID),
			logger.Error(err),
		)
		metrics.RecordFatalImport()
		return &model.ImportResult{Fatal: true}, err
	}

	state := &runState{touched: make(map[chartRef]struct{})}
	e.convertAll(ctx, userID, adapter, it, state)

	// The queue is flushed exactly once at the end of conversion, fatal or
	// not: scores that made it into the queue are real plays.
	if _, err := e.queue.Flush(ctx); err != nil {
		state.fatal(err)
	}

	if state.fatalErr != nil {
		e.log.Error(ctx, "import aborted",
			logger.String("importType", adapter.ImportType()),
			logger.Int("userID", userID),
			logger.Error(state.fatalErr),
		)
		metrics.RecordFatalImport()
		return &model.ImportResult{
			Processed: state.processed,
			Failures:  state.failures,
			ScoreIDs:  state.scoreIDs,
			Fatal:     true,
		}, state.fatalErr
	}

	deltas, err := e.finalize(ctx, userID, adapter, state)
	if err != nil {
		metrics.RecordFatalImport()
		return &model.ImportResult{
			Processed: state.processed,
			Failures:  state.failures,
			ScoreIDs:  state.scoreIDs,
			Fatal:     true,
		}, err
	}

	e.log.Info(ctx, "import finished",
		logger.String("importType", adapter.ImportType()),
		logger.Int("userID", userID),
		logger.Int("processed", state.processed),
		logger.Int("imported", len(state.scoreIDs)),
		logger.Int("failures", len(state.failures)),
	)

	return &model.ImportResult{
		Processed:   state.processed,
		Failures:    state.failures,
		ClassDeltas: deltas,
		ScoreIDs:    state.scoreIDs,
	}, nil
}

// convertAll drains the iterator through a bounded worker pool. Dispatch
// stops on the first fatal condition; in-flight records finish.
func (e *Engine) convertAll(ctx context.Context, userID int, adapter adapters.Adapter, it adapters.Iterator, state *runState) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan interface{})
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range records {
				if err := e.processRecord(ctx, userID, adapter, raw, state); err != nil {
					state.fatal(err)
					cancel()
				}
			}
		}()
	}

	for {
		raw, ok, err := it.Next(ctx)
		if err != nil {
			state.fatal(fmt.Errorf("importer: reading records: %w", err))
			break
		}
		if !ok {
			break
		}

		select {
		case records <- raw:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(records)
	wg.Wait()
}

// processRecord converts one raw record and queues the resulting score.
// Classified failures are recorded and swallowed; anything else is fatal.
func (e *Engine) processRecord(ctx context.Context, userID int, adapter adapters.Adapter, raw interface{}, state *runState) error {
	convStart := time.Now()
	out, err := adapter.Convert(ctx, raw)
	metrics.RecordConvertDuration(float64(time.Since(convStart).Microseconds()) / 1e3)

	if err != nil {
		if f, ok := convert.AsFailure(err); ok {
			if f.Kind == convert.KindInternal {
				e.log.Severe(ctx, "conversion hit a catalog inconsistency",
					logger.String("importType", adapter.ImportType()),
					logger.String("detail", f.Message),
				)
			}
			state.fail(f)
			metrics.RecordScoreFailed(string(f.Kind))
			return nil
		}
		return fmt.Errorf("importer: converting record: %w", err)
	}

	calc, err := rating.CreateCalculatedData(ctx, e.store, out.Dry, out.Chart, e.log)
	if err != nil {
		return fmt.Errorf("importer: computing statistics: %w", err)
	}

	score := &model.Score{
		DryScore:       *out.Dry,
		ScoreID:        uuid.NewString(),
		UserID:         userID,
		ChartID:        out.Chart.ChartID,
		SongID:         out.Song.SongID,
		Playtype:       out.Chart.Playtype,
		CalculatedData: calc,
	}

	if _, _, err := e.queue.Append(ctx, score); err != nil {
		return err
	}

	state.success(score.ScoreID, chartRef{chartID: out.Chart.ChartID, playtype: out.Chart.Playtype})
	metrics.RecordScoreImported()
	return nil
}

// finalize recomposes personal bests for every touched chart and recomputes
// game stats for every touched playtype.
func (e *Engine) finalize(ctx context.Context, userID int, adapter adapters.Adapter, state *runState) ([]model.ClassDelta, error) {
	playtypes := make(map[games.Playtype]struct{})
	for ref := range state.touched {
		if err := e.pbs.Update(ctx, userID, ref.chartID); err != nil {
			return nil, err
		}
		playtypes[ref.playtype] = struct{}{}
	}

	// A run that converted nothing still invokes the class handler if the
	// source has one: class information arrives independently of scores.
	if len(playtypes) == 0 && adapter.ClassHandler() != nil {
		for _, pt := range games.Conf(adapter.Game()).Playtypes {
			playtypes[pt] = struct{}{}
		}
	}

	var deltas []model.ClassDelta
	for pt := range playtypes {
		d, err := e.stats.Update(ctx, userID, adapter.Game(), pt, adapter.ClassHandler())
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d...)
	}
	return deltas, nil
}
