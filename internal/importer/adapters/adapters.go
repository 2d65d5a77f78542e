// Package adapters binds concrete score sources (IR payloads, export files,
// upstream APIs, arcade databases) to the import pipeline.
//
// An adapter owns parsing and conversion for one import type. Parsing
// validates the batch as a whole; a malformed batch is fatal before any
// record is processed. Conversion handles one record at a time and reports
// classified per-record failures.
package adapters

import (
	"context"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/ugs"
)

// Adapter is one import source bound to the pipeline.
type Adapter interface {
	// ImportType names the source kind, e.g. "ir/fervidex".
	ImportType() string

	// Game is the game every record of this source belongs to.
	Game() games.Game

	// Parse validates the batch and returns an iterator over its raw
	// records. Any error here is fatal to the import.
	Parse(ctx context.Context) (Iterator, error)

	// Convert turns one raw record into a dry score. Classified failures
	// (chart not found, invalid value, catalog inconsistency) come back as
	// *convert.Failure.
	Convert(ctx context.Context, raw interface{}) (*convert.Output, error)

	// ClassHandler returns the source's class derivation, or nil when the
	// source carries no class information.
	ClassHandler() ugs.ClassHandler
}

// Iterator walks a batch's raw records. Next returns (nil, false, nil) when
// exhausted. A non-nil error aborts the import; sources that fetch lazily
// surface transport failures here.
type Iterator interface {
	Next(ctx context.Context) (interface{}, bool, error)
}

// sliceIterator walks an in-memory record slice.
type sliceIterator struct {
	items []interface{}
	i     int
}

func newSliceIterator(items []interface{}) *sliceIterator {
	return &sliceIterator{items: items}
}

func (s *sliceIterator) Next(_ context.Context) (interface{}, bool, error) {
	if s.i >= len(s.items) {
		return nil, false, nil
	}
	item := s.items[s.i]
	s.i++
	return item, true, nil
}
