package adapters

import (
	"context"
	"encoding/json"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/ugs"
)

// fervidexPayload is the request body a fervidex client submits: either a
// single play or a bulk profile export.
type fervidexPayload struct {
	Scores []*convert.FervidexScore `json:"scores"`
}

// Fervidex imports plays submitted by the fervidex IIDX client.
type Fervidex struct {
	conv *convert.Converter
	body []byte
}

// NewFervidex creates an adapter over a raw fervidex request body.
func NewFervidex(conv *convert.Converter, body []byte) *Fervidex {
	return &Fervidex{conv: conv, body: body}
}

func (f *Fervidex) ImportType() string { return "ir/fervidex" }

func (f *Fervidex) Game() games.Game { return games.IIDX }

func (f *Fervidex) Parse(_ context.Context) (Iterator, error) {
	var payload fervidexPayload
	if err := json.Unmarshal(f.body, &payload); err != nil {
		return nil, convert.Fatal("malformed fervidex payload: %v", err)
	}
	if payload.Scores == nil {
		return nil, convert.Fatal("fervidex payload has no scores field")
	}

	items := make([]interface{}, len(payload.Scores))
	for i, s := range payload.Scores {
		items[i] = s
	}
	return newSliceIterator(items), nil
}

func (f *Fervidex) Convert(ctx context.Context, raw interface{}) (*convert.Output, error) {
	rec, ok := raw.(*convert.FervidexScore)
	if !ok {
		return nil, convert.Internal(raw, "fervidex adapter received foreign record type %T", raw)
	}
	return f.conv.Fervidex(ctx, rec)
}

func (f *Fervidex) ClassHandler() ugs.ClassHandler { return nil }
