package adapters

import (
	"context"
	"encoding/json"
	"io"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/ugs"
)

// MER imports an IIDX score export file from the MER service: a JSON array
// of play rows.
type MER struct {
	conv *convert.Converter
	src  io.Reader
}

// NewMER creates an adapter reading a MER export from src.
func NewMER(conv *convert.Converter, src io.Reader) *MER {
	return &MER{conv: conv, src: src}
}

func (m *MER) ImportType() string { return "file/mer-iidx" }

func (m *MER) Game() games.Game { return games.IIDX }

func (m *MER) Parse(_ context.Context) (Iterator, error) {
	body, err := io.ReadAll(m.src)
	if err != nil {
		return nil, convert.Fatal("reading MER export: %v", err)
	}

	var rows []*convert.MERScore
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, convert.Fatal("malformed MER export: %v", err)
	}

	items := make([]interface{}, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return newSliceIterator(items), nil
}

func (m *MER) Convert(ctx context.Context, raw interface{}) (*convert.Output, error) {
	rec, ok := raw.(*convert.MERScore)
	if !ok {
		return nil, convert.Internal(raw, "MER adapter received foreign record type %T", raw)
	}
	return m.conv.MER(ctx, rec)
}

func (m *MER) ClassHandler() ugs.ClassHandler { return nil }
