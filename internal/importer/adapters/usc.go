package adapters

import (
	"context"
	"encoding/json"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/ugs"
)

const uscMaxScore = 10_000_000

// USC imports plays submitted by an unnamed_sdvx_clone IR client. The chart
// hash arrives out of band (in the request path), one hash per batch.
type USC struct {
	conv      *convert.Converter
	chartHash string
	body      []byte
}

// NewUSC creates an adapter over a raw IR submission body for chartHash.
func NewUSC(conv *convert.Converter, chartHash string, body []byte) *USC {
	return &USC{conv: conv, chartHash: chartHash, body: body}
}

func (u *USC) ImportType() string { return "ir/usc" }

func (u *USC) Game() games.Game { return games.USC }

func (u *USC) Parse(_ context.Context) (Iterator, error) {
	if u.chartHash == "" {
		return nil, convert.Fatal("usc submission has no chart hash")
	}

	var rows []*convert.USCScore
	if err := json.Unmarshal(u.body, &rows); err != nil {
		return nil, convert.Fatal("malformed usc submission: %v", err)
	}

	// IR clients compute the score themselves; a value outside the fixed
	// 0..10,000,000 domain means the submission is garbage end to end.
	for _, r := range rows {
		if r.Score < 0 || r.Score > uscMaxScore {
			return nil, convert.Fatal("usc score %d outside 0..%d", r.Score, uscMaxScore)
		}
	}

	items := make([]interface{}, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return newSliceIterator(items), nil
}

func (u *USC) Convert(ctx context.Context, raw interface{}) (*convert.Output, error) {
	rec, ok := raw.(*convert.USCScore)
	if !ok {
		return nil, convert.Internal(raw, "usc adapter received foreign record type %T", raw)
	}
	return u.conv.USC(ctx, rec, u.chartHash)
}

func (u *USC) ClassHandler() ugs.ClassHandler { return nil }
