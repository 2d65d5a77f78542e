package adapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/ugs"
)

// worldsEndLevel is the difficulty index ARTEMiS uses for WORLD'S END
// charts, which have no meaningful score semantics and are skipped.
const worldsEndLevel = 5

// ArtemisChunithm imports a user's CHUNITHM playlog straight from an
// ARTEMiS arcade server database. The DSN must carry parseTime=true so
// playlog timestamps scan as time values.
type ArtemisChunithm struct {
	conv          *convert.Converter
	db            *sql.DB
	artemisUserID int
}

// NewArtemisChunithm creates an adapter reading plays of artemisUserID
// from db.
func NewArtemisChunithm(conv *convert.Converter, db *sql.DB, artemisUserID int) *ArtemisChunithm {
	return &ArtemisChunithm{conv: conv, db: db, artemisUserID: artemisUserID}
}

func (a *ArtemisChunithm) ImportType() string { return "api/artemis-chunithm" }

func (a *ArtemisChunithm) Game() games.Game { return games.CHUNITHM }

func (a *ArtemisChunithm) Parse(ctx context.Context) (Iterator, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT musicId, level, score, isClear, isFullCombo, isAllJustice,
		       judgeCritical, judgeJustice, judgeAttack, judgeGuilty,
		       maxCombo, userPlayDate
		FROM chuni_score_playlog
		WHERE user = ? AND level < ?`,
		a.artemisUserID, worldsEndLevel,
	)
	if err != nil {
		return nil, convert.Fatal("querying artemis playlog: %v", err)
	}
	defer rows.Close()

	var items []interface{}
	for rows.Next() {
		rec := &convert.ArtemisChunithmPlaylog{}
		var playDate sql.NullTime
		err := rows.Scan(
			&rec.MusicID, &rec.Level, &rec.Score,
			&rec.IsClear, &rec.IsFullCombo, &rec.IsAllJustice,
			&rec.JudgeCritical, &rec.JudgeJustice, &rec.JudgeAttack, &rec.JudgeGuilty,
			&rec.MaxCombo, &playDate,
		)
		if err != nil {
			return nil, convert.Fatal("scanning artemis playlog row: %v", err)
		}
		if playDate.Valid {
			rec.UserPlayDate = playDate.Time
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, convert.Fatal("reading artemis playlog: %v", err)
	}

	return newSliceIterator(items), nil
}

func (a *ArtemisChunithm) Convert(ctx context.Context, raw interface{}) (*convert.Output, error) {
	rec, ok := raw.(*convert.ArtemisChunithmPlaylog)
	if !ok {
		return nil, convert.Internal(raw, "artemis adapter received foreign record type %T", raw)
	}
	return a.conv.ArtemisChunithm(ctx, rec)
}

// ClassHandler reads the user's dan and emblem ranks from the latest
// profile row.
func (a *ArtemisChunithm) ClassHandler() ugs.ClassHandler {
	return func(ctx context.Context, _ games.Game, _ games.Playtype, _ int, _ map[string]float64) (map[string]int, error) {
		row := a.db.QueryRowContext(ctx, `
			SELECT classEmblemBase, classEmblemMedal
			FROM chuni_profile_data
			WHERE user = ?
			ORDER BY version DESC
			LIMIT 1`,
			a.artemisUserID,
		)

		var dan, emblem int
		if err := row.Scan(&dan, &emblem); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, err
		}
		return map[string]int{"dan": dan, "emblem": emblem}, nil
	}
}
