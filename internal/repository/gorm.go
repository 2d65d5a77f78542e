package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
)

// GormStore implements Store over a relational database through gorm.
// Free-form document fields (hit data, score meta, calculated data) live in
// JSON columns.
type GormStore struct {
	db *gorm.DB
}

type songRow struct {
	Game   string `gorm:"primaryKey"`
	SongID int    `gorm:"primaryKey"`
	Title  string
	Artist string
}

func (songRow) TableName() string { return "songs" }

type chartRow struct {
	ChartID    string `gorm:"primaryKey"`
	SongID     int    `gorm:"index"`
	Game       string `gorm:"index"`
	Playtype   string
	Difficulty string
	Level      string
	LevelNum   float64
	IsPrimary  bool
	Versions   datatypes.JSON
	InGameID   int    `gorm:"index"`
	HashMD5    string `gorm:"index"`
	HashSHA256 string `gorm:"index"`
	SongHash   string `gorm:"index"`
	NoteCount  int
}

func (chartRow) TableName() string { return "charts" }

type scoreRow struct {
	ScoreID        string `gorm:"primaryKey"`
	UserID         int    `gorm:"index:idx_scores_user_chart"`
	ChartID        string `gorm:"index:idx_scores_user_chart;index"`
	SongID         int
	Game           string
	Playtype       string
	Service        string
	ImportType     string
	Comment        string
	TimeAchieved   time.Time
	Score          int `gorm:"index"`
	Percent        float64
	Grade          string
	Lamp           string
	HitData        datatypes.JSON
	HitMeta        datatypes.JSON
	ScoreMeta      datatypes.JSON
	CalculatedData datatypes.JSON
}

func (scoreRow) TableName() string { return "scores" }

type pbRow struct {
	UserID         int    `gorm:"primaryKey"`
	ChartID        string `gorm:"primaryKey"`
	SongID         int
	Game           string `gorm:"index:idx_pbs_user_game_pt"`
	Playtype       string `gorm:"index:idx_pbs_user_game_pt"`
	Score          int
	Percent        float64
	Grade          string
	Lamp           string
	HitData        datatypes.JSON
	HitMeta        datatypes.JSON
	CalculatedData datatypes.JSON
	ScorePB        string
	LampPB         string
}

func (pbRow) TableName() string { return "personal_bests" }

type gameStatsRow struct {
	UserID        int    `gorm:"primaryKey"`
	Game          string `gorm:"primaryKey"`
	Playtype      string `gorm:"primaryKey"`
	Rating        float64
	LampRating    float64
	CustomRatings datatypes.JSON
	Classes       datatypes.JSON
}

func (gameStatsRow) TableName() string { return "game_stats" }

type tierlistRow struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	ChartID string `gorm:"index"`
	Kind    string
	Key     string
	Value   float64
}

func (tierlistRow) TableName() string { return "tierlist_data" }

type bpiRow struct {
	ChartID       string `gorm:"primaryKey"`
	KaidenAverage int
	WorldRecord   int
	Coefficient   *float64
}

func (bpiRow) TableName() string { return "bpi_data" }

// OpenSQLite establishes a SQLite-backed store and performs schema
// migrations.
func OpenSQLite(path string) (*GormStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&songRow{}, &chartRow{}, &scoreRow{},
		&pbRow{}, &gameStatsRow{}, &tierlistRow{}, &bpiRow{},
	); err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

// NewGormStore wraps an already-open gorm handle. The caller owns the
// connection lifecycle and must have migrated the schema.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func mustJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func fromJSON(raw datatypes.JSON, out interface{}) {
	if len(raw) == 0 {
		return
	}
	// Row contents were produced by mustJSON; decoding failures would mean
	// external tampering and yield the zero value.
	_ = json.Unmarshal(raw, out)
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func chartFromRow(r *chartRow) *model.Chart {
	c := &model.Chart{
		ChartID:    r.ChartID,
		SongID:     r.SongID,
		Game:       games.Game(r.Game),
		Playtype:   games.Playtype(r.Playtype),
		Difficulty: r.Difficulty,
		Level:      r.Level,
		LevelNum:   r.LevelNum,
		IsPrimary:  r.IsPrimary,
		Data: model.ChartData{
			InGameID:   r.InGameID,
			HashMD5:    r.HashMD5,
			HashSHA256: r.HashSHA256,
			SongHash:   r.SongHash,
			NoteCount:  r.NoteCount,
		},
	}
	fromJSON(r.Versions, &c.Versions)
	return c
}

func (g *GormStore) FindSong(ctx context.Context, game games.Game, songID int) (*model.Song, error) {
	var row songRow
	err := g.db.WithContext(ctx).
		Where("game = ? AND song_id = ?", string(game), songID).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &model.Song{
		SongID: row.SongID,
		Game:   games.Game(row.Game),
		Title:  row.Title,
		Artist: row.Artist,
	}, nil
}

func (g *GormStore) InsertSong(ctx context.Context, song *model.Song) error {
	row := songRow{
		Game:   string(song.Game),
		SongID: song.SongID,
		Title:  song.Title,
		Artist: song.Artist,
	}
	return translateErr(g.db.WithContext(ctx).Create(&row).Error)
}

func (g *GormStore) InsertChart(ctx context.Context, chart *model.Chart) error {
	row := chartRow{
		ChartID:    chart.ChartID,
		SongID:     chart.SongID,
		Game:       string(chart.Game),
		Playtype:   string(chart.Playtype),
		Difficulty: chart.Difficulty,
		Level:      chart.Level,
		LevelNum:   chart.LevelNum,
		IsPrimary:  chart.IsPrimary,
		Versions:   mustJSON(chart.Versions),
		InGameID:   chart.Data.InGameID,
		HashMD5:    chart.Data.HashMD5,
		HashSHA256: chart.Data.HashSHA256,
		SongHash:   chart.Data.SongHash,
		NoteCount:  chart.Data.NoteCount,
	}
	return translateErr(g.db.WithContext(ctx).Create(&row).Error)
}

func (g *GormStore) FindChartOnInGameID(ctx context.Context, game games.Game, inGameID int, playtype games.Playtype, difficulties []string) (*model.Chart, error) {
	var row chartRow
	err := g.db.WithContext(ctx).
		Where("game = ? AND in_game_id = ? AND playtype = ? AND difficulty IN ?",
			string(game), inGameID, string(playtype), difficulties).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return chartFromRow(&row), nil
}

func (g *GormStore) FindChartOnHash(ctx context.Context, game games.Game, hash string) (*model.Chart, error) {
	var row chartRow
	err := g.db.WithContext(ctx).
		Where("game = ? AND (hash_md5 = ? OR hash_sha256 = ?)", string(game), hash, hash).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return chartFromRow(&row), nil
}

func (g *GormStore) FindChartOnSongHash(ctx context.Context, songHash string, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	var row chartRow
	err := g.db.WithContext(ctx).
		Where("game = ? AND song_hash = ? AND playtype = ? AND difficulty = ?",
			string(games.DDR), songHash, string(playtype), difficulty).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return chartFromRow(&row), nil
}

func (g *GormStore) FindPrimaryChart(ctx context.Context, game games.Game, songID int, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	var row chartRow
	err := g.db.WithContext(ctx).
		Where("game = ? AND song_id = ? AND playtype = ? AND difficulty = ? AND is_primary = ?",
			string(game), songID, string(playtype), difficulty, true).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return chartFromRow(&row), nil
}

func (g *GormStore) InsertScores(ctx context.Context, scores []*model.Score) error {
	if len(scores) == 0 {
		return nil
	}
	rows := make([]scoreRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, scoreRow{
			ScoreID:        s.ScoreID,
			UserID:         s.UserID,
			ChartID:        s.ChartID,
			SongID:         s.SongID,
			Game:           string(s.Game),
			Playtype:       string(s.Playtype),
			Service:        s.Service,
			ImportType:     s.ImportType,
			Comment:        s.Comment,
			TimeAchieved:   s.TimeAchieved,
			Score:          s.ScoreData.Score,
			Percent:        s.ScoreData.Percent,
			Grade:          s.ScoreData.Grade,
			Lamp:           s.ScoreData.Lamp,
			HitData:        mustJSON(s.ScoreData.HitData),
			HitMeta:        mustJSON(s.ScoreData.HitMeta),
			ScoreMeta:      mustJSON(s.ScoreMeta),
			CalculatedData: mustJSON(s.CalculatedData),
		})
	}
	return translateErr(g.db.WithContext(ctx).Create(&rows).Error)
}

func scoreFromRow(r *scoreRow) *model.Score {
	s := &model.Score{
		DryScore: model.DryScore{
			Game:         games.Game(r.Game),
			Service:      r.Service,
			ImportType:   r.ImportType,
			Comment:      r.Comment,
			TimeAchieved: r.TimeAchieved,
			ScoreData: model.ScoreData{
				Score:   r.Score,
				Percent: r.Percent,
				Grade:   r.Grade,
				Lamp:    r.Lamp,
			},
		},
		ScoreID:  r.ScoreID,
		UserID:   r.UserID,
		ChartID:  r.ChartID,
		SongID:   r.SongID,
		Playtype: games.Playtype(r.Playtype),
	}
	fromJSON(r.HitData, &s.ScoreData.HitData)
	fromJSON(r.HitMeta, &s.ScoreData.HitMeta)
	fromJSON(r.ScoreMeta, &s.ScoreMeta)
	fromJSON(r.CalculatedData, &s.CalculatedData)
	return s
}

func (g *GormStore) FindUserChartScores(ctx context.Context, userID int, chartID string) ([]*model.Score, error) {
	var rows []scoreRow
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND chart_id = ?", userID, chartID).
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err)
	}
	out := make([]*model.Score, 0, len(rows))
	for i := range rows {
		out = append(out, scoreFromRow(&rows[i]))
	}
	return out, nil
}

func (g *GormStore) CountChartScores(ctx context.Context, chartID string) (int, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&scoreRow{}).
		Where("chart_id = ?", chartID).
		Count(&n).Error
	return int(n), translateErr(err)
}

func (g *GormStore) CountChartScoresBelow(ctx context.Context, chartID string, score int) (int, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&scoreRow{}).
		Where("chart_id = ? AND score < ?", chartID, score).
		Count(&n).Error
	return int(n), translateErr(err)
}

func (g *GormStore) FindPB(ctx context.Context, userID int, chartID string) (*model.PBScore, error) {
	var row pbRow
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND chart_id = ?", userID, chartID).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return pbFromRow(&row), nil
}

func pbFromRow(r *pbRow) *model.PBScore {
	pb := &model.PBScore{
		UserID:   r.UserID,
		ChartID:  r.ChartID,
		SongID:   r.SongID,
		Game:     games.Game(r.Game),
		Playtype: games.Playtype(r.Playtype),
		ScoreData: model.ScoreData{
			Score:   r.Score,
			Percent: r.Percent,
			Grade:   r.Grade,
			Lamp:    r.Lamp,
		},
		ComposedFrom: model.PBComposition{ScorePB: r.ScorePB, LampPB: r.LampPB},
	}
	fromJSON(r.HitData, &pb.ScoreData.HitData)
	fromJSON(r.HitMeta, &pb.ScoreData.HitMeta)
	fromJSON(r.CalculatedData, &pb.CalculatedData)
	return pb
}

func (g *GormStore) UpsertPB(ctx context.Context, pb *model.PBScore) error {
	row := pbRow{
		UserID:         pb.UserID,
		ChartID:        pb.ChartID,
		SongID:         pb.SongID,
		Game:           string(pb.Game),
		Playtype:       string(pb.Playtype),
		Score:          pb.ScoreData.Score,
		Percent:        pb.ScoreData.Percent,
		Grade:          pb.ScoreData.Grade,
		Lamp:           pb.ScoreData.Lamp,
		HitData:        mustJSON(pb.ScoreData.HitData),
		HitMeta:        mustJSON(pb.ScoreData.HitMeta),
		CalculatedData: mustJSON(pb.CalculatedData),
		ScorePB:        pb.ComposedFrom.ScorePB,
		LampPB:         pb.ComposedFrom.LampPB,
	}
	return translateErr(g.db.WithContext(ctx).Save(&row).Error)
}

func (g *GormStore) FindUserPBs(ctx context.Context, userID int, game games.Game, playtype games.Playtype) ([]*model.PBScore, error) {
	var rows []pbRow
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND game = ? AND playtype = ?", userID, string(game), string(playtype)).
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err)
	}
	out := make([]*model.PBScore, 0, len(rows))
	for i := range rows {
		out = append(out, pbFromRow(&rows[i]))
	}
	return out, nil
}

func (g *GormStore) FindGameStats(ctx context.Context, userID int, game games.Game, playtype games.Playtype) (*model.GameStats, error) {
	var row gameStatsRow
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND game = ? AND playtype = ?", userID, string(game), string(playtype)).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	stats := &model.GameStats{
		UserID:     row.UserID,
		Game:       games.Game(row.Game),
		Playtype:   games.Playtype(row.Playtype),
		Rating:     row.Rating,
		LampRating: row.LampRating,
	}
	fromJSON(row.CustomRatings, &stats.CustomRatings)
	fromJSON(row.Classes, &stats.Classes)
	return stats, nil
}

func statsToRow(stats *model.GameStats) gameStatsRow {
	return gameStatsRow{
		UserID:        stats.UserID,
		Game:          string(stats.Game),
		Playtype:      string(stats.Playtype),
		Rating:        stats.Rating,
		LampRating:    stats.LampRating,
		CustomRatings: mustJSON(stats.CustomRatings),
		Classes:       mustJSON(stats.Classes),
	}
}

func (g *GormStore) InsertGameStats(ctx context.Context, stats *model.GameStats) error {
	row := statsToRow(stats)
	return translateErr(g.db.WithContext(ctx).Create(&row).Error)
}

func (g *GormStore) UpdateGameStats(ctx context.Context, stats *model.GameStats) error {
	row := statsToRow(stats)
	return translateErr(g.db.WithContext(ctx).Save(&row).Error)
}

func (g *GormStore) InsertTierlistEntry(ctx context.Context, entry *model.TierlistEntry) error {
	row := tierlistRow{
		ChartID: entry.ChartID,
		Kind:    entry.Kind,
		Key:     entry.Key,
		Value:   entry.Value,
	}
	return translateErr(g.db.WithContext(ctx).Create(&row).Error)
}

func (g *GormStore) FindTierlistEntry(ctx context.Context, chartID, kind string) (*model.TierlistEntry, error) {
	var row tierlistRow
	err := g.db.WithContext(ctx).
		Where("chart_id = ? AND kind = ?", chartID, kind).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &model.TierlistEntry{ChartID: row.ChartID, Kind: row.Kind, Key: row.Key, Value: row.Value}, nil
}

func (g *GormStore) FindTierlistEntries(ctx context.Context, chartID, kind string) ([]model.TierlistEntry, error) {
	var rows []tierlistRow
	err := g.db.WithContext(ctx).
		Where("chart_id = ? AND kind = ?", chartID, kind).
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err)
	}
	out := make([]model.TierlistEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.TierlistEntry{ChartID: r.ChartID, Kind: r.Kind, Key: r.Key, Value: r.Value})
	}
	return out, nil
}

func (g *GormStore) InsertBPIData(ctx context.Context, data *model.BPIData) error {
	row := bpiRow{
		ChartID:       data.ChartID,
		KaidenAverage: data.KaidenAverage,
		WorldRecord:   data.WorldRecord,
		Coefficient:   data.Coefficient,
	}
	return translateErr(g.db.WithContext(ctx).Create(&row).Error)
}

func (g *GormStore) FindBPIData(ctx context.Context, chartID string) (*model.BPIData, error) {
	var row bpiRow
	err := g.db.WithContext(ctx).Where("chart_id = ?", chartID).First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &model.BPIData{
		ChartID:       row.ChartID,
		KaidenAverage: row.KaidenAverage,
		WorldRecord:   row.WorldRecord,
		Coefficient:   row.Coefficient,
	}, nil
}
