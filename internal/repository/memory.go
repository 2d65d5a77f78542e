package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
)

// MemoryStore implements Store with in-process maps. It is the test double
// and the default store for ephemeral runs.
type MemoryStore struct {
	mu sync.RWMutex

	songs    map[string]*model.Song  // key: game/songID
	charts   map[string]*model.Chart // key: chartID
	scores   []*model.Score
	pbs      map[string]*model.PBScore   // key: userID/chartID
	stats    map[string]*model.GameStats // key: userID/game/playtype
	tierlist []*model.TierlistEntry
	bpi      map[string]*model.BPIData // key: chartID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		songs:  make(map[string]*model.Song),
		charts: make(map[string]*model.Chart),
		pbs:    make(map[string]*model.PBScore),
		stats:  make(map[string]*model.GameStats),
		bpi:    make(map[string]*model.BPIData),
	}
}

func songKey(game games.Game, songID int) string { return fmt.Sprintf("%s/%d", game, songID) }

func pbKey(userID int, chartID string) string { return fmt.Sprintf("%d/%s", userID, chartID) }

func statsKey(userID int, game games.Game, playtype games.Playtype) string {
	return fmt.Sprintf("%d/%s/%s", userID, game, playtype)
}

func (m *MemoryStore) FindSong(_ context.Context, game games.Game, songID int) (*model.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.songs[songKey(game, songID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) InsertSong(_ context.Context, song *model.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := songKey(song.Game, song.SongID)
	if _, ok := m.songs[key]; ok {
		return ErrDuplicate
	}
	cp := *song
	m.songs[key] = &cp
	return nil
}

func (m *MemoryStore) InsertChart(_ context.Context, chart *model.Chart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.charts[chart.ChartID]; ok {
		return ErrDuplicate
	}
	cp := *chart
	m.charts[chart.ChartID] = &cp
	return nil
}

func (m *MemoryStore) FindChartOnInGameID(_ context.Context, game games.Game, inGameID int, playtype games.Playtype, difficulties []string) (*model.Chart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.charts {
		if c.Game != game || c.Data.InGameID != inGameID || c.Playtype != playtype {
			continue
		}
		for _, d := range difficulties {
			if c.Difficulty == d {
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindChartOnHash(_ context.Context, game games.Game, hash string) (*model.Chart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.charts {
		if c.Game != game {
			continue
		}
		if c.Data.HashMD5 == hash || c.Data.HashSHA256 == hash {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindChartOnSongHash(_ context.Context, songHash string, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.charts {
		if c.Game == games.DDR && c.Data.SongHash == songHash &&
			c.Playtype == playtype && c.Difficulty == difficulty {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindPrimaryChart(_ context.Context, game games.Game, songID int, playtype games.Playtype, difficulty string) (*model.Chart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.charts {
		if c.Game == game && c.SongID == songID && c.Playtype == playtype &&
			c.Difficulty == difficulty && c.IsPrimary {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) InsertScores(_ context.Context, scores []*model.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range scores {
		cp := *s
		m.scores = append(m.scores, &cp)
	}
	return nil
}

func (m *MemoryStore) FindUserChartScores(_ context.Context, userID int, chartID string) ([]*model.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Score
	for _, s := range m.scores {
		if s.UserID == userID && s.ChartID == chartID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) CountChartScores(_ context.Context, chartID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.scores {
		if s.ChartID == chartID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CountChartScoresBelow(_ context.Context, chartID string, score int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.scores {
		if s.ChartID == chartID && s.ScoreData.Score < score {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) FindPB(_ context.Context, userID int, chartID string) (*model.PBScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pb, ok := m.pbs[pbKey(userID, chartID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pb
	return &cp, nil
}

func (m *MemoryStore) UpsertPB(_ context.Context, pb *model.PBScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *pb
	m.pbs[pbKey(pb.UserID, pb.ChartID)] = &cp
	return nil
}

func (m *MemoryStore) FindUserPBs(_ context.Context, userID int, game games.Game, playtype games.Playtype) ([]*model.PBScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.PBScore
	for _, pb := range m.pbs {
		if pb.UserID == userID && pb.Game == game && pb.Playtype == playtype {
			cp := *pb
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindGameStats(_ context.Context, userID int, game games.Game, playtype games.Playtype) (*model.GameStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stats[statsKey(userID, game, playtype)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) InsertGameStats(_ context.Context, stats *model.GameStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := statsKey(stats.UserID, stats.Game, stats.Playtype)
	if _, ok := m.stats[key]; ok {
		return ErrDuplicate
	}
	cp := *stats
	m.stats[key] = &cp
	return nil
}

func (m *MemoryStore) UpdateGameStats(_ context.Context, stats *model.GameStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := statsKey(stats.UserID, stats.Game, stats.Playtype)
	if _, ok := m.stats[key]; !ok {
		return ErrNotFound
	}
	cp := *stats
	m.stats[key] = &cp
	return nil
}

func (m *MemoryStore) InsertTierlistEntry(_ context.Context, entry *model.TierlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	m.tierlist = append(m.tierlist, &cp)
	return nil
}

func (m *MemoryStore) FindTierlistEntry(_ context.Context, chartID, kind string) (*model.TierlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.tierlist {
		if e.ChartID == chartID && e.Kind == kind {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindTierlistEntries(_ context.Context, chartID, kind string) ([]model.TierlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.TierlistEntry
	for _, e := range m.tierlist {
		if e.ChartID == chartID && e.Kind == kind {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertBPIData(_ context.Context, data *model.BPIData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *data
	m.bpi[data.ChartID] = &cp
	return nil
}

func (m *MemoryStore) FindBPIData(_ context.Context, chartID string) (*model.BPIData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.bpi[chartID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}
