package store

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

// setupStore creates a Store rooted in a temp directory, closed on cleanup.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// onePlayer builds the single-player mapping used across tests.
func onePlayer(id, name string, stats map[string]any) yahoo.PlayerSet {
	return yahoo.PlayerSet{
		id: {Player: []yahoo.Player{{
			PlayerID: id,
			Name:     name,
			Team:     "Testville Tigers",
			Position: "RB",
			Stats:    stats,
		}}},
	}
}

func (s *Store) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSaveAndGetPlayersRoundTrip(t *testing.T) {
	s := setupStore(t)

	players := onePlayer("100", "A. Back", map[string]any{"5": float64(12)})
	require.NoError(t, s.SavePlayers(players, 2025))

	got, err := s.GetPlayers(2025)
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, "100", p.PlayerID)
	assert.Equal(t, "A. Back", p.Name)
	assert.Equal(t, "Testville Tigers", p.Team)
	assert.Equal(t, "RB", p.Position)
	assert.Equal(t, 2025, p.Season)
	assert.NotEmpty(t, p.Timestamp)

	require.Contains(t, p.Stats, "5")
	assert.Equal(t, 12.0, p.Stats["5"].Value)
	assert.Nil(t, p.Stats["5"].Week)
}

func TestUpsertReplacesPlayerAndAppendsStats(t *testing.T) {
	s := setupStore(t)

	require.NoError(t, s.SavePlayers(onePlayer("100", "A. Back", map[string]any{"5": "12"}), 2025))
	require.NoError(t, s.SavePlayers(onePlayer("100", "Alvin Back", map[string]any{"5": "14"}), 2025))

	// Player row replaced, not duplicated; last write wins.
	assert.Equal(t, 1, s.countRows(t, "players"))
	got, err := s.GetPlayers(2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alvin Back", got[0].Name)

	// Stat rows append on every run.
	assert.Equal(t, 2, s.countRows(t, "player_stats"))

	// The assembled record carries the most recent stat value.
	assert.Equal(t, 14.0, got[0].Stats["5"].Value)
}

func TestNonNumericStatFailsWholeBatch(t *testing.T) {
	s := setupStore(t)

	players := yahoo.PlayerSet{
		"100": {Player: []yahoo.Player{{PlayerID: "100", Name: "Good Player",
			Stats: map[string]any{"5": "12"}}}},
		"200": {Player: []yahoo.Player{{PlayerID: "200", Name: "Bad Player",
			Stats: map[string]any{"7": "not-a-number"}}}},
	}

	err := s.SavePlayers(players, 2025)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "200", verr.PlayerID)
	assert.Equal(t, "7", verr.StatID)

	// The entire batch rolled back, including the valid player.
	assert.Equal(t, 0, s.countRows(t, "players"))
	assert.Equal(t, 0, s.countRows(t, "player_stats"))
}

func TestSeasonScopingIsExplicit(t *testing.T) {
	s := setupStore(t)

	require.NoError(t, s.SavePlayers(onePlayer("100", "A. Back 2024", map[string]any{"5": "9"}), 2024))
	require.NoError(t, s.SavePlayers(onePlayer("100", "A. Back 2025", map[string]any{"5": "12"}), 2025))

	// One row per (player_id, season); seasons do not collide.
	assert.Equal(t, 2, s.countRows(t, "players"))

	for _, tc := range []struct {
		season int
		name   string
		value  float64
	}{
		{2024, "A. Back 2024", 9},
		{2025, "A. Back 2025", 12},
	} {
		got, err := s.GetPlayers(tc.season)
		require.NoError(t, err)
		require.Len(t, got, 1, "season %d", tc.season)
		assert.Equal(t, tc.name, got[0].Name)
		require.Contains(t, got[0].Stats, "5")
		assert.Equal(t, tc.value, got[0].Stats["5"].Value)
	}

	seasons, err := s.Seasons()
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024}, seasons)
}

func TestDraftAnalysisAndRanksRoundTrip(t *testing.T) {
	s := setupStore(t)

	players := yahoo.PlayerSet{
		"100": {Player: []yahoo.Player{{
			PlayerID: "100",
			Name:     "A. Back",
			DraftAnalysis: &yahoo.DraftAnalysis{
				AveragePick:    24.6,
				PercentDrafted: 99.7,
				AverageRound:   3.1,
				AverageCost:    41.5,
			},
			Ranks: map[string]int{"PS": 5, "PSR": 7},
		}}},
	}
	require.NoError(t, s.SavePlayers(players, 2025))

	got, err := s.GetPlayer("100", 2025)
	require.NoError(t, err)

	require.NotNil(t, got.DraftAnalysis)
	assert.Equal(t, 24.6, got.DraftAnalysis.AveragePick)
	assert.Equal(t, 99.7, got.DraftAnalysis.PercentDrafted)
	assert.Equal(t, map[string]int{"PS": 5, "PSR": 7}, got.Ranks)

	// Re-ingestion replaces rather than duplicates.
	require.NoError(t, s.SavePlayers(players, 2025))
	assert.Equal(t, 1, s.countRows(t, "draft_analysis"))
	assert.Equal(t, 2, s.countRows(t, "player_ranks"))
}

func TestEntriesWithoutNestedPlayerAreSkipped(t *testing.T) {
	s := setupStore(t)

	players := yahoo.PlayerSet{
		"100": {Player: []yahoo.Player{{PlayerID: "100", Name: "A. Back"}}},
		"999": {Player: nil},
	}
	require.NoError(t, s.SavePlayers(players, 2025))

	assert.Equal(t, 1, s.countRows(t, "players"))
}

func TestGetPlayerNotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetPlayer("nope", 2025)
	assert.True(t, errors.Is(err, ErrNotFound))
}
