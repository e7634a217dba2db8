package store

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

func TestWriteCSVHeaderFromFirstRecord(t *testing.T) {
	s := setupStore(t)

	// Records come back ordered by name, so "Aaron" defines the header.
	players := yahoo.PlayerSet{
		"100": {Player: []yahoo.Player{{
			PlayerID: "100",
			Name:     "Aaron First",
			Team:     "Testville Tigers",
			Position: "RB",
			Stats:    map[string]any{"5": "12"},
			Ranks:    map[string]int{"PS": 3},
		}}},
		"200": {Player: []yahoo.Player{{
			PlayerID: "200",
			Name:     "Zeke Second",
			Team:     "Testville Tigers",
			Position: "WR",
			Stats:    map[string]any{"5": "4", "7": "88"},
		}}},
	}
	require.NoError(t, s.SavePlayers(players, 2025))

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf, 2025))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + one row per player

	header := rows[0]
	assert.Contains(t, header, "player_id")
	assert.Contains(t, header, "stat_5")
	assert.Contains(t, header, "rank_PS")
	// Categories the first record lacks are dropped for everyone.
	assert.NotContains(t, header, "stat_7")

	byCol := func(row []string, col string) string {
		for i, name := range header {
			if name == col {
				return row[i]
			}
		}
		t.Fatalf("column %q not in header", col)
		return ""
	}

	first, second := rows[1], rows[2]
	assert.Equal(t, "100", byCol(first, "player_id"))
	assert.Equal(t, "12", byCol(first, "stat_5"))
	assert.Equal(t, "3", byCol(first, "rank_PS"))

	assert.Equal(t, "200", byCol(second, "player_id"))
	assert.Equal(t, "4", byCol(second, "stat_5"))
	// Missing fields render as blanks, never as "0".
	assert.Equal(t, "", byCol(second, "rank_PS"))
	assert.Equal(t, "", byCol(second, "status"))
	assert.Equal(t, "", byCol(second, "bye_week"))
}

func TestWriteCSVEmptySeason(t *testing.T) {
	s := setupStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf, 2025))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, csvPlayerColumns, rows[0])
}

func TestExportCSVDefaultPath(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.SavePlayers(onePlayer("100", "A. Back", map[string]any{"5": "12"}), 2025))

	path, err := s.ExportCSV(2025, "")
	require.NoError(t, err)
	assert.Equal(t, s.exportDir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "players_2025_")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "A. Back")
}

func TestExportCSVExplicitPath(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.SavePlayers(onePlayer("100", "A. Back", nil), 2025))

	out := filepath.Join(t.TempDir(), "out.csv")
	path, err := s.ExportCSV(2025, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	_, err = os.Stat(out)
	require.NoError(t, err)
}
