package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// fixed player columns present in every export, in output order.
var csvPlayerColumns = []string{
	"player_id", "name", "team", "position", "status",
	"uniform_number", "percent_owned", "ownership_trend",
	"timestamp", "bye_week", "is_undroppable",
}

// ExportCSV flattens the season's assembled records to a CSV file and
// returns the path written. An empty path selects the default
// exports/players_<season>_<timestamp>.csv under the data directory.
func (s *Store) ExportCSV(season int, path string) (string, error) {
	if path == "" {
		timestamp := s.now().UTC().Format("20060102_150405")
		path = filepath.Join(s.exportDir, fmt.Sprintf("players_%d_%s.csv", season, timestamp))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file %s: %w", path, err)
	}
	defer f.Close()

	if err := s.WriteCSV(f, season); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file %s: %w", path, err)
	}

	s.logger.Info("CSV export written", "path", path, "season", season)
	return path, nil
}

// WriteCSV streams the season's records as CSV to w.
//
// The stat_<code> and rank_<type> columns are derived from the FIRST record
// only: categories that later records carry but the first lacks are dropped
// from every row. Missing fields render as blanks.
func (s *Store) WriteCSV(w io.Writer, season int) error {
	players, err := s.GetPlayers(season)
	if err != nil {
		return err
	}

	header := append([]string{}, csvPlayerColumns...)
	var statCodes, rankTypes []string
	if len(players) > 0 {
		statCodes = sortedKeys(players[0].Stats)
		for _, code := range statCodes {
			header = append(header, "stat_"+code)
		}
		rankTypes = sortedKeysInt(players[0].Ranks)
		for _, rankType := range rankTypes {
			header = append(header, "rank_"+rankType)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, p := range players {
		row := make([]string, 0, len(header))
		row = append(row,
			p.PlayerID, p.Name, p.Team, p.Position, p.Status,
			p.UniformNumber, formatFloatPtr(p.PercentOwned),
			formatIntPtr(p.OwnershipTrend), p.Timestamp,
			formatIntPtr(p.ByeWeek), formatBoolPtr(p.IsUndroppable),
		)
		for _, code := range statCodes {
			if sv, ok := p.Stats[code]; ok {
				row = append(row, strconv.FormatFloat(sv.Value, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		for _, rankType := range rankTypes {
			if rank, ok := p.Ranks[rankType]; ok {
				row = append(row, strconv.Itoa(rank))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row for player %s: %w", p.PlayerID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func sortedKeys(m map[string]StatValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysInt(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
