package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

// Snapshot is the on-disk document for one ingestion run's raw output.
type Snapshot struct {
	Timestamp string          `json:"timestamp"`
	Season    int             `json:"season"`
	Data      yahoo.PlayerSet `json:"data"`
}

// SaveSnapshot writes the raw player mapping to a new immutable JSON file
// named by season and timestamp, and returns the path written. Snapshots
// are never pruned.
func (s *Store) SaveSnapshot(players yahoo.PlayerSet, season int) (string, error) {
	timestamp := s.now().UTC().Format(time.RFC3339)
	filename := fmt.Sprintf("players_%d_%s.json", season, timestamp)
	path := filepath.Join(s.jsonDir, filename)

	doc := Snapshot{
		Timestamp: timestamp,
		Season:    season,
		Data:      players,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}

	s.logger.Info("snapshot written", "path", path, "players", len(players))
	return path, nil
}

// LoadSnapshot reads a snapshot file back into its document form.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var doc Snapshot
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &doc, nil
}
