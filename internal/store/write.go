package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

// SavePlayers writes one ingestion batch to the relational tables inside a
// single transaction. Player rows are upserted (last writer wins, full row
// overwritten); stat rows are appended; draft analysis and ranks are
// upserted per season. Any failure rolls back the entire batch.
func (s *Store) SavePlayers(players yahoo.PlayerSet, season int) error {
	timestamp := s.now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Deterministic write order keeps logs and failures reproducible.
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, playerID := range ids {
		envelope := players[playerID]
		if len(envelope.Player) == 0 {
			continue
		}
		player := envelope.Player[0]

		_, err := tx.Exec(`
			INSERT INTO players (
				player_id, name, team, position, status, uniform_number,
				percent_owned, ownership_trend, timestamp, season,
				bye_week, is_undroppable
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (player_id, season) DO UPDATE SET
				name = excluded.name,
				team = excluded.team,
				position = excluded.position,
				status = excluded.status,
				uniform_number = excluded.uniform_number,
				percent_owned = excluded.percent_owned,
				ownership_trend = excluded.ownership_trend,
				timestamp = excluded.timestamp,
				bye_week = excluded.bye_week,
				is_undroppable = excluded.is_undroppable`,
			playerID, player.Name, player.Team, player.Position, player.Status,
			player.UniformNumber, player.PercentOwned, player.OwnershipTrend,
			timestamp, season, player.ByeWeek, player.IsUndroppable,
		)
		if err != nil {
			s.logger.Error("player upsert failed", "player_id", playerID, "error", err)
			return fmt.Errorf("upsert player %s: %w", playerID, err)
		}

		if err := s.insertStats(tx, playerID, season, timestamp, player.Stats); err != nil {
			s.logger.Error("stat insert failed", "player_id", playerID, "error", err)
			return err
		}

		if player.DraftAnalysis != nil {
			if err := s.upsertDraftAnalysis(tx, playerID, season, timestamp, player.DraftAnalysis); err != nil {
				s.logger.Error("draft analysis upsert failed", "player_id", playerID, "error", err)
				return err
			}
		}

		if err := s.upsertRanks(tx, playerID, season, timestamp, player.Ranks); err != nil {
			s.logger.Error("rank upsert failed", "player_id", playerID, "error", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Info("player batch saved", "players", len(ids), "season", season)
	return nil
}

// insertStats appends one row per stat code. Values are validated to be
// numeric here; a non-numeric value fails the batch with a ValidationError.
func (s *Store) insertStats(tx *sql.Tx, playerID string, season int, timestamp string, stats map[string]any) error {
	if len(stats) == 0 {
		return nil
	}

	codes := make([]string, 0, len(stats))
	for code := range stats {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		value, ok := yahoo.NumericValue(stats[code])
		if !ok {
			return &ValidationError{PlayerID: playerID, StatID: code, Value: stats[code]}
		}
		_, err := tx.Exec(`
			INSERT INTO player_stats (player_id, stat_category, stat_value, week, season, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)`,
			playerID, code, value, nil, season, timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert stat %s for player %s: %w", code, playerID, err)
		}
	}
	return nil
}

func (s *Store) upsertDraftAnalysis(tx *sql.Tx, playerID string, season int, timestamp string, da *yahoo.DraftAnalysis) error {
	_, err := tx.Exec(`
		INSERT INTO draft_analysis (
			player_id, average_pick, percent_drafted, average_round,
			average_cost, timestamp, season
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id, season) DO UPDATE SET
			average_pick = excluded.average_pick,
			percent_drafted = excluded.percent_drafted,
			average_round = excluded.average_round,
			average_cost = excluded.average_cost,
			timestamp = excluded.timestamp`,
		playerID, da.AveragePick, da.PercentDrafted, da.AverageRound,
		da.AverageCost, timestamp, season,
	)
	if err != nil {
		return fmt.Errorf("upsert draft analysis for player %s: %w", playerID, err)
	}
	return nil
}

func (s *Store) upsertRanks(tx *sql.Tx, playerID string, season int, timestamp string, ranks map[string]int) error {
	rankTypes := make([]string, 0, len(ranks))
	for rankType := range ranks {
		rankTypes = append(rankTypes, rankType)
	}
	sort.Strings(rankTypes)

	for _, rankType := range rankTypes {
		_, err := tx.Exec(`
			INSERT INTO player_ranks (player_id, rank_type, rank_value, timestamp, season)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (player_id, season, rank_type) DO UPDATE SET
				rank_value = excluded.rank_value,
				timestamp = excluded.timestamp`,
			playerID, rankType, ranks[rankType], timestamp, season,
		)
		if err != nil {
			return fmt.Errorf("upsert rank %s for player %s: %w", rankType, playerID, err)
		}
	}
	return nil
}
