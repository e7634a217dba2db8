package store

import (
	"database/sql"
	"fmt"
)

// StatValue is one stat reading attached to an assembled player record.
type StatValue struct {
	Value float64 `json:"value"`
	Week  *int    `json:"week"`
}

// DraftAnalysisRow is the stored draft aggregate for one (player, season).
type DraftAnalysisRow struct {
	AveragePick    float64 `json:"average_pick"`
	PercentDrafted float64 `json:"percent_drafted"`
	AverageRound   float64 `json:"average_round"`
	AverageCost    float64 `json:"average_cost"`
}

// PlayerRecord is a fully assembled player: the players row plus its stats,
// draft analysis, and ranks for one season.
type PlayerRecord struct {
	PlayerID       string               `json:"player_id"`
	Name           string               `json:"name"`
	Team           string               `json:"team"`
	Position       string               `json:"position"`
	Status         string               `json:"status"`
	UniformNumber  string               `json:"uniform_number"`
	PercentOwned   *float64             `json:"percent_owned"`
	OwnershipTrend *int                 `json:"ownership_trend"`
	Timestamp      string               `json:"timestamp"`
	ByeWeek        *int                 `json:"bye_week"`
	IsUndroppable  *bool                `json:"is_undroppable"`
	Season         int                  `json:"season"`
	Stats          map[string]StatValue `json:"stats"`
	DraftAnalysis  *DraftAnalysisRow    `json:"draft_analysis,omitempty"`
	Ranks          map[string]int       `json:"ranks"`
}

// GetPlayers assembles every player stored for the given season, ordered by
// name. Season is required and threads through every sub-query; there is no
// implicit default.
func (s *Store) GetPlayers(season int) ([]PlayerRecord, error) {
	rows, err := s.db.Query(`
		SELECT player_id, name, team, position, status, uniform_number,
		       percent_owned, ownership_trend, timestamp, bye_week,
		       is_undroppable, season
		FROM players
		WHERE season = ?
		ORDER BY name, player_id`, season)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		record, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	for i := range players {
		if err := s.attachChildren(&players[i], season); err != nil {
			return nil, err
		}
	}

	return players, nil
}

// GetPlayer assembles a single player for the given season.
// Returns ErrNotFound when no row matches.
func (s *Store) GetPlayer(playerID string, season int) (*PlayerRecord, error) {
	row := s.db.QueryRow(`
		SELECT player_id, name, team, position, status, uniform_number,
		       percent_owned, ownership_trend, timestamp, bye_week,
		       is_undroppable, season
		FROM players
		WHERE player_id = ? AND season = ?`, playerID, season)

	record, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.attachChildren(record, season); err != nil {
		return nil, err
	}
	return record, nil
}

// Seasons lists every season with at least one stored player, newest first.
func (s *Store) Seasons() ([]int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT season FROM players ORDER BY season DESC`)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var season int
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*PlayerRecord, error) {
	var (
		record         PlayerRecord
		name           sql.NullString
		team           sql.NullString
		position       sql.NullString
		status         sql.NullString
		uniformNumber  sql.NullString
		percentOwned   sql.NullFloat64
		ownershipTrend sql.NullInt64
		timestamp      sql.NullString
		byeWeek        sql.NullInt64
		isUndroppable  sql.NullBool
	)

	err := row.Scan(&record.PlayerID, &name, &team, &position, &status,
		&uniformNumber, &percentOwned, &ownershipTrend, &timestamp,
		&byeWeek, &isUndroppable, &record.Season)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}

	record.Name = name.String
	record.Team = team.String
	record.Position = position.String
	record.Status = status.String
	record.UniformNumber = uniformNumber.String
	record.Timestamp = timestamp.String
	if percentOwned.Valid {
		record.PercentOwned = &percentOwned.Float64
	}
	if ownershipTrend.Valid {
		trend := int(ownershipTrend.Int64)
		record.OwnershipTrend = &trend
	}
	if byeWeek.Valid {
		week := int(byeWeek.Int64)
		record.ByeWeek = &week
	}
	if isUndroppable.Valid {
		record.IsUndroppable = &isUndroppable.Bool
	}

	return &record, nil
}

// attachChildren loads the stats, draft analysis, and ranks for one player,
// filtered by the same season as the parent row.
func (s *Store) attachChildren(record *PlayerRecord, season int) error {
	stats, err := s.playerStats(record.PlayerID, season)
	if err != nil {
		return err
	}
	record.Stats = stats

	draft, err := s.draftAnalysis(record.PlayerID, season)
	if err != nil {
		return err
	}
	record.DraftAnalysis = draft

	ranks, err := s.playerRanks(record.PlayerID, season)
	if err != nil {
		return err
	}
	record.Ranks = ranks

	return nil
}

func (s *Store) playerStats(playerID string, season int) (map[string]StatValue, error) {
	rows, err := s.db.Query(`
		SELECT stat_category, stat_value, week
		FROM player_stats
		WHERE player_id = ? AND season = ?
		ORDER BY timestamp, rowid`, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("query stats for player %s: %w", playerID, err)
	}
	defer rows.Close()

	stats := make(map[string]StatValue)
	for rows.Next() {
		var (
			category string
			value    sql.NullFloat64
			week     sql.NullInt64
		)
		if err := rows.Scan(&category, &value, &week); err != nil {
			return nil, fmt.Errorf("scan stat for player %s: %w", playerID, err)
		}
		sv := StatValue{Value: value.Float64}
		if week.Valid {
			w := int(week.Int64)
			sv.Week = &w
		}
		// Later rows for the same category overwrite earlier ones, so the
		// most recent ingestion wins.
		stats[category] = sv
	}
	return stats, rows.Err()
}

func (s *Store) draftAnalysis(playerID string, season int) (*DraftAnalysisRow, error) {
	row := s.db.QueryRow(`
		SELECT average_pick, percent_drafted, average_round, average_cost
		FROM draft_analysis
		WHERE player_id = ? AND season = ?`, playerID, season)

	var (
		da                                             DraftAnalysisRow
		averagePick, percentDrafted, avgRound, avgCost sql.NullFloat64
	)
	err := row.Scan(&averagePick, &percentDrafted, &avgRound, &avgCost)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan draft analysis for player %s: %w", playerID, err)
	}
	da.AveragePick = averagePick.Float64
	da.PercentDrafted = percentDrafted.Float64
	da.AverageRound = avgRound.Float64
	da.AverageCost = avgCost.Float64
	return &da, nil
}

func (s *Store) playerRanks(playerID string, season int) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT rank_type, rank_value
		FROM player_ranks
		WHERE player_id = ? AND season = ?`, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("query ranks for player %s: %w", playerID, err)
	}
	defer rows.Close()

	ranks := make(map[string]int)
	for rows.Next() {
		var (
			rankType string
			value    sql.NullInt64
		)
		if err := rows.Scan(&rankType, &value); err != nil {
			return nil, fmt.Errorf("scan rank for player %s: %w", playerID, err)
		}
		ranks[rankType] = int(value.Int64)
	}
	return ranks, rows.Err()
}
