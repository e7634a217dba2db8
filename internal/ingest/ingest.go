package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gridline/fantasy-data/internal/store"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// Fetcher is the slice of the Yahoo client an ingestion run needs.
type Fetcher interface {
	CurrentNFLGame(ctx context.Context) (*yahoo.Game, error)
	GamePlayers(ctx context.Context, gameKey string, count int) ([]yahoo.Player, error)
	PlayerStats(ctx context.Context, gameKey, playerID string) (map[string]any, error)
}

// Run executes one full ingestion: resolve the current NFL game, page
// players, drop records without a player_id, archive the raw mapping as a
// snapshot, then write the relational batch. season == 0 uses the season
// reported by the game endpoint.
func Run(ctx context.Context, st *store.Store, client Fetcher, season, count int, logger *slog.Logger) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	log := logger.With("run_id", result.RunID)

	game, err := client.CurrentNFLGame(ctx)
	if err != nil {
		return result, fmt.Errorf("resolve NFL game: %w", err)
	}
	if season == 0 {
		season = game.Season
	}
	result.Season = season
	log.Info("resolved NFL game", "game_key", game.GameKey, "season", season)

	fetched, err := client.GamePlayers(ctx, game.GameKey, count)
	if err != nil {
		return result, fmt.Errorf("fetch players: %w", err)
	}
	result.PlayersFetched = len(fetched)

	// Flattened records without a player_id cannot be keyed; drop them
	// here rather than letting the store guess.
	players := make(yahoo.PlayerSet, len(fetched))
	for _, p := range fetched {
		if p.PlayerID == "" {
			result.PlayersSkipped++
			log.Warn("skipping player without player_id", "name", p.Name)
			continue
		}

		// Collection entries sometimes arrive without a stats fragment;
		// backfill from the per-player stats resource. A backfill failure
		// is recorded but does not fail the run.
		if len(p.Stats) == 0 {
			stats, err := client.PlayerStats(ctx, game.GameKey, p.PlayerID)
			if err != nil {
				result.AddErrorf("stats for player %s: %v", p.PlayerID, err)
				log.Warn("stat backfill failed", "player_id", p.PlayerID, "error", err)
			} else {
				p.Stats = stats
			}
		}

		players[p.PlayerID] = yahoo.Envelope{Player: []yahoo.Player{p}}
		result.StatRows += len(p.Stats)
	}
	log.Info("players flattened", "fetched", result.PlayersFetched, "skipped", result.PlayersSkipped)

	snapshotPath, err := st.SaveSnapshot(players, season)
	if err != nil {
		return result, fmt.Errorf("write snapshot: %w", err)
	}
	result.SnapshotPath = snapshotPath

	if err := st.SavePlayers(players, season); err != nil {
		return result, fmt.Errorf("save players: %w", err)
	}
	result.PlayersStored = len(players)

	log.Info("ingestion complete", "summary", result.Summary())
	return result, nil
}
