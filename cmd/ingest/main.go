// Command ingest is the fantasy-data ingestion CLI.
//
// Usage:
//
//	fantasy-ingest auth
//	fantasy-ingest run --count 25
//	fantasy-ingest run --season 2025 --count 100
//	fantasy-ingest export --season 2025
//	fantasy-ingest players --season 2025
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/ingest"
	"github.com/gridline/fantasy-data/internal/store"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "fantasy-ingest",
		Short: "Yahoo Fantasy NFL data ingestion CLI",
	}

	root.AddCommand(authCmd())
	root.AddCommand(runCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(playersCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// auth command
// --------------------------------------------------------------------------

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize against Yahoo and save the OAuth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireYahooCredentials(); err != nil {
				return err
			}

			oauthCfg := yahoo.OAuthConfig(cfg.YahooClientID, cfg.YahooClientSecret)

			fmt.Println("Visit this URL to authorize the application:")
			fmt.Println()
			fmt.Println("  " + yahoo.AuthCodeURL(oauthCfg))
			fmt.Println()
			fmt.Print("Enter the verification code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read verification code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no verification code entered")
			}

			tok, err := yahoo.Exchange(ctx, oauthCfg, code)
			if err != nil {
				return err
			}
			if err := yahoo.SaveToken(cfg.TokenFile, tok); err != nil {
				return err
			}

			logger.Info("token saved", "path", cfg.TokenFile)
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var (
		season int
		count  int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch NFL players from Yahoo and persist them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, cfg *config.Config, st *store.Store) error {
				if err := cfg.RequireYahooCredentials(); err != nil {
					return err
				}

				oauthCfg := yahoo.OAuthConfig(cfg.YahooClientID, cfg.YahooClientSecret)
				src, err := yahoo.FileTokenSource(ctx, oauthCfg, cfg.TokenFile)
				if err != nil {
					return err
				}
				client := yahoo.NewClient(yahoo.BaseURL, src, cfg.YahooRateLimit, logger)

				start := time.Now()
				result, err := ingest.Run(ctx, st, client, season, count, logger)
				if err != nil {
					return err
				}
				logger.Info("ingestion finished",
					"run_id", result.RunID,
					"duration", time.Since(start).Round(time.Second),
					"snapshot", result.SnapshotPath,
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("ingest error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (0 = current per Yahoo)")
	cmd.Flags().IntVar(&count, "count", 25, "Number of players to fetch")
	return cmd
}

// --------------------------------------------------------------------------
// export command
// --------------------------------------------------------------------------

func exportCmd() *cobra.Command {
	var (
		season int
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored players to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, cfg *config.Config, st *store.Store) error {
				path, err := st.ExportCSV(season, out)
				if err != nil {
					return err
				}
				logger.Info("export complete", "path", path, "season", season)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", config.CurrentSeason, "Season year")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: exports dir)")
	return cmd
}

// --------------------------------------------------------------------------
// players command
// --------------------------------------------------------------------------

func playersCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Print stored players for a season as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, cfg *config.Config, st *store.Store) error {
				players, err := st.GetPlayers(season)
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(players, "", "  ")
				if err != nil {
					return fmt.Errorf("encode players: %w", err)
				}
				fmt.Println(string(out))
				logger.Info("players listed", "season", season, "count", len(players))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", config.CurrentSeason, "Season year")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runStore handles config loading, store setup, and context cancellation.
func runStore(fn func(ctx context.Context, cfg *config.Config, st *store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	return fn(ctx, cfg, st)
}
