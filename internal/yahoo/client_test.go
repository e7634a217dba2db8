package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newTestClient points a Client at an httptest server with a static token
// and a rate limit high enough to not slow the tests down.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return NewClient(srv.URL, src, 60000, slog.Default())
}

func writeDoc(t *testing.T, w http.ResponseWriter, doc map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(doc))
}

func playerEntry(fragments ...any) map[string]any {
	return map[string]any{"player": []any{fragments}}
}

func TestCurrentNFLGame(t *testing.T) {
	var gotAuth, gotFormat string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFormat = r.URL.Query().Get("format")
		writeDoc(t, w, map[string]any{
			"fantasy_content": map[string]any{
				"games": map[string]any{
					"count": 1,
					"0": map[string]any{
						"game": []any{map[string]any{
							"game_key": "461",
							"game_id":  "461",
							"code":     "nfl",
							"season":   "2025",
						}},
					},
				},
			},
		})
	})

	game, err := c.CurrentNFLGame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "461", game.GameKey)
	assert.Equal(t, 2025, game.Season)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "json", gotFormat)
}

func TestCurrentNFLGameOffseason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(t, w, map[string]any{
			"fantasy_content": map[string]any{
				"games": map[string]any{"count": 0},
			},
		})
	})

	_, err := c.CurrentNFLGame(context.Background())
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Err.Error(), "no active NFL games")
}

func TestGamePlayersSinglePage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(t, w, map[string]any{
			"fantasy_content": map[string]any{
				"game": []any{
					map[string]any{"game_key": "461"},
					map[string]any{
						"players": map[string]any{
							"count": 2,
							"0": playerEntry(
								map[string]any{"player_id": "100"},
								map[string]any{"name": map[string]any{"full": "A. Back"}},
							),
							"1": playerEntry(
								map[string]any{"player_id": "200"},
								map[string]any{"name": map[string]any{"full": "Z. Receiver"}},
							),
						},
					},
				},
			},
		})
	})

	players, err := c.GamePlayers(context.Background(), "461", 2)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "100", players[0].PlayerID)
	assert.Equal(t, "A. Back", players[0].Name)
	assert.Equal(t, "200", players[1].PlayerID)
}

func TestGamePlayersPagesUntilCount(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		// A full page of minimal entries keyed "0".."24".
		collection := map[string]any{"count": playersPageSize}
		for i := 0; i < playersPageSize; i++ {
			collection[strconv.Itoa(i)] = playerEntry(
				map[string]any{"player_id": strconv.Itoa(1000 + i)})
		}

		writeDoc(t, w, map[string]any{
			"fantasy_content": map[string]any{
				"game": []any{
					map[string]any{"game_key": "461"},
					map[string]any{"players": collection},
				},
			},
		})
	})

	players, err := c.GamePlayers(context.Background(), "461", 30)
	require.NoError(t, err)
	// Two requests: a full first page, then the 5-player remainder page
	// (which the stub still fills with 25, but the client asked for 5).
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], ";start=0;count=25;")
	assert.Contains(t, paths[1], ";start=25;count=5;")
	assert.GreaterOrEqual(t, len(players), 30)
}

func TestGamePlayersEmptyPageStopsPaging(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Yahoo renders an empty collection as a list, not an object.
		writeDoc(t, w, map[string]any{
			"fantasy_content": map[string]any{
				"game": []any{
					map[string]any{"game_key": "461"},
					map[string]any{"players": []any{}},
				},
			},
		})
	})

	players, err := c.GamePlayers(context.Background(), "461", 100)
	require.NoError(t, err)
	assert.Empty(t, players)
	assert.Equal(t, 1, requests)
}

func TestPlayerStats(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeDoc(t, w, map[string]any{
			"fantasy_content": map[string]any{
				"player": []any{
					[]any{
						map[string]any{"player_id": "100"},
						map[string]any{"name": map[string]any{"full": "A. Back"}},
					},
					map[string]any{
						"player_stats": map[string]any{
							"coverage_type": "season",
							"stats": []any{
								map[string]any{"stat": map[string]any{"stat_id": "5", "value": "12"}},
								map[string]any{"stat": map[string]any{"stat_id": "7", "value": float64(3.5)}},
							},
						},
					},
				},
			},
		})
	})

	stats, err := c.PlayerStats(context.Background(), "461", "100")
	require.NoError(t, err)
	assert.Equal(t, "/player/461.p.100/stats", gotPath)
	assert.Equal(t, map[string]any{"5": "12", "7": float64(3.5)}, stats)
}

func TestGetStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token_expired", http.StatusUnauthorized)
	})

	_, err := c.CurrentNFLGame(context.Background())
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusUnauthorized, serr.StatusCode)
	assert.Contains(t, serr.Body, "token_expired")
}

func TestGetDecodeErrorKeepsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := c.CurrentNFLGame(context.Background())
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, string(derr.Body), "maintenance")

	var jsonErr *json.SyntaxError
	assert.True(t, errors.As(err, &jsonErr))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate([]byte("abc"), 5))
	assert.Equal(t, "abcde...", truncate([]byte("abcdefgh"), 5))
}
