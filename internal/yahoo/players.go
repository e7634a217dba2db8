package yahoo

import (
	"context"
	"fmt"
	"strconv"
)

// Yahoo caps player collections at 25 entries per page.
const playersPageSize = 25

// Game identifies one fantasy game (sport + season) on Yahoo.
type Game struct {
	GameKey string
	Season  int
}

// CurrentNFLGame resolves the most recent available NFL game key and season.
func (c *Client) CurrentNFLGame(ctx context.Context) (*Game, error) {
	const path = "/games;is_available=1;game_codes=nfl"

	doc, body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	games, err := dig(doc, "fantasy_content", "games")
	if err != nil {
		return nil, &DecodeError{Path: path, Body: body, Err: err}
	}
	count := collectionCount(games)
	if count == 0 {
		return nil, &DecodeError{Path: path, Body: body,
			Err: fmt.Errorf("no active NFL games found (offseason?)")}
	}

	meta, err := firstEntry(games, "game")
	if err != nil {
		return nil, &DecodeError{Path: path, Body: body, Err: err}
	}

	gameKey := asString(meta["game_key"])
	season, ok := NumericValue(meta["season"])
	if gameKey == "" || !ok {
		return nil, &DecodeError{Path: path, Body: body,
			Err: fmt.Errorf("game entry missing game_key or season")}
	}

	return &Game{GameKey: gameKey, Season: int(season)}, nil
}

// GamePlayers pages through the game's player collection, flattening each
// entry. Records without a player_id are returned as-is; the caller decides
// whether to drop them. Players are sorted by average rank, filtered to
// active offense players.
func (c *Client) GamePlayers(ctx context.Context, gameKey string, count int) ([]Player, error) {
	var players []Player

	for start := 0; start < count; start += playersPageSize {
		pageSize := playersPageSize
		if remaining := count - start; remaining < pageSize {
			pageSize = remaining
		}

		page, err := c.playersPage(ctx, gameKey, start, pageSize)
		if err != nil {
			return nil, err
		}
		players = append(players, page...)

		if len(page) < pageSize {
			break
		}
	}

	return players, nil
}

// playersPage fetches one page of the player collection.
func (c *Client) playersPage(ctx context.Context, gameKey string, start, count int) ([]Player, error) {
	path := fmt.Sprintf("/game/%s/players;start=%d;count=%d;sort=AR;status=A;position=O",
		gameKey, start, count)

	doc, body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	game, err := dig(doc, "fantasy_content", "game")
	if err != nil {
		return nil, &DecodeError{Path: path, Body: body, Err: err}
	}
	// fantasy_content.game is [gameMeta, {players: collection}].
	gameList, ok := game.([]any)
	if !ok || len(gameList) < 2 {
		return nil, &DecodeError{Path: path, Body: body,
			Err: fmt.Errorf("fantasy_content.game is not a two-element list")}
	}
	sub, ok := gameList[1].(map[string]any)
	if !ok {
		return nil, &DecodeError{Path: path, Body: body,
			Err: fmt.Errorf("fantasy_content.game[1] is not an object")}
	}
	collection, ok := sub["players"].(map[string]any)
	if !ok {
		// An empty page renders as an empty list instead of an object.
		return nil, nil
	}

	total := collectionCount(collection)
	players := make([]Player, 0, total)
	for idx := 0; idx < total; idx++ {
		entry, ok := collection[strconv.Itoa(idx)].(map[string]any)
		if !ok {
			continue
		}
		playerList, ok := entry["player"].([]any)
		if !ok || len(playerList) == 0 {
			continue
		}
		fragments, ok := playerList[0].([]any)
		if !ok {
			continue
		}
		players = append(players, FlattenPlayer(fragments))
	}

	c.logger.Debug("fetched player page", "game_key", gameKey, "start", start, "count", len(players))
	return players, nil
}

// PlayerStats fetches season stats for a single player. Used to backfill
// players whose collection entry came back without a stats fragment.
func (c *Client) PlayerStats(ctx context.Context, gameKey, playerID string) (map[string]any, error) {
	path := fmt.Sprintf("/player/%s.p.%s/stats", gameKey, playerID)

	doc, body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	raw, err := dig(doc, "fantasy_content", "player")
	if err != nil {
		return nil, &DecodeError{Path: path, Body: body, Err: err}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Path: path, Body: body,
			Err: fmt.Errorf("fantasy_content.player is not a list")}
	}

	// The player resource is [fragments..., {player_stats: {stats: [...]}}].
	p := Player{Stats: make(map[string]any)}
	for _, elem := range list {
		switch v := elem.(type) {
		case []any:
			flat := FlattenPlayer(v)
			for id, val := range flat.Stats {
				p.Stats[id] = val
			}
		case map[string]any:
			if ps, ok := v["player_stats"].(map[string]any); ok {
				flattenStats(&p, ps["stats"])
			}
		}
	}
	return p.Stats, nil
}

// --------------------------------------------------------------------------
// Tree-walking helpers
// --------------------------------------------------------------------------

// dig descends through nested objects by key.
func dig(doc map[string]any, keys ...string) (any, error) {
	var cur any = doc
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object at %q", key)
		}
		cur, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("missing key %q", key)
		}
	}
	return cur, nil
}

// collectionCount reads the "count" field Yahoo places next to the
// numeric-string entry keys of a collection object.
func collectionCount(v any) int {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	n, ok := NumericValue(m["count"])
	if !ok {
		return 0
	}
	return int(n)
}

// firstEntry returns the first element of collection["0"][kind], the
// metadata object Yahoo places at the head of every entity list.
func firstEntry(collection any, kind string) (map[string]any, error) {
	m, ok := collection.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("collection is not an object")
	}
	entry, ok := m["0"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("collection has no first entry")
	}
	list, ok := entry[kind].([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("entry %q list is empty", kind)
	}
	meta, ok := list[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("entry %q head is not an object", kind)
	}
	return meta, nil
}
