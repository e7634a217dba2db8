package yahoo

import "strconv"

// Player is the normalized per-player record assembled from Yahoo's
// fragment-style payloads. Field names mirror the wire keys so a marshaled
// PlayerSet reproduces the shape the store archives.
type Player struct {
	PlayerID       string         `json:"player_id"`
	Name           string         `json:"name"`
	Team           string         `json:"editorial_team_full_name"`
	Position       string         `json:"display_position"`
	Status         string         `json:"status,omitempty"`
	UniformNumber  string         `json:"uniform_number"`
	PercentOwned   *float64       `json:"percent_owned,omitempty"`
	OwnershipTrend *int           `json:"ownership_trend,omitempty"`
	ByeWeek        *int           `json:"bye_week,omitempty"`
	IsUndroppable  *bool          `json:"is_undroppable,omitempty"`
	Stats          map[string]any `json:"stats,omitempty"`
	DraftAnalysis  *DraftAnalysis `json:"draft_analysis,omitempty"`
	Ranks          map[string]int `json:"player_ranks,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// DraftAnalysis carries Yahoo's season draft aggregates for one player.
type DraftAnalysis struct {
	AveragePick    float64 `json:"average_pick"`
	PercentDrafted float64 `json:"percent_drafted"`
	AverageRound   float64 `json:"average_round"`
	AverageCost    float64 `json:"average_cost"`
}

// Envelope wraps a normalized player the way the ingestion mapping stores it:
// a single-element "player" list keyed by player_id.
type Envelope struct {
	Player []Player `json:"player"`
}

// PlayerSet maps player_id to its envelope. One PlayerSet is the unit handed
// to the store per ingestion run.
type PlayerSet map[string]Envelope

// FlattenPlayer collapses a sequence of loosely-typed fragments into a
// normalized Player. Each fragment is an object carrying at most one
// recognized key; unrecognized fragments are skipped. When a key repeats,
// the last occurrence wins.
//
// The returned record may lack a PlayerID; callers must drop such records
// before handing the set to the store.
func FlattenPlayer(fragments []any) Player {
	p := Player{Stats: make(map[string]any)}

	for _, raw := range fragments {
		frag, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if v, ok := frag["player_id"]; ok {
			p.PlayerID = asString(v)
		} else if v, ok := frag["name"]; ok {
			if name, ok := v.(map[string]any); ok {
				p.Name = asString(name["full"])
			}
		} else if v, ok := frag["editorial_team_full_name"]; ok {
			p.Team = asString(v)
		} else if v, ok := frag["display_position"]; ok {
			p.Position = asString(v)
		} else if v, ok := frag["status"]; ok {
			p.Status = asString(v)
		} else if v, ok := frag["uniform_number"]; ok {
			p.UniformNumber = asString(v)
		} else if v, ok := frag["bye_weeks"]; ok {
			if bw, ok := v.(map[string]any); ok {
				if n, ok := NumericValue(bw["week"]); ok {
					week := int(n)
					p.ByeWeek = &week
				}
			}
		} else if v, ok := frag["is_undroppable"]; ok {
			if n, ok := NumericValue(v); ok {
				undroppable := n != 0
				p.IsUndroppable = &undroppable
			}
		} else if v, ok := frag["percent_owned"]; ok {
			flattenOwnership(&p, v)
		} else if v, ok := frag["stats"]; ok {
			flattenStats(&p, v)
		} else if v, ok := frag["draft_analysis"]; ok {
			flattenDraftAnalysis(&p, v)
		} else if v, ok := frag["player_ranks"]; ok {
			flattenRanks(&p, v)
		}
	}

	return p
}

// flattenStats builds the stat_id -> value map from Yahoo's
// [{stat: {stat_id, value}}] wrapper list.
func flattenStats(p *Player, v any) {
	list, ok := v.([]any)
	if !ok {
		return
	}
	for _, item := range list {
		wrapper, ok := item.(map[string]any)
		if !ok {
			continue
		}
		stat, ok := wrapper["stat"].(map[string]any)
		if !ok {
			continue
		}
		id := asString(stat["stat_id"])
		if id == "" {
			continue
		}
		p.Stats[id] = stat["value"]
	}
}

// flattenOwnership reads value/delta out of the percent_owned fragment,
// which Yahoo ships as a list of partial objects.
func flattenOwnership(p *Player, v any) {
	parts, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			parts = []any{m}
		} else {
			return
		}
	}
	for _, part := range parts {
		m, ok := part.(map[string]any)
		if !ok {
			continue
		}
		if raw, ok := m["value"]; ok {
			if n, ok := NumericValue(raw); ok {
				p.PercentOwned = &n
			}
		}
		if raw, ok := m["delta"]; ok {
			if n, ok := NumericValue(raw); ok {
				trend := int(n)
				p.OwnershipTrend = &trend
			}
		}
	}
}

// flattenDraftAnalysis accepts either a bare object or Yahoo's
// single-element list form.
func flattenDraftAnalysis(p *Player, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		list, isList := v.([]any)
		if !isList || len(list) == 0 {
			return
		}
		m, ok = list[0].(map[string]any)
		if !ok {
			return
		}
	}

	da := DraftAnalysis{}
	if n, ok := NumericValue(m["average_pick"]); ok {
		da.AveragePick = n
	}
	if n, ok := NumericValue(m["percent_drafted"]); ok {
		da.PercentDrafted = n
	}
	if n, ok := NumericValue(m["average_round"]); ok {
		da.AverageRound = n
	}
	if n, ok := NumericValue(m["average_cost"]); ok {
		da.AverageCost = n
	}
	p.DraftAnalysis = &da
}

// flattenRanks builds rank_type -> rank_value from the
// [{player_rank: {rank_type, rank_value}}] wrapper list.
func flattenRanks(p *Player, v any) {
	list, ok := v.([]any)
	if !ok {
		return
	}
	for _, item := range list {
		wrapper, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rank, ok := wrapper["player_rank"].(map[string]any)
		if !ok {
			continue
		}
		rankType := asString(rank["rank_type"])
		if rankType == "" {
			continue
		}
		n, ok := NumericValue(rank["rank_value"])
		if !ok {
			continue
		}
		if p.Ranks == nil {
			p.Ranks = make(map[string]int)
		}
		p.Ranks[rankType] = int(n)
	}
}

// NumericValue normalizes a loosely-typed value to a scalar float64.
//
// Yahoo returns most numbers as strings ("12", "99.7"); decoded JSON yields
// float64 for bare numbers. Nested objects are resolved through their
// aggregate keys. Returns ok=false when no scalar can be extracted.
func NumericValue(val any) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		return 0, false
	case map[string]any:
		for _, key := range []string{"total", "all", "count", "average", "value", "week"} {
			if inner, exists := v[key]; exists && inner != nil {
				return NumericValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// asString renders scalar wire values (strings or JSON numbers) as strings.
// Integral floats print without a decimal point so stat IDs like 5 come out
// as "5".
func asString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
