package analysis

import (
	"sort"

	"agroyield/domain/yield"
)

// RankBy orders entities by metric in the requested direction and assigns
// rank-based quartile tiers. Ties break by identifier ascending so the order
// is total and re-running on the same input is idempotent. Entities with an
// undefined metric are excluded from the order but reported under Unranked.
// limit truncates to the top N positions; limit <= 0 returns the full set.
// Tiers are assigned over the full ranked set before truncation.
func (e *Engine) RankBy(entities []yield.RankableEntity, direction yield.RankDirection, limit int) yield.Ranking {
	if direction != yield.Ascending {
		direction = yield.Descending
	}
	ranking := yield.Ranking{Direction: direction}

	ranked := make([]yield.RankableEntity, 0, len(entities))
	for _, ent := range entities {
		if ent.HasMetric {
			ranked = append(ranked, ent)
		} else {
			ranking.Unranked = append(ranking.Unranked, ent.ID)
		}
	}
	sort.Strings(ranking.Unranked)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Metric != b.Metric {
			if direction == yield.Ascending {
				return a.Metric < b.Metric
			}
			return a.Metric > b.Metric
		}
		return a.ID < b.ID
	})

	n := len(ranked)
	entries := make([]yield.RankedEntry, 0, n)
	for i, ent := range ranked {
		entries = append(entries, yield.RankedEntry{
			ID:     ent.ID,
			Metric: ent.Metric,
			Rank:   i + 1,
			Tier:   tierForPosition(i, n),
		})
	}

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	ranking.Entries = entries
	return ranking
}

var tiers = [4]yield.Tier{yield.TierTop, yield.TierUpper, yield.TierLower, yield.TierBottom}

// tierForPosition buckets a 0-based rank position into four roughly equal
// tiers by position. An entity sitting exactly on a quartile cut opens the
// lower tier.
func tierForPosition(pos, n int) yield.Tier {
	if n == 0 {
		return ""
	}
	idx := pos * 4 / n
	if idx > 3 {
		idx = 3
	}
	return tiers[idx]
}
