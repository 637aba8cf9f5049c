package redis

import (
	"strconv"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

type catalogDocument struct {
	Day         string          `json:"day"`
	PublishedAt time.Time       `json:"published_at"`
	Matches     []matchDocument `json:"matches"`
}

type matchDocument struct {
	ID       int64   `json:"id"`
	League   string  `json:"league"`
	HomeTeam string  `json:"home"`
	AwayTeam string  `json:"away"`
	OddHome  float64 `json:"odd1"`
	OddDraw  float64 `json:"oddX"`
	OddAway  float64 `json:"odd2"`
}

func newCatalogDocument(c matchday.Catalog) catalogDocument {
	doc := catalogDocument{
		Day:         c.Day,
		PublishedAt: c.PublishedAt,
		Matches:     make([]matchDocument, 0, len(c.Matches)),
	}
	for _, m := range c.Matches {
		doc.Matches = append(doc.Matches, matchDocument{
			ID:       m.ID,
			League:   m.League,
			HomeTeam: m.HomeTeam,
			AwayTeam: m.AwayTeam,
			OddHome:  m.Odds.Home,
			OddDraw:  m.Odds.Draw,
			OddAway:  m.Odds.Away,
		})
	}
	return doc
}

func (d catalogDocument) toDomain() matchday.Catalog {
	out := matchday.Catalog{
		Day:         d.Day,
		PublishedAt: d.PublishedAt,
		Matches:     make([]matchday.Match, 0, len(d.Matches)),
	}
	for _, m := range d.Matches {
		out.Matches = append(out.Matches, matchday.Match{
			ID:       m.ID,
			League:   m.League,
			HomeTeam: m.HomeTeam,
			AwayTeam: m.AwayTeam,
			Odds:     matchday.Odds{Home: m.OddHome, Draw: m.OddDraw, Away: m.OddAway},
		})
	}
	return out
}

// resultDocument keys outcomes by the decimal match id; JSON object keys
// must be strings.
type resultDocument struct {
	Day        string            `json:"day"`
	ResolvedAt time.Time         `json:"resolved_at"`
	Outcomes   map[string]string `json:"outcomes"`
}

func newResultDocument(r matchday.ResultSet) resultDocument {
	doc := resultDocument{
		Day:        r.Day,
		ResolvedAt: r.ResolvedAt,
		Outcomes:   make(map[string]string, len(r.Outcomes)),
	}
	for id, outcome := range r.Outcomes {
		doc.Outcomes[strconv.FormatInt(id, 10)] = string(outcome)
	}
	return doc
}

func (d resultDocument) toDomain() matchday.ResultSet {
	out := matchday.ResultSet{
		Day:        d.Day,
		ResolvedAt: d.ResolvedAt,
		Outcomes:   make(map[int64]matchday.Outcome, len(d.Outcomes)),
	}
	for rawID, rawOutcome := range d.Outcomes {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		if outcome, ok := matchday.ParseOutcome(rawOutcome); ok {
			out.Outcomes[id] = outcome
		}
	}
	return out
}
