package postgres

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

type catalogTableModel struct {
	Day         string    `db:"day"`
	Matches     []byte    `db:"matches"`
	PublishedAt time.Time `db:"published_at"`
}

type resultTableModel struct {
	Day        string    `db:"day"`
	Outcomes   []byte    `db:"outcomes"`
	ResolvedAt time.Time `db:"resolved_at"`
}

type matchDocument struct {
	ID       int64   `json:"id"`
	League   string  `json:"league"`
	HomeTeam string  `json:"home_team"`
	AwayTeam string  `json:"away_team"`
	OddHome  float64 `json:"odd_1"`
	OddDraw  float64 `json:"odd_x"`
	OddAway  float64 `json:"odd_2"`
}

func newCatalogTableModel(c matchday.Catalog) (catalogTableModel, error) {
	docs := make([]matchDocument, 0, len(c.Matches))
	for _, m := range c.Matches {
		docs = append(docs, matchDocument{
			ID:       m.ID,
			League:   m.League,
			HomeTeam: m.HomeTeam,
			AwayTeam: m.AwayTeam,
			OddHome:  m.Odds.Home,
			OddDraw:  m.Odds.Draw,
			OddAway:  m.Odds.Away,
		})
	}
	raw, err := sonic.Marshal(docs)
	if err != nil {
		return catalogTableModel{}, fmt.Errorf("encode catalog matches: %w", err)
	}
	return catalogTableModel{Day: c.Day, Matches: raw, PublishedAt: c.PublishedAt}, nil
}

func (m catalogTableModel) toDomain() (matchday.Catalog, error) {
	var docs []matchDocument
	if err := sonic.Unmarshal(m.Matches, &docs); err != nil {
		return matchday.Catalog{}, fmt.Errorf("decode catalog matches for %s: %w", m.Day, err)
	}
	matches := make([]matchday.Match, 0, len(docs))
	for _, d := range docs {
		matches = append(matches, matchday.Match{
			ID:       d.ID,
			League:   d.League,
			HomeTeam: d.HomeTeam,
			AwayTeam: d.AwayTeam,
			Odds:     matchday.Odds{Home: d.OddHome, Draw: d.OddDraw, Away: d.OddAway},
		})
	}
	return matchday.Catalog{Day: m.Day, Matches: matches, PublishedAt: m.PublishedAt}, nil
}

func newResultTableModel(r matchday.ResultSet) (resultTableModel, error) {
	doc := make(map[string]string, len(r.Outcomes))
	for id, outcome := range r.Outcomes {
		doc[strconv.FormatInt(id, 10)] = string(outcome)
	}
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return resultTableModel{}, fmt.Errorf("encode outcomes: %w", err)
	}
	return resultTableModel{Day: r.Day, Outcomes: raw, ResolvedAt: r.ResolvedAt}, nil
}

func (m resultTableModel) toDomain() (matchday.ResultSet, error) {
	var doc map[string]string
	if err := sonic.Unmarshal(m.Outcomes, &doc); err != nil {
		return matchday.ResultSet{}, fmt.Errorf("decode outcomes for %s: %w", m.Day, err)
	}
	outcomes := make(map[int64]matchday.Outcome, len(doc))
	for key, value := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return matchday.ResultSet{}, fmt.Errorf("decode outcomes for %s: bad match id %q", m.Day, key)
		}
		outcomes[id] = matchday.Outcome(value)
	}
	return matchday.ResultSet{Day: m.Day, Outcomes: outcomes, ResolvedAt: m.ResolvedAt}, nil
}
