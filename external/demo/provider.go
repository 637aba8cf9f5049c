// Package demo generates match catalogs and results without an upstream
// provider. Output is a pure function of the day, so every process agrees on
// what a day looks like.
package demo

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

const defaultMatchesPerDay = 5

type fixtureTemplate struct {
	league string
	home   string
	away   string
}

var fixturePool = []fixtureTemplate{
	{league: "Süper Lig", home: "Galatasaray", away: "Fenerbahçe"},
	{league: "Süper Lig", home: "Beşiktaş", away: "Trabzonspor"},
	{league: "La Liga", home: "Real Madrid", away: "Barcelona"},
	{league: "Premier League", home: "Liverpool", away: "Manchester City"},
	{league: "Serie A", home: "Milan", away: "Inter"},
	{league: "Bundesliga", home: "Bayern Münih", away: "Dortmund"},
	{league: "Ligue 1", home: "PSG", away: "Lyon"},
	{league: "Eredivisie", home: "Ajax", away: "PSV"},
}

type oddRange struct{ min, max float64 }

var (
	homeOddRange = oddRange{min: 1.5, max: 2.6}
	drawOddRange = oddRange{min: 2.7, max: 3.8}
	awayOddRange = oddRange{min: 1.8, max: 3.1}
)

// Provider implements usecase.CatalogProvider and usecase.ResultProvider.
type Provider struct {
	matchesPerDay int
	salt          string
}

type Option func(*Provider)

// WithMatchesPerDay caps how many fixtures of the pool are published per day.
func WithMatchesPerDay(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.matchesPerDay = n
		}
	}
}

// WithSalt changes the generated days, e.g. per environment.
func WithSalt(salt string) Option {
	return func(p *Provider) { p.salt = salt }
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{matchesPerDay: defaultMatchesPerDay}
	for _, opt := range opts {
		opt(p)
	}
	if p.matchesPerDay > len(fixturePool) {
		p.matchesPerDay = len(fixturePool)
	}
	return p
}

func (p *Provider) FetchCatalog(ctx context.Context, day string) ([]matchday.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := matchday.ParseDay(day); err != nil {
		return nil, err
	}

	faker := gofakeit.New(p.seed(day, "catalog"))
	pool := append([]fixtureTemplate(nil), fixturePool...)
	faker.ShuffleAnySlice(pool)

	matches := make([]matchday.Match, 0, p.matchesPerDay)
	for i, tpl := range pool[:p.matchesPerDay] {
		matches = append(matches, matchday.Match{
			ID:       int64(i + 1),
			League:   tpl.league,
			HomeTeam: tpl.home,
			AwayTeam: tpl.away,
			Odds: matchday.Odds{
				Home: randomOdd(faker, homeOddRange),
				Draw: randomOdd(faker, drawOddRange),
				Away: randomOdd(faker, awayOddRange),
			},
		})
	}
	return matches, nil
}

// FetchResults resolves every match of the catalog uniformly at random.
func (p *Provider) FetchResults(ctx context.Context, catalog matchday.Catalog) (map[int64]matchday.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	faker := gofakeit.New(p.seed(catalog.Day, "results"))
	outcomes := []matchday.Outcome{matchday.OutcomeHome, matchday.OutcomeDraw, matchday.OutcomeAway}

	out := make(map[int64]matchday.Outcome, len(catalog.Matches))
	for _, m := range catalog.Matches {
		out[m.ID] = outcomes[faker.Number(0, len(outcomes)-1)]
	}
	return out, nil
}

func (p *Provider) seed(day, kind string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.salt + "|" + kind + "|" + day))
	return h.Sum64()
}

func randomOdd(faker *gofakeit.Faker, r oddRange) float64 {
	return math.Round(faker.Float64Range(r.min, r.max)*100) / 100
}
