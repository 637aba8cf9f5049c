package matchday

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar day key format used everywhere a day is stored.
const DayLayout = "2006-01-02"

// Outcome is one of the three mutually exclusive results of a match.
type Outcome string

const (
	OutcomeHome Outcome = "1"
	OutcomeDraw Outcome = "X"
	OutcomeAway Outcome = "2"
)

var AllOutcomes = map[Outcome]struct{}{
	OutcomeHome: {},
	OutcomeDraw: {},
	OutcomeAway: {},
}

// ParseOutcome maps a raw prediction label to an Outcome. Labels must match
// exactly; anything else is unmapped.
func ParseOutcome(raw string) (Outcome, bool) {
	value := Outcome(raw)
	if _, ok := AllOutcomes[value]; !ok {
		return "", false
	}
	return value, true
}

// Odds stores the decimal odd for each outcome of one match.
type Odds struct {
	Home float64
	Draw float64
	Away float64
}

// For returns the odd for outcome, or false when the outcome has no
// positive odd on this match.
func (o Odds) For(outcome Outcome) (float64, bool) {
	var odd float64
	switch outcome {
	case OutcomeHome:
		odd = o.Home
	case OutcomeDraw:
		odd = o.Draw
	case OutcomeAway:
		odd = o.Away
	default:
		return 0, false
	}
	if odd <= 0 {
		return 0, false
	}
	return odd, true
}

// Match is one published fixture of a day with its fixed odds.
type Match struct {
	ID       int64
	League   string
	HomeTeam string
	AwayTeam string
	Odds     Odds
}

// Catalog is the immutable list of matches published for one day.
type Catalog struct {
	Day         string
	Matches     []Match
	PublishedAt time.Time
}

func (c Catalog) Validate() error {
	if _, err := ParseDay(c.Day); err != nil {
		return err
	}

	seen := make(map[int64]struct{}, len(c.Matches))
	for _, m := range c.Matches {
		if m.ID <= 0 {
			return fmt.Errorf("match id must be greater than zero")
		}
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("duplicate match id %d on day %s", m.ID, c.Day)
		}
		seen[m.ID] = struct{}{}
		if m.Odds.Home <= 0 || m.Odds.Draw <= 0 || m.Odds.Away <= 0 {
			return fmt.Errorf("match %d has non-positive odds", m.ID)
		}
	}

	return nil
}

// MatchByID returns the match with id, if published.
func (c Catalog) MatchByID(id int64) (Match, bool) {
	for _, m := range c.Matches {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

// ResultSet maps match ids to the realized outcome for one day. Matches
// without an entry are unresolved.
type ResultSet struct {
	Day        string
	Outcomes   map[int64]Outcome
	ResolvedAt time.Time
}

func (r ResultSet) OutcomeOf(matchID int64) (Outcome, bool) {
	outcome, ok := r.Outcomes[matchID]
	return outcome, ok
}

// DayKey formats t as a day key in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

func ParseDay(day string) (time.Time, error) {
	parsed, err := time.Parse(DayLayout, strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return parsed, nil
}

func CloneCatalog(c Catalog) Catalog {
	copied := c
	copied.Matches = append([]Match(nil), c.Matches...)
	return copied
}

func CloneResultSet(r ResultSet) ResultSet {
	copied := r
	copied.Outcomes = make(map[int64]Outcome, len(r.Outcomes))
	for id, outcome := range r.Outcomes {
		copied.Outcomes[id] = outcome
	}
	return copied
}
