package apifootball

import (
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// apiErrors is either an empty array or an object keyed by error name.
type apiErrors map[string]string

func (e *apiErrors) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		*e = nil
		return nil
	}
	out := map[string]string{}
	if err := sonic.Unmarshal(data, &out); err != nil {
		return err
	}
	*e = out
	return nil
}

func (e apiErrors) String() string {
	parts := make([]string, 0, len(e))
	for key, value := range e {
		parts = append(parts, key+": "+value)
	}
	return strings.Join(parts, "; ")
}

type fixturesEnvelope struct {
	Errors   apiErrors     `json:"errors"`
	Results  int           `json:"results"`
	Paging   paging        `json:"paging"`
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home team `json:"home"`
		Away team `json:"away"`
	} `json:"teams"`
	Goals scorePair `json:"goals"`
	Score struct {
		Fulltime scorePair `json:"fulltime"`
	} `json:"score"`
}

type team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type oddsEnvelope struct {
	Errors   apiErrors  `json:"errors"`
	Paging   paging     `json:"paging"`
	Response []oddsItem `json:"response"`
}

type oddsItem struct {
	Fixture struct {
		ID int64 `json:"id"`
	} `json:"fixture"`
	Bookmakers []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Bets []bet  `json:"bets"`
	} `json:"bookmakers"`
}

type bet struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Values []struct {
		Value string `json:"value"`
		Odd   string `json:"odd"`
	} `json:"values"`
}

func parseOdd(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}
