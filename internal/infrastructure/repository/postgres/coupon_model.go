package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/daily-coupon/internal/domain/coupon"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

type couponTableModel struct {
	ID            int64        `db:"id"`
	PublicID      string       `db:"public_id"`
	UserID        string       `db:"user_public_id"`
	Day           string       `db:"day"`
	Picks         []byte       `db:"picks"`
	State         string       `db:"state"`
	AwardedPoints int64        `db:"awarded_points"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
	LockedAt      sql.NullTime `db:"locked_at"`
	EvaluatedAt   sql.NullTime `db:"evaluated_at"`
}

type couponInsertModel struct {
	PublicID      string    `db:"public_id"`
	UserID        string    `db:"user_public_id"`
	Day           string    `db:"day"`
	Picks         []byte    `db:"picks"`
	State         string    `db:"state"`
	AwardedPoints int64     `db:"awarded_points"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// pickDocument is the jsonb shape of one stored pick.
type pickDocument struct {
	MatchID int64   `json:"match_id"`
	Outcome string  `json:"outcome"`
	Odd     float64 `json:"odd"`
}

func encodePicks(picks []coupon.Pick) ([]byte, error) {
	docs := make([]pickDocument, 0, len(picks))
	for _, p := range picks {
		docs = append(docs, pickDocument{MatchID: p.MatchID, Outcome: string(p.Outcome), Odd: p.Odd})
	}
	raw, err := sonic.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode picks: %w", err)
	}
	return raw, nil
}

func decodePicks(raw []byte) ([]coupon.Pick, error) {
	var docs []pickDocument
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("decode picks: %w", err)
		}
	}
	picks := make([]coupon.Pick, 0, len(docs))
	for _, d := range docs {
		picks = append(picks, coupon.Pick{MatchID: d.MatchID, Outcome: matchday.Outcome(d.Outcome), Odd: d.Odd})
	}
	return picks, nil
}

func (m couponTableModel) toDomain() (coupon.Coupon, error) {
	picks, err := decodePicks(m.Picks)
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("coupon %s: %w", m.PublicID, err)
	}
	return coupon.Coupon{
		ID:            m.PublicID,
		UserID:        m.UserID,
		Day:           m.Day,
		Picks:         picks,
		State:         coupon.State(m.State),
		AwardedPoints: m.AwardedPoints,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		LockedAt:      nullTime(m.LockedAt),
		EvaluatedAt:   nullTime(m.EvaluatedAt),
	}, nil
}
