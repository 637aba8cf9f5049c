package postgres

import (
	"time"

	"github.com/riskibarqy/daily-coupon/internal/domain/user"
)

type userTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Token     string    `db:"token"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

type userInsertModel struct {
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Token     string    `db:"token"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:        m.PublicID,
		Name:      m.Name,
		Token:     m.Token,
		Points:    m.Points,
		Seq:       m.ID,
		CreatedAt: m.CreatedAt,
	}
}
