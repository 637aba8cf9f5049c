package user

import (
	"fmt"
	"strings"
	"time"
)

// User is a registered player with a lifetime points balance.
type User struct {
	ID        string
	Name      string
	Token     string
	Points    int64
	Seq       int64
	CreatedAt time.Time
}

func (u User) ValidateBasic() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user name is required")
	}
	if u.Token == "" {
		return fmt.Errorf("user token is required")
	}
	if u.Points < 0 {
		return fmt.Errorf("user points cannot be negative")
	}

	return nil
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID string
	Name   string
}
