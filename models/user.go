package models

import (
	"time"
)

// User represents a player with a point balance
type User struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasSufficientBalance checks if the user has sufficient balance for an amount
func (u *User) HasSufficientBalance(amount int64) bool {
	return u.Balance >= amount
}
