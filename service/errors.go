package service

import (
	"errors"
)

// Domain errors reported to the transport layer. Callers distinguish them
// with errors.Is; anything else is a storage or programming failure.
var (
	// ErrAlreadyBet means the player already has a bet in this round
	ErrAlreadyBet = errors.New("already bet this round")

	// ErrInsufficientFunds means the stake exceeds the player's balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrRoundNotOpen means the bet arrived outside the betting window
	ErrRoundNotOpen = errors.New("round is not open for betting")

	// ErrInvalidChoice means the choice code is not D, T or I
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrInvalidAmount means the amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUserNotFound means no player record exists for the id
	ErrUserNotFound = errors.New("user not found")
)
