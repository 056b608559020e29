package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Ranks in comparison order, ace low through king high
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Suits are cosmetic only and do not affect comparison
var Suits = []string{"♠", "♥", "♦", "♣"}

// Card is a drawn playing card
type Card struct {
	Rank string
	Suit string
}

// Value returns the comparison value of the card, A=1 through K=13
func (c Card) Value() int {
	for i, r := range Ranks {
		if r == c.Rank {
			return i + 1
		}
	}
	return 0
}

// String renders the card for display, e.g. "Q♥"
func (c Card) String() string {
	return c.Rank + c.Suit
}

// DrawCard draws a card uniformly at random from the 13-rank deck.
// Outcomes gate payouts, so the draw uses crypto/rand rather than a
// seeded pseudorandom generator.
func DrawCard() (Card, error) {
	rankIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(Ranks))))
	if err != nil {
		return Card{}, fmt.Errorf("failed to draw rank: %w", err)
	}
	suitIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(Suits))))
	if err != nil {
		return Card{}, fmt.Errorf("failed to draw suit: %w", err)
	}
	return Card{
		Rank: Ranks[rankIdx.Int64()],
		Suit: Suits[suitIdx.Int64()],
	}, nil
}

// DecideWinner compares the two drawn cards by rank. The strictly higher
// rank wins; equal ranks are a tie.
func DecideWinner(dragon, tiger Card) Choice {
	switch {
	case dragon.Value() > tiger.Value():
		return ChoiceDragon
	case tiger.Value() > dragon.Value():
		return ChoiceTiger
	default:
		return ChoiceTie
	}
}
