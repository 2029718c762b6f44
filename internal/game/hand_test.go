package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		hand     Hand
		expected int
	}{
		{"pair of tens", Hand{Ten, Ten}, 20},
		{"face cards", Hand{Jack, Queen}, 20},
		{"blackjack", Hand{Ace, King}, 21},
		{"soft 17", Hand{Ace, Six}, 17},
		{"double ace", Hand{Ace, Ace}, 12},
		{"bust rescue", Hand{Ace, Five, Eight}, 14},
		{"triple bust", Hand{Ten, Five, Eight}, 23},
		{"three aces", Hand{Ace, Ace, Ace}, 13},
		{"aces and face", Hand{Ace, Ace, King}, 12},
		{"empty hand", Hand{}, 0},
		{"low cards", Hand{Two, Three, Four}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.hand))
		})
	}
}

// Without an ace the score is the plain arithmetic sum of rank values.
func TestScoreNoAceIsPlainSum(t *testing.T) {
	for _, r1 := range Ranks {
		for _, r2 := range Ranks {
			if r1 == Ace || r2 == Ace {
				continue
			}
			hand := Hand{r1, r2, Seven}
			assert.Equal(t, r1.Value()+r2.Value()+7, Score(hand), "hand %v", hand)
		}
	}
}

// With exactly one ace and a raw sum over 21, the ace drops to 1.
func TestScoreSingleAceSoftens(t *testing.T) {
	hand := Hand{Ace, Nine, Five} // raw 25
	assert.Equal(t, 15, Score(hand))
}

func TestHandAdd(t *testing.T) {
	var h Hand
	h.Add(Queen)
	h.Add(Ace)
	assert.Equal(t, Hand{Queen, Ace}, h)
	assert.Equal(t, 21, Score(h))
}

func TestRankValues(t *testing.T) {
	assert.Equal(t, 11, Ace.Value())
	for _, r := range []Rank{Ten, Jack, Queen, King} {
		assert.Equal(t, 10, r.Value())
	}
	assert.Equal(t, 2, Two.Value())
	assert.Equal(t, 9, Nine.Value())
	assert.False(t, Rank("joker").Valid())
	for _, r := range Ranks {
		assert.True(t, r.Valid())
	}
}
