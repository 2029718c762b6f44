package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		playerScore int
		dealerScore int
		expected    Outcome
	}{
		{"player bust", 22, 17, OutcomePlayerBust},
		{"player bust beats dealer bust", 22, 22, OutcomePlayerBust},
		{"dealer bust", 18, 22, OutcomeDealerBust},
		{"player higher", 20, 18, OutcomePlayerWins},
		{"dealer higher", 17, 19, OutcomeDealerWins},
		{"dealer 21 beats lower hand", 19, 21, OutcomeDealerWins},
		{"tie at 21 goes to the dealer", 21, 21, OutcomeDealerWins},
		{"tie below 21 pushes", 18, 18, OutcomePush},
		{"tie at 17 pushes", 17, 17, OutcomePush},
		{"player 21 beats dealer 20", 21, 20, OutcomePlayerWins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.playerScore, tt.dealerScore))
		})
	}
}
