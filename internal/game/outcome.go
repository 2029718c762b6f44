package game

type Outcome string

const (
	OutcomePlayerBust Outcome = "playerBust" // Player went over 21, loses regardless of dealer
	OutcomeDealerBust Outcome = "dealerBust" // Dealer went over 21, player wins
	OutcomePlayerWins Outcome = "playerWins"
	OutcomeDealerWins Outcome = "dealerWins"
	OutcomePush       Outcome = "push"    // Exact tie below 21, stake is returned
	OutcomeAborted    Outcome = "aborted" // Round cancelled before the seat resolved
)

// Resolve decides the outcome of one seat against the final dealer hand.
// Rules apply in order: player bust, dealer bust, player higher, dealer
// higher or dealer holding exactly 21. An exact tie below 21 falls through
// to a push. Note the dealer-21 clause: a 21/21 tie is a dealer win, not a
// push.
func Resolve(playerScore, dealerScore int) Outcome {
	switch {
	case playerScore > 21:
		return OutcomePlayerBust
	case dealerScore > 21:
		return OutcomeDealerBust
	case playerScore > dealerScore:
		return OutcomePlayerWins
	case playerScore < dealerScore || dealerScore == 21:
		return OutcomeDealerWins
	default:
		return OutcomePush
	}
}
