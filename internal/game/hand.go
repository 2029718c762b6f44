package game

// Hand is the ordered sequence of ranks dealt to one participant during a
// round. Cards are only ever appended; a hand is cleared when the round ends.
type Hand []Rank

// Add appends a freshly drawn rank to the hand.
func (h *Hand) Add(r Rank) {
	*h = append(*h, r)
}

// Score computes the blackjack total of the hand. Aces are counted as 11
// first, then converted to 1 (subtract 10) one at a time while the total
// exceeds 21, so hands with multiple aces are softened correctly.
func Score(h Hand) int {
	score := 0
	aces := 0

	for _, r := range h {
		if r == Ace {
			aces++
		}
		score += r.Value()
	}

	for aces > 0 && score > 21 {
		score -= 10
		aces--
	}

	return score
}
