package game

import "math/rand"

// PenaltyValue returns the number of penalty heads a card is worth when
// collected: 55 is worth 7, multiples of 11 are worth 5, multiples of 10
// are worth 3, other multiples of 5 are worth 2, everything else 1.
func PenaltyValue(card int) int {
	switch {
	case card == 55:
		return 7
	case card%11 == 0:
		return 5
	case card%10 == 0:
		return 3
	case card%5 == 0:
		return 2
	default:
		return 1
	}
}

// RowPenalty sums the penalty values of all cards in the row.
func RowPenalty(cards []int) int {
	total := 0
	for _, c := range cards {
		total += PenaltyValue(c)
	}
	return total
}

// FreshShuffledDeck returns a uniform random permutation of [1..size].
func FreshShuffledDeck(size int) []int {
	deck := make([]int, size)
	for i := range deck {
		deck[i] = i + 1
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
