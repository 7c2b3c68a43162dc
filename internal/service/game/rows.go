package game

// RowTarget is a row that can legally accept a card, with the distance
// between the card and the row's current last card.
type RowTarget struct {
	RowIndex int
	LastCard int
	Gap      int
}

// LegalTargets returns, in row order, every row whose last card is strictly
// below the played card. An empty result is not an error: it is the signal
// that the player must pick a row by hand.
func LegalTargets(card int, rows []Row) []RowTarget {
	targets := make([]RowTarget, 0, len(rows))
	for i, row := range rows {
		last := row.Last()
		if gap := card - last; gap > 0 {
			targets = append(targets, RowTarget{RowIndex: i, LastCard: last, Gap: gap})
		}
	}
	return targets
}

// SelectTarget picks the target with the smallest gap (the closest-below
// rule). Ties cannot occur with distinct card values, but if they did the
// first row in order wins.
func SelectTarget(targets []RowTarget) (RowTarget, bool) {
	if len(targets) == 0 {
		return RowTarget{}, false
	}
	best := targets[0]
	for _, t := range targets[1:] {
		if t.Gap < best.Gap {
			best = t
		}
	}
	return best, true
}
