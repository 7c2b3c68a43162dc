package game

import (
	"github.com/google/uuid"
)

// EventKind tags a resolution event for the presentation layer.
type EventKind string

const (
	// EventCardsRevealed carries every committed play for the turn, in
	// placement order, before any card is placed.
	EventCardsRevealed EventKind = "cards_revealed"
	// EventCardPlaced reports a single card appended to a row.
	EventCardPlaced EventKind = "card_placed"
	// EventRowOverflow reports a sixth-card placement: the row's cards were
	// collected as a penalty and the row reset to the new card.
	EventRowOverflow EventKind = "row_overflow"
	// EventRowChoiceRequired reports that resolution is stalled until the
	// named player picks a row for the pending card.
	EventRowChoiceRequired EventKind = "row_choice_required"
	// EventRowChosen reports a manual row pick: the chosen row was collected
	// as a penalty and reset to the pending card.
	EventRowChosen EventKind = "row_chosen"
	// EventNewRound reports a completed round and the re-deal that follows.
	EventNewRound EventKind = "new_round"
	// EventGameFinished reports the end of the game with its reason.
	EventGameFinished EventKind = "game_finished"
)

// Event is a discrete, ordered resolution fact published for external
// consumers (rendering, animation pacing). The engine's correctness never
// depends on how long a consumer takes to act on one.
type Event struct {
	Kind       EventKind    `json:"kind"`
	PlayerID   uuid.UUID    `json:"playerId,omitempty"`
	PlayerName string       `json:"playerName,omitempty"`
	Card       int          `json:"card,omitempty"`
	RowIndex   *int         `json:"rowIndex,omitempty"`
	Penalty    int          `json:"penalty,omitempty"`
	Collected  []int        `json:"collected,omitempty"`
	Plays      []Play       `json:"plays,omitempty"`
	Round      int          `json:"round,omitempty"`
	Reason     FinishReason `json:"reason,omitempty"`
}

func rowRef(i int) *int {
	return &i
}
