package errors

import "errors"

// Caller-misuse and infrastructure sentinels. Expected control states of a
// running game (stalled turn, round complete) are state fields on the
// aggregate, never errors.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameNotJoinable   = errors.New("game is not accepting this action in its current status")
	ErrGameNotPlaying    = errors.New("game is not in playing status")
	ErrGameFull          = errors.New("game has no free seats")
	ErrNotEnoughPlayers  = errors.New("not enough active players to start")
	ErrPlayersNotReady   = errors.New("all active players must be ready")
	ErrNotEnoughCards    = errors.New("not enough cards in the deck for all active players")
	ErrInvalidPlayerName = errors.New("player name must not be empty")
	ErrPlayerNotFound    = errors.New("player is not part of this game")
	ErrNotActivePlayer   = errors.New("spectators cannot perform this action")
	ErrAlreadyPlayed     = errors.New("player already committed a card this turn")
	ErrCardNotInHand     = errors.New("card is not in the player's hand")
	ErrRowChoicePending  = errors.New("player owes a row choice")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidRow        = errors.New("row index out of range")
	ErrVersionConflict   = errors.New("game state changed concurrently, retry")
)
