package game

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type FinishReason string

const (
	FinishScoreLimit      FinishReason = "score_limit"
	FinishRoundsCompleted FinishReason = "rounds_completed"
)

// Row is an ordered pile of cards, strictly increasing by construction.
// A row never exceeds the configured capacity; the overflowing card resets
// it instead of growing it.
type Row []int

// Last returns the topmost (highest) card of the row.
func (r Row) Last() int {
	return r[len(r)-1]
}

type Player struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Ready       bool      `json:"ready"`
	Hand        []int     `json:"hand"`
	PlayedCard  *int      `json:"playedCard"`
	IsSpectator bool      `json:"isSpectator"`
}

// HasPlayed reports whether the player has committed a card this turn.
func (p *Player) HasPlayed() bool {
	return p.PlayedCard != nil
}

// Game is the root aggregate. It is persisted as a whole snapshot; Version
// is bumped by the store on every successful write and checked on save so
// concurrent writers cannot clobber each other.
type Game struct {
	Code    string    `json:"code"`
	Status  Status    `json:"status"`
	HostID  uuid.UUID `json:"hostId"`
	Players []*Player `json:"players"`
	Rows    []Row     `json:"rows"`

	Round       int `json:"round"`
	CurrentTurn int `json:"currentTurn"`
	MaxRounds   int `json:"maxRounds"`

	TurnResolved        bool         `json:"turnResolved"`
	WaitingForRowChoice *uuid.UUID   `json:"waitingForRowChoice"`
	PendingCard         *int         `json:"pendingCard"`
	FinishReason        FinishReason `json:"finishReason,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerByID returns the player with the given id, or nil.
func (g *Game) PlayerByID(id uuid.UUID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the non-spectator participants.
func (g *Game) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.IsSpectator {
			active = append(active, p)
		}
	}
	return active
}

// Play is one player's committed card for the current turn.
type Play struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"playerName"`
	Card     int       `json:"card"`
}

// Store is the persistent shared game store the engine runs against.
// Save performs a whole-snapshot replace guarded by the aggregate's Version:
// a mismatch with the stored version fails with ErrVersionConflict and must
// be treated as a retryable conflict, never as success. Publish is
// fire-and-forget from the engine's perspective; delivery failures are the
// transport's problem, not the resolution's.
type Store interface {
	Load(ctx context.Context, code string) (*Game, error)
	Save(ctx context.Context, g *Game) error
	Publish(ctx context.Context, code string, ev Event) error
}

// HistoryEntry is one line of the per-game action log.
type HistoryEntry struct {
	GameCode   string
	Round      int
	Turn       int
	PlayerID   uuid.UUID
	PlayerName string
	Action     string
	Card       int
	RowIndex   int
	Penalty    int
}

// FinalScore is a player's line in an archived game result.
type FinalScore struct {
	PlayerID  uuid.UUID `json:"playerId"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Spectator bool      `json:"spectator"`
}

// History receives turn-by-turn actions and final results for durable
// archival. Implementations must tolerate being called mid-resolution;
// archival failures are logged by the service and never fail a turn.
type History interface {
	RecordAction(ctx context.Context, e HistoryEntry) error
	SaveResult(ctx context.Context, code string, reason FinishReason, rounds int, scores []FinalScore) error
}
