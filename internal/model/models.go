package model

import (
	"time"

	"gorm.io/datatypes"
)

// GameArchive is the durable record of a finished game. The live aggregate
// lives in the game store; only terminal results land here.
type GameArchive struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Code         string `gorm:"index;not null"`
	FinishReason string
	RoundsPlayed int
	ScoresJSON   datatypes.JSON `gorm:"type:jsonb"`
	FinishedAt   time.Time
	CreatedAt    time.Time
}

// TurnLog is one action of a game's history: a committed card, a placement,
// a sixth-card overflow, or a manual row choice.
type TurnLog struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	GameCode   string `gorm:"index;not null"`
	Round      int
	Turn       int
	PlayerID   string
	PlayerName string
	Action     string // played/placed/row_overflow/chose_row
	Card       int
	RowIndex   int // -1 when no row is involved
	Penalty    int
	CreatedAt  time.Time
}
