package game_test

import (
	"context"
	"testing"

	"quiprend-service/internal/service/game"
	"quiprend-service/internal/store"

	"github.com/google/uuid"
)

func newGameService(t *testing.T) (*game.Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return game.NewService(st, nil, game.Config{}), st
}

func intPtr(n int) *int {
	return &n
}

func newActivePlayer(name string, played *int) *game.Player {
	return &game.Player{
		ID:         uuid.New(),
		Name:       name,
		Hand:       []int{},
		PlayedCard: played,
	}
}

// seedPlayingGame persists a mid-turn snapshot so resolution tests can set
// up exact row layouts and committed plays without going through a shuffle.
func seedPlayingGame(t *testing.T, st *store.Memory, code string, rows []game.Row, players ...*game.Player) *game.Game {
	t.Helper()

	g := &game.Game{
		Code:        code,
		Status:      game.StatusPlaying,
		HostID:      players[0].ID,
		Players:     players,
		Rows:        rows,
		Round:       1,
		CurrentTurn: 1,
		MaxRounds:   6,
	}
	if err := st.Save(context.Background(), g); err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}
	return g
}

func loadGame(t *testing.T, st *store.Memory, code string) *game.Game {
	t.Helper()
	g, err := st.Load(context.Background(), code)
	if err != nil {
		t.Fatalf("failed to load game: %v", err)
	}
	return g
}

func rowsEqual(a, b game.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func eventKinds(events []game.Event) []game.EventKind {
	kinds := make([]game.EventKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}
