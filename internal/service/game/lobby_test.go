package game_test

import (
	"context"
	"strings"
	"testing"

	"quiprend-service/internal/service/game"
	"quiprend-service/internal/store"
	appErr "quiprend-service/pkg/errors"

	"github.com/google/uuid"
)

func TestCreateGame(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	g, err := svc.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(g.Code) != 6 || g.Code != strings.ToUpper(g.Code) {
		t.Fatalf("unexpected game code %q", g.Code)
	}
	if g.Status != game.StatusWaiting {
		t.Fatalf("expected waiting, got %s", g.Status)
	}
	if host := g.PlayerByID(g.HostID); host == nil || host.Name != "alice" {
		t.Fatalf("host not registered: %+v", g.Players)
	}

	if _, err := st.Load(ctx, g.Code); err != nil {
		t.Fatalf("game not persisted: %v", err)
	}

	if _, err := svc.CreateGame(ctx, "   "); err != appErr.ErrInvalidPlayerName {
		t.Fatalf("expected ErrInvalidPlayerName, got %v", err)
	}
}

func TestJoinGame(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGameService(t)

	g, err := svc.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	joined, bobID, err := svc.JoinGame(ctx, strings.ToLower(g.Code), "bob")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if joined.PlayerByID(bobID) == nil {
		t.Fatal("bob missing after join")
	}

	if _, _, err := svc.JoinGame(ctx, "ZZZZZZ", "carol"); err != appErr.ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestJoinGameFull(t *testing.T) {
	ctx := context.Background()
	svc := game.NewService(store.NewMemory(), nil, game.Config{MaxPlayers: 2})

	g, err := svc.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, _, err := svc.JoinGame(ctx, g.Code, "bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, _, err := svc.JoinGame(ctx, g.Code, "carol"); err != appErr.ErrGameFull {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	// Spectators never count against the table size.
	if _, _, err := svc.JoinAsSpectator(ctx, g.Code, "carol"); err != nil {
		t.Fatalf("spectate failed: %v", err)
	}
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	g, err := svc.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, bobID, err := svc.JoinGame(ctx, g.Code, "bob")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if err := svc.StartGame(ctx, g.Code, bobID); err != appErr.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for non-host, got %v", err)
	}
	if err := svc.StartGame(ctx, g.Code, g.HostID); err != appErr.ErrPlayersNotReady {
		t.Fatalf("expected ErrPlayersNotReady, got %v", err)
	}

	if err := svc.ToggleReady(ctx, g.Code, g.HostID); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if err := svc.ToggleReady(ctx, g.Code, bobID); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if err := svc.StartGame(ctx, g.Code, g.HostID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	started := loadGame(t, st, g.Code)
	if started.Status != game.StatusPlaying {
		t.Fatalf("expected playing, got %s", started.Status)
	}
	if started.Round != 1 || started.CurrentTurn != 1 {
		t.Fatalf("expected round 1 turn 1, got round %d turn %d", started.Round, started.CurrentTurn)
	}
	if len(started.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(started.Rows))
	}
	for _, p := range started.ActivePlayers() {
		if len(p.Hand) != 10 {
			t.Fatalf("expected 10 cards for %s, got %d", p.Name, len(p.Hand))
		}
	}

	// Actives cannot join a running game; spectators can.
	if _, _, err := svc.JoinGame(ctx, g.Code, "late"); err != appErr.ErrGameNotJoinable {
		t.Fatalf("expected ErrGameNotJoinable, got %v", err)
	}
	if _, _, err := svc.JoinAsSpectator(ctx, g.Code, "watcher"); err != nil {
		t.Fatalf("spectate failed: %v", err)
	}
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGameService(t)

	g, err := svc.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.ToggleReady(ctx, g.Code, g.HostID); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if err := svc.StartGame(ctx, g.Code, g.HostID); err != appErr.ErrNotEnoughPlayers {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestSubmitPlay(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	p1 := newActivePlayer("alice", nil)
	p1.Hand = []int{7, 42, 88}
	p2 := newActivePlayer("bob", nil)
	p2.Hand = []int{9, 50, 91}
	spec := newActivePlayer("eve", nil)
	spec.IsSpectator = true
	seedPlayingGame(t, st, "PLAY1",
		[]game.Row{{10}, {20}, {30}, {40}}, p1, p2, spec)

	if err := svc.SubmitPlay(ctx, "PLAY1", p1.ID, 42); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	g := loadGame(t, st, "PLAY1")
	p := g.PlayerByID(p1.ID)
	if p.PlayedCard == nil || *p.PlayedCard != 42 {
		t.Fatalf("expected committed card 42, got %v", p.PlayedCard)
	}
	if len(p.Hand) != 2 {
		t.Fatalf("card not removed from hand: %v", p.Hand)
	}

	if err := svc.SubmitPlay(ctx, "PLAY1", p1.ID, 7); err != appErr.ErrAlreadyPlayed {
		t.Fatalf("expected ErrAlreadyPlayed, got %v", err)
	}
	if err := svc.SubmitPlay(ctx, "PLAY1", p2.ID, 77); err != appErr.ErrCardNotInHand {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
	if err := svc.SubmitPlay(ctx, "PLAY1", spec.ID, 9); err != appErr.ErrNotActivePlayer {
		t.Fatalf("expected ErrNotActivePlayer, got %v", err)
	}
	if err := svc.SubmitPlay(ctx, "PLAY1", uuid.New(), 9); err != appErr.ErrPlayerNotFound {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestLeaveGame(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	g, err := svc.CreateGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, bobID, err := svc.JoinGame(ctx, g.Code, "bob")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	// Leaving a waiting game removes the player outright.
	if err := svc.LeaveGame(ctx, g.Code, bobID); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if got := loadGame(t, st, g.Code); got.PlayerByID(bobID) != nil {
		t.Fatal("bob still present after leaving a waiting game")
	}

	// Mid-game, a leaving active becomes a spectator and the host role
	// moves to a remaining active.
	p1 := newActivePlayer("carol", nil)
	p1.Hand = []int{7}
	p2 := newActivePlayer("dave", nil)
	p2.Hand = []int{9}
	seedPlayingGame(t, st, "LEAVE2",
		[]game.Row{{10}, {20}, {30}, {40}}, p1, p2)

	if err := svc.LeaveGame(ctx, "LEAVE2", p1.ID); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	got := loadGame(t, st, "LEAVE2")
	left := got.PlayerByID(p1.ID)
	if left == nil || !left.IsSpectator || len(left.Hand) != 0 {
		t.Fatalf("expected carol converted to spectator, got %+v", left)
	}
	if got.HostID != p2.ID {
		t.Fatalf("expected host reassigned to dave, got %v", got.HostID)
	}
}

func TestLeaveGameBlockedDuringRowChoice(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	p1 := newActivePlayer("alice", intPtr(3))
	p2 := newActivePlayer("bob", intPtr(40))
	seedPlayingGame(t, st, "LEAVE3",
		[]game.Row{{10}, {20}, {30}, {90}}, p1, p2)

	if err := svc.TryResolveTurn(ctx, "LEAVE3"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := svc.LeaveGame(ctx, "LEAVE3", p1.ID); err != appErr.ErrRowChoicePending {
		t.Fatalf("expected ErrRowChoicePending, got %v", err)
	}
}

func TestRestartGame(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	p1 := newActivePlayer("alice", intPtr(50))
	p1.Score = 30
	p2 := newActivePlayer("bob", nil)
	p2.Hand = []int{9}
	seedPlayingGame(t, st, "AGAIN",
		[]game.Row{{10}, {20}, {30}, {40}}, p1, p2)

	if err := svc.RestartGame(ctx, "AGAIN", p2.ID); err != appErr.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for non-host, got %v", err)
	}
	if err := svc.RestartGame(ctx, "AGAIN", p1.ID); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	g := loadGame(t, st, "AGAIN")
	if g.Status != game.StatusWaiting || g.Round != 0 || g.CurrentTurn != 0 {
		t.Fatalf("unexpected state after restart: %+v", g)
	}
	if len(g.Rows) != 0 {
		t.Fatalf("rows must be cleared, got %v", g.Rows)
	}
	for _, p := range g.Players {
		if p.Score != 0 || p.Ready || len(p.Hand) != 0 || p.PlayedCard != nil {
			t.Fatalf("player %s not reset: %+v", p.Name, p)
		}
	}
}

func TestGetStateHidesOtherHands(t *testing.T) {
	ctx := context.Background()
	svc, st := newGameService(t)

	p1 := newActivePlayer("alice", nil)
	p1.Hand = []int{7, 42}
	p2 := newActivePlayer("bob", intPtr(55))
	p2.Hand = []int{9}
	seedPlayingGame(t, st, "VIEW1",
		[]game.Row{{10}, {20}, {30}, {40}}, p1, p2)

	view, err := svc.GetState(ctx, "VIEW1", p1.ID)
	if err != nil {
		t.Fatalf("get state failed: %v", err)
	}

	var self, other *game.PlayerView
	for i := range view.Players {
		switch view.Players[i].ID {
		case p1.ID:
			self = &view.Players[i]
		case p2.ID:
			other = &view.Players[i]
		}
	}
	if self == nil || other == nil {
		t.Fatalf("players missing from view: %+v", view.Players)
	}
	if len(self.Hand) != 2 || self.HandSize != 2 {
		t.Fatalf("own hand must be visible: %+v", self)
	}
	if other.Hand != nil || other.PlayedCard != nil {
		t.Fatalf("other player's cards leaked: %+v", other)
	}
	if other.HandSize != 1 || !other.HasPlayed {
		t.Fatalf("other player's public counters wrong: %+v", other)
	}
	if !self.IsHost {
		t.Fatal("host flag missing on alice")
	}
}
