package archive_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"quiprend-service/internal/model"
	"quiprend-service/internal/service/archive"
	"quiprend-service/internal/service/game"
	"quiprend-service/internal/store"
	appErr "quiprend-service/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newArchiveService(t *testing.T) *archive.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.GameArchive{}, &model.TurnLog{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}
	return archive.NewService(db)
}

func TestSaveResultAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newArchiveService(t)

	aliceID := uuid.New()
	scores := []game.FinalScore{
		{PlayerID: aliceID, Name: "alice", Score: 70},
		{PlayerID: uuid.New(), Name: "bob", Score: 12},
	}
	if err := svc.SaveResult(ctx, "ABC123", game.FinishScoreLimit, 3, scores); err != nil {
		t.Fatalf("save result failed: %v", err)
	}
	if err := svc.RecordAction(ctx, game.HistoryEntry{
		GameCode:   "ABC123",
		Round:      3,
		Turn:       4,
		PlayerID:   aliceID,
		PlayerName: "alice",
		Action:     "row_overflow",
		Card:       12,
		RowIndex:   0,
		Penalty:    8,
	}); err != nil {
		t.Fatalf("record action failed: %v", err)
	}

	arch, logs, err := svc.Get(ctx, "ABC123")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if arch.FinishReason != string(game.FinishScoreLimit) || arch.RoundsPlayed != 3 {
		t.Fatalf("unexpected archive row: %+v", arch)
	}

	var gotScores []game.FinalScore
	if err := json.Unmarshal(arch.ScoresJSON, &gotScores); err != nil {
		t.Fatalf("scores payload unreadable: %v", err)
	}
	if len(gotScores) != 2 || gotScores[0].Score != 70 {
		t.Fatalf("unexpected scores: %+v", gotScores)
	}

	if len(logs) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(logs))
	}
	if logs[0].Action != "row_overflow" || logs[0].Penalty != 8 {
		t.Fatalf("unexpected log line: %+v", logs[0])
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newArchiveService(t)
	if _, _, err := svc.Get(context.Background(), "MISSING"); !errors.Is(err, appErr.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestFinishedGameIsArchived(t *testing.T) {
	ctx := context.Background()
	svc := newArchiveService(t)
	st := store.NewMemory()
	games := game.NewService(st, svc, game.Config{})

	p1 := &game.Player{ID: uuid.New(), Name: "alice", Hand: []int{}, PlayedCard: intPtr(50)}
	p2 := &game.Player{ID: uuid.New(), Name: "bob", Hand: []int{}, PlayedCard: intPtr(60)}
	g := &game.Game{
		Code:        "ARCH1",
		Status:      game.StatusPlaying,
		HostID:      p1.ID,
		Players:     []*game.Player{p1, p2},
		Rows:        []game.Row{{10}, {20}, {30}, {40}},
		Round:       6,
		CurrentTurn: 10,
		MaxRounds:   6,
	}
	if err := st.Save(ctx, g); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := games.TryResolveTurn(ctx, "ARCH1"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	arch, logs, err := svc.Get(ctx, "ARCH1")
	if err != nil {
		t.Fatalf("finished game not archived: %v", err)
	}
	if arch.FinishReason != string(game.FinishRoundsCompleted) {
		t.Fatalf("unexpected finish reason %q", arch.FinishReason)
	}
	if len(logs) == 0 {
		t.Fatal("expected placement log lines")
	}
}

func intPtr(n int) *int {
	return &n
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	svc := newArchiveService(t)

	for _, code := range []string{"G1", "G2", "G3"} {
		if err := svc.SaveResult(ctx, code, game.FinishRoundsCompleted, 6, nil); err != nil {
			t.Fatalf("save result failed: %v", err)
		}
	}

	result, err := svc.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("expected total=3, got %d", result.Total)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected page size 2, got %d", len(result.Items))
	}
}
