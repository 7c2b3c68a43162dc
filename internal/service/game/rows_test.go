package game_test

import (
	"testing"

	"quiprend-service/internal/service/game"
)

func TestLegalTargets(t *testing.T) {
	rows := []game.Row{{10}, {25}, {50}, {90}}

	targets := game.LegalTargets(60, rows)
	if len(targets) != 3 {
		t.Fatalf("expected 3 legal rows for 60, got %d", len(targets))
	}
	if targets[0].RowIndex != 0 || targets[1].RowIndex != 1 || targets[2].RowIndex != 2 {
		t.Fatalf("expected targets in row order, got %+v", targets)
	}
	if targets[2].Gap != 10 {
		t.Fatalf("expected gap 10 against row 2, got %d", targets[2].Gap)
	}

	if targets := game.LegalTargets(5, rows); len(targets) != 0 {
		t.Fatalf("expected no legal rows for 5, got %+v", targets)
	}
}

func TestSelectTargetClosestBelow(t *testing.T) {
	rows := []game.Row{{10}, {25}, {50}, {90}}

	target, ok := game.SelectTarget(game.LegalTargets(60, rows))
	if !ok {
		t.Fatal("expected a target")
	}
	if target.RowIndex != 2 {
		t.Fatalf("expected closest row 2 for card 60, got row %d", target.RowIndex)
	}
}

func TestSelectTargetTieBreaksToFirstRow(t *testing.T) {
	// Both rows sit 20 below the card; the first row in order must win.
	rows := []game.Row{{10}, {5}, {50}, {90}}

	target, ok := game.SelectTarget(game.LegalTargets(30, rows))
	if !ok {
		t.Fatal("expected a target")
	}
	if target.RowIndex != 0 {
		t.Fatalf("expected tie to resolve to row 0, got row %d", target.RowIndex)
	}
}

func TestSelectTargetEmpty(t *testing.T) {
	if _, ok := game.SelectTarget(nil); ok {
		t.Fatal("expected no target from empty input")
	}
}
