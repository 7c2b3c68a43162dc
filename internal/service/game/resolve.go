package game

import (
	"context"

	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TryResolveTurn is the idempotent entry point into turn resolution. It
// no-ops when the turn is not ready (not all active players have played),
// when a resolution pass is already in flight, or when one is stalled on a
// manual row choice. Otherwise it reveals the plays, runs the pre-check
// pass, and places cards in ascending order until the turn completes, the
// game ends, or a play with no legal row suspends resolution.
//
// The first save (turnResolved=true) doubles as the mutual-exclusion
// acquisition: a concurrent caller that read the same snapshot loses the
// version compare-and-swap and comes back with ErrVersionConflict.
func (s *Service) TryResolveTurn(ctx context.Context, code string) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if g.Status != StatusPlaying {
		return nil
	}
	if g.TurnResolved || g.WaitingForRowChoice != nil {
		return nil
	}

	active := g.ActivePlayers()
	if len(active) == 0 {
		return nil
	}
	for _, p := range active {
		if !p.HasPlayed() {
			return nil
		}
	}

	g.TurnResolved = true
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	plays := pendingPlays(g)
	s.publish(ctx, g.Code, Event{Kind: EventCardsRevealed, Plays: plays})

	// Pre-check pass: rows are not mutated yet, so every play is screened
	// against the same layout. This lets clients reveal the whole turn
	// before the first placement commits.
	for _, play := range plays {
		if len(LegalTargets(play.Card, g.Rows)) == 0 {
			return s.stall(ctx, g, play)
		}
	}

	return s.placePlays(ctx, g)
}

// stall suspends resolution until the player supplies a row choice.
func (s *Service) stall(ctx context.Context, g *Game, play Play) error {
	pid := play.PlayerID
	card := play.Card
	g.WaitingForRowChoice = &pid
	g.PendingCard = &card
	g.TurnResolved = false
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	logger.Log.Info("turn resolution stalled on row choice",
		zap.String("gameCode", g.Code),
		zap.String("playerID", pid.String()),
		zap.Int("card", card),
	)
	s.publish(ctx, g.Code, Event{
		Kind:       EventRowChoiceRequired,
		PlayerID:   pid,
		PlayerName: play.Name,
		Card:       card,
	})
	return nil
}

// placePlays runs the placement pass over the remaining plays of the turn.
// Rows mutate as cards land, so legal targets are recomputed against the
// current layout before every placement, and the remaining work is
// re-derived from the players whose PlayedCard is still set. State is saved
// after every single placement; a crash between two placements loses at
// most the in-flight one.
func (s *Service) placePlays(ctx context.Context, g *Game) error {
	for {
		plays := pendingPlays(g)
		if len(plays) == 0 {
			return s.advanceTurn(ctx, g)
		}
		play := plays[0]

		targets := LegalTargets(play.Card, g.Rows)
		if len(targets) == 0 {
			return s.stall(ctx, g, play)
		}
		target, _ := SelectTarget(targets)

		p := g.PlayerByID(play.PlayerID)
		if len(g.Rows[target.RowIndex]) >= s.cfg.RowCapacity {
			if err := s.overflowRow(ctx, g, p, play.Card, target.RowIndex); err != nil {
				return err
			}
			if g.Status == StatusFinished {
				return nil
			}
			continue
		}

		g.Rows[target.RowIndex] = append(g.Rows[target.RowIndex], play.Card)
		p.PlayedCard = nil
		if err := s.store.Save(ctx, g); err != nil {
			return err
		}

		s.publish(ctx, g.Code, Event{
			Kind:       EventCardPlaced,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Card:       play.Card,
			RowIndex:   rowRef(target.RowIndex),
		})
		s.recordAction(ctx, HistoryEntry{
			GameCode:   g.Code,
			Round:      g.Round,
			Turn:       g.CurrentTurn,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Action:     "placed",
			Card:       play.Card,
			RowIndex:   target.RowIndex,
		})
	}
}

// overflowRow applies a sixth-card placement: the row's settled cards become
// a penalty for the placing player and the row resets to the new card. The
// score-limit check runs immediately after the penalty lands; if it trips,
// the game finishes and the remaining plays of the turn stay uncommitted.
func (s *Service) overflowRow(ctx context.Context, g *Game, p *Player, card, rowIndex int) error {
	collected := append([]int(nil), g.Rows[rowIndex]...)
	penalty := RowPenalty(collected)
	p.Score += penalty
	g.Rows[rowIndex] = Row{card}
	p.PlayedCard = nil
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	s.publish(ctx, g.Code, Event{
		Kind:       EventRowOverflow,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Card:       card,
		RowIndex:   rowRef(rowIndex),
		Penalty:    penalty,
		Collected:  collected,
	})
	s.recordAction(ctx, HistoryEntry{
		GameCode:   g.Code,
		Round:      g.Round,
		Turn:       g.CurrentTurn,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Action:     "row_overflow",
		Card:       card,
		RowIndex:   rowIndex,
		Penalty:    penalty,
	})

	if p.Score >= s.cfg.ScoreLimit {
		return s.finish(ctx, g, FinishScoreLimit)
	}
	return nil
}

// ResolveRowChoice resumes a stalled resolution with the player's manual
// pick: the chosen row is collected as a penalty, reset to the pending
// card, and the placement pass continues with the plays that have not been
// placed yet.
func (s *Service) ResolveRowChoice(ctx context.Context, code string, playerID uuid.UUID, rowIndex int) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if g.WaitingForRowChoice == nil || *g.WaitingForRowChoice != playerID {
		return appErr.ErrUnauthorized
	}
	if rowIndex < 0 || rowIndex >= len(g.Rows) {
		return appErr.ErrInvalidRow
	}

	p := g.PlayerByID(playerID)
	card := *g.PendingCard
	collected := append([]int(nil), g.Rows[rowIndex]...)
	penalty := RowPenalty(collected)
	p.Score += penalty
	g.Rows[rowIndex] = Row{card}
	p.PlayedCard = nil
	g.PendingCard = nil
	g.WaitingForRowChoice = nil
	g.TurnResolved = true
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	s.publish(ctx, g.Code, Event{
		Kind:       EventRowChosen,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Card:       card,
		RowIndex:   rowRef(rowIndex),
		Penalty:    penalty,
		Collected:  collected,
	})
	s.recordAction(ctx, HistoryEntry{
		GameCode:   g.Code,
		Round:      g.Round,
		Turn:       g.CurrentTurn,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Action:     "chose_row",
		Card:       card,
		RowIndex:   rowIndex,
		Penalty:    penalty,
	})

	if p.Score >= s.cfg.ScoreLimit {
		return s.finish(ctx, g, FinishScoreLimit)
	}
	return s.placePlays(ctx, g)
}

// finish terminates the game immediately. Remaining uncommitted plays are
// left untouched on purpose: a score-limit finish mid-turn places nothing
// further.
func (s *Service) finish(ctx context.Context, g *Game, reason FinishReason) error {
	g.Status = StatusFinished
	g.FinishReason = reason
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	logger.Log.Info("game finished",
		zap.String("gameCode", g.Code),
		zap.String("reason", string(reason)),
		zap.Int("round", g.Round),
	)
	s.publish(ctx, g.Code, Event{Kind: EventGameFinished, Reason: reason, Round: g.Round})
	s.archiveResult(ctx, g)
	return nil
}
