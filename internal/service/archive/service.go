package archive

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quiprend-service/internal/model"
	"quiprend-service/internal/service/game"
	appErr "quiprend-service/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service persists turn-by-turn history and final results of finished
// games. It implements game.History.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) RecordAction(ctx context.Context, e game.HistoryEntry) error {
	return s.db.WithContext(ctx).Create(&model.TurnLog{
		GameCode:   e.GameCode,
		Round:      e.Round,
		Turn:       e.Turn,
		PlayerID:   e.PlayerID.String(),
		PlayerName: e.PlayerName,
		Action:     e.Action,
		Card:       e.Card,
		RowIndex:   e.RowIndex,
		Penalty:    e.Penalty,
		CreatedAt:  time.Now(),
	}).Error
}

func (s *Service) SaveResult(ctx context.Context, code string, reason game.FinishReason, rounds int, scores []game.FinalScore) error {
	payload, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&model.GameArchive{
		Code:         code,
		FinishReason: string(reason),
		RoundsPlayed: rounds,
		ScoresJSON:   datatypes.JSON(payload),
		FinishedAt:   time.Now(),
	}).Error
}

type ListResult struct {
	Items []model.GameArchive `json:"items"`
	Total int64               `json:"total"`
}

func (s *Service) List(ctx context.Context, page, size int) (ListResult, error) {
	var result ListResult
	query := s.db.WithContext(ctx).Model(&model.GameArchive{})
	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	err := query.Order("finished_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&result.Items).Error
	return result, err
}

// Get returns a finished game's archive row together with its full action
// history, oldest first.
func (s *Service) Get(ctx context.Context, code string) (*model.GameArchive, []model.TurnLog, error) {
	var arch model.GameArchive
	err := s.db.WithContext(ctx).
		Where("code = ?", code).
		Order("finished_at DESC").
		First(&arch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, appErr.ErrGameNotFound
		}
		return nil, nil, err
	}

	var logs []model.TurnLog
	err = s.db.WithContext(ctx).
		Where("game_code = ?", code).
		Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, nil, err
	}
	return &arch, logs, nil
}
