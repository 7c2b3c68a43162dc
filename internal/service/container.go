package service

import (
	"quiprend-service/internal/config"
	"quiprend-service/internal/service/archive"
	"quiprend-service/internal/service/game"
	"quiprend-service/internal/store"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Game    *game.Service
	Archive *archive.Service
	Store   *store.Redis
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	st := store.NewRedis(rdb)
	arch := archive.NewService(db)
	return &Container{
		Game:    game.NewService(st, arch, gameConfigFromGlobal()),
		Archive: arch,
		Store:   st,
	}
}

func gameConfigFromGlobal() game.Config {
	if config.GlobalConfig == nil {
		return game.Config{}
	}
	gc := config.GlobalConfig.Game
	return game.Config{
		MaxRounds:      gc.MaxRounds,
		CardsPerPlayer: gc.CardsPerPlayer,
		RowCount:       gc.RowCount,
		RowCapacity:    gc.RowCapacity,
		ScoreLimit:     gc.ScoreLimit,
		DeckSize:       gc.DeckSize,
		MinPlayers:     gc.MinPlayers,
		MaxPlayers:     gc.MaxPlayers,
	}
}
