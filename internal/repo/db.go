package repo

import (
	"log"

	"quiprend-service/internal/config"
	"quiprend-service/internal/model"
	"quiprend-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.GlobalConfig.Database.DSN
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.Error(err),
		)
	}

	err = DB.AutoMigrate(
		&model.GameArchive{},
		&model.TurnLog{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}
