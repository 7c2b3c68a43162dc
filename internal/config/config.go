package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

// GameConfig overrides the rule set. Zero values fall back to the standard
// rules (6 rounds, 10 cards per hand, 4 rows of at most 5 cards, 66-point
// limit, 104-card deck).
type GameConfig struct {
	MaxRounds      int `mapstructure:"maxRounds"`
	CardsPerPlayer int `mapstructure:"cardsPerPlayer"`
	RowCount       int `mapstructure:"rowCount"`
	RowCapacity    int `mapstructure:"rowCapacity"`
	ScoreLimit     int `mapstructure:"scoreLimit"`
	DeckSize       int `mapstructure:"deckSize"`
	MinPlayers     int `mapstructure:"minPlayers"`
	MaxPlayers     int `mapstructure:"maxPlayers"`
}

var GlobalConfig *Config

func LoadConfig(path string) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	GlobalConfig = &cfg
}
