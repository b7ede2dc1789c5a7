package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	JudgeURL            string
	JudgeTimeout        time.Duration
	LeaderboardCacheTTL time.Duration
	LeaderboardLimit    int
	ReferralXPBonus     int
	AIProvider          string
	OpenAIAPIKey        string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KIDLEARN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "KidLearn API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("judge.timeout", "30s")
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("leaderboard.limit", 50)
	v.SetDefault("referral.xp_bonus", 25)
	v.SetDefault("ai.provider", "openai")

	judgeTimeout, err := time.ParseDuration(v.GetString("judge.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid judge timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("leaderboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		JudgeURL:            v.GetString("judge.url"),
		JudgeTimeout:        judgeTimeout,
		LeaderboardCacheTTL: cacheTTL,
		LeaderboardLimit:    v.GetInt("leaderboard.limit"),
		ReferralXPBonus:     v.GetInt("referral.xp_bonus"),
		AIProvider:          strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = 50
	}

	return cfg, nil
}
