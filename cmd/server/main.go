package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wardenbot/warden/internal/config"
	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/server"
	"github.com/wardenbot/warden/pkg/database"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)
	srv.StartWorkers()
	defer srv.StopWorkers()

	log.Printf("🚀 Warden analytics API listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.GuildRollup{},
		&model.UserActivity{},
		&model.MemberLog{},
		&model.MessageLog{},
		&model.VoiceLog{},
		&model.RoleLog{},
		&model.ModerationCase{},
	)
}

// connectRedis returns nil when no Redis is configured or reachable; callers
// treat a nil client as "cache disabled".
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("⚠️ REDIS_URL not set, running without cache")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("⚠️ Invalid REDIS_URL, running without cache: %v", err)
		return nil
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, running without cache: %v", err)
		return nil
	}

	log.Println("✅ Redis connected")
	return client
}
