// internal/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Marga-Ghale/ora-casework/internal/models"
)

type RedisDB struct {
	Client *redis.Client
	logger zerolog.Logger
}

func NewRedisDB(ctx context.Context, redisURL string, logger zerolog.Logger) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log := logger.With().Str("component", "redis").Logger()
	log.Info().Msg("connected to Redis")
	return &RedisDB{Client: client, logger: log}, nil
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		r.Client.Close()
		r.logger.Info().Msg("Redis connection closed")
	}
}

func presenceKey(workspaceID, memberID string) string {
	return "presence:" + workspaceID + ":" + memberID
}

// SetPresence stores the member's presence record with a TTL, so entries
// of a crashed process age out on their own.
func (r *RedisDB) SetPresence(ctx context.Context, workspaceID string, member models.WorkspaceMember, ttl time.Duration) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, presenceKey(workspaceID, member.ID), data, ttl).Err()
}

// GetPresence reads one mirrored presence record. ok is false when no live
// process has written it within the TTL.
func (r *RedisDB) GetPresence(ctx context.Context, workspaceID, memberID string) (member models.WorkspaceMember, ok bool, err error) {
	data, err := r.Client.Get(ctx, presenceKey(workspaceID, memberID)).Bytes()
	if err == redis.Nil {
		return member, false, nil
	}
	if err != nil {
		return member, false, err
	}
	if err := json.Unmarshal(data, &member); err != nil {
		return member, false, err
	}
	return member, true, nil
}

// OnlinePresence returns the mirrored members of a workspace that are online.
func (r *RedisDB) OnlinePresence(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	var online []models.WorkspaceMember
	iter := r.Client.Scan(ctx, 0, presenceKey(workspaceID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.Client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var member models.WorkspaceMember
		if err := json.Unmarshal(data, &member); err != nil {
			return nil, err
		}
		if member.IsOnline {
			online = append(online, member)
		}
	}
	return online, iter.Err()
}
