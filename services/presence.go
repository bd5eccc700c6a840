package services

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classverse/classverse"
)

const onlineKeyPrefix = "online:"

type presence struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPresence tracks online users in Redis: one TTL key per connected
// user, refreshed on heartbeat and expired automatically when a
// client drops without unregistering.
func NewPresence(rdb *redis.Client, ttl time.Duration) (classverse.Presence, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &presence{
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (p *presence) MarkOnline(ctx context.Context, userID string) error {
	return p.rdb.Set(ctx, onlineKeyPrefix+userID, 1, p.ttl).Err()
}

func (p *presence) MarkOffline(ctx context.Context, userID string) error {
	return p.rdb.Del(ctx, onlineKeyPrefix+userID).Err()
}

func (p *presence) OnlineUsers(ctx context.Context) ([]string, error) {
	var users []string
	iter := p.rdb.Scan(ctx, 0, onlineKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), onlineKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
