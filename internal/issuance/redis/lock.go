// Package redis provides the per-show lock used while a booking is being
// issued. The lock serializes concurrent issuances for the same show
// across processes; the conditional seat decrement in the catalog remains
// the hard guarantee against overselling.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lock{Client: client, TTL: ttl}
}

func key(showID int64) string {
	return fmt.Sprintf("show_lock:%d", showID)
}

// LockShow takes the lock for a show on behalf of token. Returns false
// when another holder has it.
func (l *Lock) LockShow(ctx context.Context, showID int64, token string) (bool, error) {
	return l.Client.SetNX(ctx, key(showID), token, l.TTL).Result()
}

// UnlockShow releases the lock only if token still owns it, so an expired
// lock re-acquired by someone else is never deleted from under them.
func (l *Lock) UnlockShow(ctx context.Context, showID int64, token string) error {
	k := key(showID)
	val, err := l.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err = l.Client.Del(ctx, k).Result()
		return err
	}
	return nil
}
