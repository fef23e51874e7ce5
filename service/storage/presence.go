package storage

import (
	"context"
	"fmt"
	"time"

	redissrv "SnapTalk/service/storage/redis"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// presence key: st:presence:<user>
// value: gateway node ID; TTL bounds the online validity window.
func presenceKey(user string) string { return "st:presence:" + user }

// PresenceOnline marks the user online and renews the TTL.
func PresenceOnline(ctx context.Context, user, nodeID string, ttl time.Duration) error {
	rdb := redissrv.Client()
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Set(ctx, presenceKey(user), nodeID, ttl).Err()
}

// PresenceOffline removes the online marker.
func PresenceOffline(ctx context.Context, user string) error {
	rdb := redissrv.Client()
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup reports whether the user is marked online.
func PresenceLookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	rdb := redissrv.Client()
	if rdb == nil {
		return "", false, fmt.Errorf("redis not initialized")
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
