package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
}

// ValkeyClient caches basic-auth credentials so hot request paths skip the
// users table. Misses always fall back to the database.
type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
	}, nil
}

func (v *ValkeyClient) authKey(email, passwordHash string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + passwordHash))
}

func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	userIDStr, err := v.client.HGet(ctx, v.usersHashKey, v.authKey(email, passwordHash)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

// SetUserAuth stores verified credentials after a successful database check.
func (v *ValkeyClient) SetUserAuth(ctx context.Context, email, passwordHash string, userID int64) error {
	return v.client.HSet(ctx, v.usersHashKey, v.authKey(email, passwordHash), strconv.FormatInt(userID, 10)).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
