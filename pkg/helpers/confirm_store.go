package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConfirmTokenStore keeps one-shot email confirmation tokens in redis.
// The TTL bounds how long a mailed link stays valid; deleting the key on
// use makes each token single-shot.
type ConfirmTokenStore struct {
	rdb *redis.Client
}

func NewConfirmTokenStore(rdb *redis.Client) *ConfirmTokenStore {
	return &ConfirmTokenStore{rdb: rdb}
}

type confirmTokenRecord struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

func confirmTokenKey(token string) string { return "confirm:token:" + token }

func (s *ConfirmTokenStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	rec := confirmTokenRecord{UserID: userID, IssuedAt: time.Now().UTC()}
	return RedisSetJSON(ctx, s.rdb, confirmTokenKey(token), rec, ttl)
}

func (s *ConfirmTokenStore) Get(ctx context.Context, token string) (string, bool, error) {
	var rec confirmTokenRecord
	found, err := RedisGetJSON(ctx, s.rdb, confirmTokenKey(token), &rec)
	if err != nil || !found {
		return "", false, err
	}
	return rec.UserID, true, nil
}

func (s *ConfirmTokenStore) Del(ctx context.Context, token string) error {
	return RedisDel(ctx, s.rdb, confirmTokenKey(token))
}
