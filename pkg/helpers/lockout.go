package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockoutTracker counts consecutive failed logins per email in redis and
// reports when the account should be temporarily locked. The counter key
// expires on its own, so a lock always clears without intervention.
type LockoutTracker struct {
	rdb         *redis.Client
	MaxAttempts int
	Window      time.Duration
}

func NewLockoutTracker(rdb *redis.Client, maxAttempts int, window time.Duration) *LockoutTracker {
	return &LockoutTracker{rdb: rdb, MaxAttempts: maxAttempts, Window: window}
}

// Atomic INCR with expiry management. The key gets its TTL on the first
// failure, and the TTL restarts when the limit is reached so a tripped
// lock holds for the full window from the attempt that tripped it.
var failCountScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 or current >= tonumber(ARGV[2]) then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func lockoutKey(email string) string { return "login:fail:" + email }

// Locked reports whether the email has reached the attempt limit inside
// the current window. Redis errors fail open so an outage never locks
// everyone out.
func (t *LockoutTracker) Locked(ctx context.Context, email string) (bool, error) {
	n, err := t.rdb.Get(ctx, lockoutKey(email)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= t.MaxAttempts, nil
}

// RecordFailure bumps the counter and reports whether this failure
// triggered the lock.
func (t *LockoutTracker) RecordFailure(ctx context.Context, email string) (bool, error) {
	n, err := failCountScript.Run(ctx, t.rdb, []string{lockoutKey(email)}, t.Window.Milliseconds(), t.MaxAttempts).Int64()
	if err != nil {
		return false, err
	}
	return int(n) >= t.MaxAttempts, nil
}

// Reset clears the counter after a successful login.
func (t *LockoutTracker) Reset(ctx context.Context, email string) error {
	return t.rdb.Del(ctx, lockoutKey(email)).Err()
}
