// AngelaMos | 2026
// state.go

package corppass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hawkersg/hawker-backend/internal/core"
)

var ErrInvalidState = fmt.Errorf("invalid or expired corppass state: %w", core.ErrInvalidInput)

// Session is the per-login state kept between authorize and callback.
type Session struct {
	State        string        `json:"state"`
	Nonce        string        `json:"nonce"`
	CodeVerifier string        `json:"code_verifier"`
	Hint         *BusinessHint `json:"hint,omitempty"`
}

type StateStore interface {
	Save(ctx context.Context, s *Session) error
	Attach(ctx context.Context, state string, hint BusinessHint) error
	Take(ctx context.Context, state string) (*Session, error)
}

type redisStateStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStateStore(rdb redis.Cmdable, ttl time.Duration) StateStore {
	return &redisStateStore{rdb: rdb, ttl: ttl}
}

func stateKey(state string) string {
	return core.RedisKey("corppass", "state", state)
}

func (s *redisStateStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode corppass session: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, stateKey(sess.State), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save corppass session: %w", err)
	}
	if !ok {
		return fmt.Errorf("save corppass session: %w", core.ErrDuplicateKey)
	}
	return nil
}

// Attach records the business hint on a pending session without
// extending its lifetime.
func (s *redisStateStore) Attach(ctx context.Context, state string, hint BusinessHint) error {
	key := stateKey(state)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("load corppass session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("decode corppass session: %w", err)
	}
	sess.Hint = &hint

	data, err = json.Marshal(&sess)
	if err != nil {
		return fmt.Errorf("encode corppass session: %w", err)
	}

	err = s.rdb.SetArgs(ctx, key, data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("update corppass session: %w", err)
	}
	return nil
}

// Take returns the session and deletes it, so each state is usable once.
func (s *redisStateStore) Take(ctx context.Context, state string) (*Session, error) {
	data, err := s.rdb.GetDel(ctx, stateKey(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("take corppass session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode corppass session: %w", err)
	}
	return &sess, nil
}
