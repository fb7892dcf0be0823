package histstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisOffensePrefix string = "offense/"

// how many times a contended RecordOutcome retries its optimistic transaction
const redisTxRetries = 5

// RedisHistStore keeps one JSON-encoded record per user. RecordOutcome uses
// WATCH so the read-modify-write is a compare-and-swap; a concurrent write to
// the same user aborts the transaction and it is retried.
type RedisHistStore struct {
	Client *redis.Client
}

var _ HistStore = (*RedisHistStore)(nil)

func NewRedisHistStore(redisURL string) (*RedisHistStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisHistStore{Client: rdb}, nil
}

func (s *RedisHistStore) fetch(ctx context.Context, userID string) (*OffenseRecord, error) {
	raw, err := s.Client.Get(ctx, redisOffensePrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var rec OffenseRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisHistStore) IsLockedOut(ctx context.Context, userID string, now time.Time) (bool, error) {
	rec, err := s.fetch(ctx, userID)
	if err != nil {
		return false, err
	}
	return lockedOut(rec, now), nil
}

func (s *RedisHistStore) HistoryScore(ctx context.Context, userID string, now time.Time) (int, bool, error) {
	rec, err := s.fetch(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	score, rapid := scoreRecord(rec, now)
	return score, rapid, nil
}

func (s *RedisHistStore) RecordOutcome(ctx context.Context, userID string, score int, lockout bool, now time.Time) error {
	key := redisOffensePrefix + userID

	txf := func(tx *redis.Tx) error {
		var rec *OffenseRecord
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		if err != redis.Nil {
			rec = &OffenseRecord{}
			if err := json.Unmarshal(raw, rec); err != nil {
				return err
			}
		}
		rec = applyOutcome(rec, userID, score, lockout, now)
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < redisTxRetries; i++ {
		err = s.Client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *RedisHistStore) GetRecord(ctx context.Context, userID string) (*OffenseRecord, error) {
	return s.fetch(ctx, userID)
}
