package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "chees:session:"
	maxTxAttempts = 3
	defaultTTL    = 24 * time.Hour
)

// errNoChange lets an update callback leave the stored record untouched.
var errNoChange = errors.New("no change")

// Store keeps session records as JSON blobs in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore connects to redisURL (redis:// or rediss://) and pings it.
func NewStore(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session store")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStoreFromClient(rdb, ttl), nil
}

func NewStoreFromClient(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(id string) string { return keyPrefix + strings.TrimSpace(id) }

// Insert writes rec only if no record with the same ID exists.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, sessionKey(rec.ID), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if !ok {
		return fmt.Errorf("insert session %s: %w", rec.ID, ErrConflict)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Update loads the record under WATCH, lets fn mutate it and writes it back
// in a MULTI block, bumping Version. A concurrent writer aborts the
// transaction, which is retried a few times before ErrConflict. If fn returns
// errNoChange nothing is written and the loaded record is returned with
// changed=false.
func (s *Store) Update(ctx context.Context, id string, fn func(*Record) error) (rec *Record, changed bool, err error) {
	key := sessionKey(id)
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		changed = false
		err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			if err != nil {
				return err
			}
			var cur Record
			if err := json.Unmarshal(raw, &cur); err != nil {
				return fmt.Errorf("decode session %s: %w", id, err)
			}
			if ferr := fn(&cur); ferr != nil {
				if errors.Is(ferr, errNoChange) {
					rec = &cur
					return nil
				}
				return ferr
			}
			cur.Version++
			cur.UpdatedAt = time.Now()
			newRaw, err := json.Marshal(&cur)
			if err != nil {
				return fmt.Errorf("marshal session: %w", err)
			}
			pipe := tx.TxPipeline()
			pipe.Set(ctx, key, newRaw, s.ttl)
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
			rec = &cur
			changed = true
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return rec, changed, err
	}
	return nil, false, ErrConflict
}
