package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key the Redis store writes.
const DefaultRedisPrefix = "changelogify:"

// RedisStore persists releases in Redis. Each release is a JSON string
// under <prefix>release:<id>; a sorted set <prefix>releases indexes them by
// creation time. Set members are "<seq>:<id>" with a zero-padded insertion
// sequence, so equal scores order by insertion.
type RedisStore struct {
	client *redis.Client
	prefix string

	mu     sync.RWMutex
	closed bool
}

// NewRedisStore creates a store over client. The store owns the client and
// closes it on Close.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// createScript writes a release and its index entry in one server-side
// step. The index is written first: if it fails nothing is stored, and a
// release key only ever exists together with its index member.
//
// KEYS[1] release key, KEYS[2] index; ARGV[1] JSON, ARGV[2] score,
// ARGV[3] index member. Returns 0 when the release already exists.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

func (s *RedisStore) releaseKey(id string) string { return s.prefix + "release:" + id }
func (s *RedisStore) indexKey() string            { return s.prefix + "releases" }
func (s *RedisStore) seqKey() string              { return s.prefix + "releases:seq" }

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, r *Release) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode release: %w", err)
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("allocate sequence: %w", err)
	}

	created, err := createScript.Run(ctx, s.client,
		[]string{s.releaseKey(r.ID), s.indexKey()},
		data,
		r.CreatedAt.UnixMicro(),
		fmt.Sprintf("%019d:%s", seq, r.ID),
	).Int()
	if err != nil {
		return fmt.Errorf("save release: %w", err)
	}
	if created == 0 {
		return ErrDuplicate
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	data, err := s.client.Get(ctx, s.releaseKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load release: %w", err)
	}

	var r Release
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &r, nil
}

// Latest implements Store.
func (s *RedisStore) Latest(ctx context.Context) (*Release, error) {
	list, err := s.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

// List implements Store. Filtering happens client-side after the index
// scan; changelogs are small.
func (s *RedisStore) List(ctx context.Context, f ListFilter) ([]*Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	members, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	if len(members) == 0 {
		return []*Release{}, nil
	}

	keys := make([]string, len(members))
	seqs := make([]int64, len(members))
	for i, m := range members {
		seqPart, id, ok := strings.Cut(m, ":")
		if !ok {
			return nil, fmt.Errorf("malformed index member %q", m)
		}
		seqs[i], _ = strconv.ParseInt(seqPart, 10, 64)
		keys[i] = s.releaseKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load releases: %w", err)
	}

	items := make([]stored, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r Release
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("decode release: %w", err)
		}
		items = append(items, stored{seq: seqs[i], release: &r})
	}

	// Scores are microseconds; re-sort on the full timestamp.
	newestFirst(items)
	return applyFilter(items, f), nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
