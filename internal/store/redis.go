package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ignite/open-tracker/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	redisEventKeyPrefix = "tracking:event:"
	redisSentIndexKey   = "tracking:by_sent"
)

// recordOpenScript creates the event hash on first sight (with the
// unknown-recipient placeholder) and overwrites the open metadata either
// way. Running as a single script makes the upsert atomic on the server, so
// concurrent first opens cannot double-create or clobber sent_time.
var recordOpenScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('HSET', KEYS[1], 'id', ARGV[1], 'email', ARGV[2], 'sent_time', ARGV[3])
  redis.call('ZADD', KEYS[2], ARGV[4], ARGV[1])
end
redis.call('HSET', KEYS[1], 'opened', '1', 'open_time', ARGV[3], 'ip_address', ARGV[5], 'user_agent', ARGV[6])
return 1
`)

// registerScript pre-creates an unopened event, or refreshes the email on an
// already-known id without touching its open state.
var registerScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('HSET', KEYS[1], 'id', ARGV[1], 'sent_time', ARGV[3], 'opened', '0')
  redis.call('ZADD', KEYS[2], ARGV[4], ARGV[1])
end
redis.call('HSET', KEYS[1], 'email', ARGV[2])
return 1
`)

// RedisStore implements Store on Redis: one hash per event plus a sorted set
// indexing ids by sent time for the descending full scan. Meant for
// free-tier deployments that get a managed Redis but no disk.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis connects to a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) RecordOpen(ctx context.Context, id, ip, userAgent string) (domain.TrackingEvent, error) {
	now := time.Now().UTC()
	err := recordOpenScript.Run(ctx, s.client,
		[]string{redisEventKeyPrefix + id, redisSentIndexKey},
		id, domain.UnknownEmail, now.Format(time.RFC3339Nano), now.UnixMicro(), ip, userAgent,
	).Err()
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("record open: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Register(ctx context.Context, id, email string) (domain.TrackingEvent, error) {
	now := time.Now().UTC()
	err := registerScript.Run(ctx, s.client,
		[]string{redisEventKeyPrefix + id, redisSentIndexKey},
		id, email, now.Format(time.RFC3339Nano), now.UnixMicro(),
	).Err()
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("register send: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Get(ctx context.Context, id string) (domain.TrackingEvent, error) {
	fields, err := s.client.HGetAll(ctx, redisEventKeyPrefix+id).Result()
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("get tracking event: %w", err)
	}
	if len(fields) == 0 {
		return domain.TrackingEvent{}, ErrNotFound
	}
	return eventFromHash(id, fields)
}

func (s *RedisStore) GetAll(ctx context.Context) ([]domain.TrackingEvent, error) {
	ids, err := s.client.ZRevRange(ctx, redisSentIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}

	out := make([]domain.TrackingEvent, 0, len(ids))
	for _, id := range ids {
		evt, err := s.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}

func eventFromHash(id string, fields map[string]string) (domain.TrackingEvent, error) {
	evt := domain.TrackingEvent{
		ID:        id,
		Email:     fields["email"],
		IPAddress: fields["ip_address"],
		UserAgent: fields["user_agent"],
	}

	sentTime, err := time.Parse(time.RFC3339Nano, fields["sent_time"])
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("parse sent_time for %s: %w", id, err)
	}
	evt.SentTime = sentTime

	if opened, _ := strconv.ParseBool(fields["opened"]); opened {
		evt.Opened = true
		openTime, err := time.Parse(time.RFC3339Nano, fields["open_time"])
		if err != nil {
			return domain.TrackingEvent{}, fmt.Errorf("parse open_time for %s: %w", id, err)
		}
		evt.OpenTime = &openTime
	}

	return evt, nil
}
