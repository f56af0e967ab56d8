package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"

	"joint-diagnostics/backend/internal/diagnostics"
)

// RedisOptions configures the Redis connection backing the robot memory.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisSession serves the memory service from Redis. Every sensor path is a
// string key holding the latest value, written by the robot bridge.
type RedisSession struct {
	l      *slog.Logger
	client *redis.Client
	prefix string
}

// NewRedisSession creates a session on a new Redis client. It does not
// connect until a service is resolved.
func NewRedisSession(l *slog.Logger, opts RedisOptions) *RedisSession {
	return &RedisSession{
		l: l.With(slog.String("component", "redis-memory")),
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix: opts.KeyPrefix,
	}
}

// Service resolves the memory service, checking that Redis answers.
//
//nolint:ireturn // Satisfies diagnostics.Session
func (s *RedisSession) Service(ctx context.Context, name string) (diagnostics.ValueSource, error) {
	if err := checkService(name); err != nil {
		return nil, err
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach %s at %s: %w", name, s.client.Options().Addr, err)
	}

	s.l.Info("memory service resolved", slog.String("service", name), slog.String("addr", s.client.Options().Addr))

	return &RedisMemory{client: s.client, prefix: s.prefix}, nil
}

// Ping checks the Redis connection.
func (s *RedisSession) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisSession) Close() error {
	return s.client.Close()
}

// RedisMemory reads sensor values from Redis.
type RedisMemory struct {
	client redis.Cmdable
	prefix string
}

// FetchValues reads all keys with a single MGET. A missing, non numeric or
// non-finite value fails the whole batch.
func (m *RedisMemory) FetchValues(ctx context.Context, keys []string) ([]float64, error) {
	if len(keys) == 0 {
		return []float64{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = m.prefix + k
	}

	raw, err := m.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}

	values := make([]float64, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, keys[i])
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", keys[i], err)
		}

		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %s = %s", diagnostics.ErrInvalidSensorData, keys[i], s)
		}

		values = append(values, f)
	}

	return values, nil
}

// StoreValues writes key/value pairs, e.g. from a robot bridge or a test.
func (m *RedisMemory) StoreValues(ctx context.Context, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	pairs := make([]any, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, m.prefix+k, strconv.FormatFloat(v, 'f', -1, 64))
	}

	if err := m.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("mset: %w", err)
	}

	return nil
}
