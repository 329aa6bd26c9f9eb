package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type prefixed struct {
	next   BytesCache
	prefix string
}

// WithPrefix namespaces every key of c under prefix.
func WithPrefix(c BytesCache, prefix string) BytesCache {
	if prefix == "" {
		return c
	}
	return &prefixed{next: c, prefix: prefix + ":"}
}

func (p *prefixed) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	return p.next.GetBytes(ctx, p.prefix+key)
}

func (p *prefixed) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.next.SetBytes(ctx, p.prefix+key, value, ttl)
}

// GetJSON loads key into dest. ok is false on a miss.
func GetJSON(ctx context.Context, c BytesCache, key string, dest any) (bool, error) {
	b, ok, err := c.GetBytes(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key for ttl.
func SetJSON(ctx context.Context, c BytesCache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.SetBytes(ctx, key, b, ttl)
}
