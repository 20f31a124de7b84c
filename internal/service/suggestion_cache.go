package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache guarda sugerencias ya calculadas para no repetir la
// busqueda mientras el dataset no cambie. Es solo un atajo de lectura:
// nunca reemplaza la propagacion de errores del motor.
type SuggestionCache interface {
	Get(ctx context.Context, key string) (Suggestion, bool, error)
	Set(ctx context.Context, key string, s Suggestion, ttl time.Duration) error
}

type memorySuggestionCache struct {
	mu    sync.Mutex
	items map[string]cachedSuggestion
}

type cachedSuggestion struct {
	suggestion Suggestion
	expiresAt  time.Time
}

func NewMemorySuggestionCache() SuggestionCache {
	return &memorySuggestionCache{
		items: make(map[string]cachedSuggestion),
	}
}

func (c *memorySuggestionCache) Get(_ context.Context, key string) (Suggestion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return Suggestion{}, false, nil
	}
	if time.Now().UTC().After(item.expiresAt) {
		delete(c.items, key)
		return Suggestion{}, false, nil
	}
	return item.suggestion, true, nil
}

func (c *memorySuggestionCache) Set(_ context.Context, key string, s Suggestion, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cachedSuggestion{
		suggestion: s,
		expiresAt:  time.Now().UTC().Add(ttl),
	}
	return nil
}

type redisSuggestionCache struct {
	client *redis.Client
	prefix string
}

func NewRedisSuggestionCache(client *redis.Client) SuggestionCache {
	if client == nil {
		return nil
	}
	return &redisSuggestionCache{
		client: client,
		prefix: "suggestion:",
	}
}

func (c *redisSuggestionCache) Get(ctx context.Context, key string) (Suggestion, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return Suggestion{}, false, nil
	}
	if err != nil {
		return Suggestion{}, false, err
	}
	var s Suggestion
	if err := json.Unmarshal(raw, &s); err != nil {
		return Suggestion{}, false, err
	}
	return s, true, nil
}

func (c *redisSuggestionCache) Set(ctx context.Context, key string, s Suggestion, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
}
