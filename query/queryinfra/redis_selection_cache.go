package queryinfra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/nido/query"
	"github.com/go-redis/redis/v8"
)

// RedisSelectionCache cache de selecciones de tools respaldado por Redis
type RedisSelectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ query.SelectionCache = (*RedisSelectionCache)(nil)

// NewRedisSelectionCache crea el cache de selecciones con el TTL configurado
func NewRedisSelectionCache(client *redis.Client, ttl time.Duration) *RedisSelectionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSelectionCache{
		client: client,
		ttl:    ttl,
	}
}

// Get devuelve la selección cacheada para la clave, o (nil, nil) si no existe
func (c *RedisSelectionCache) Get(ctx context.Context, key string) (*query.CachedSelection, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errx.Wrap(err, "failed to read cached selection", errx.TypeInternal)
	}

	var cached query.CachedSelection
	if err := json.Unmarshal(data, &cached); err != nil {
		// Entrada corrupta: tratarla como miss
		return nil, nil
	}
	return &cached, nil
}

// Set guarda la selección bajo la clave con el TTL del cache
func (c *RedisSelectionCache) Set(ctx context.Context, key string, selection *query.CachedSelection) error {
	data, err := json.Marshal(selection)
	if err != nil {
		return errx.Wrap(err, "failed to serialize selection", errx.TypeInternal)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errx.Wrap(err, "failed to cache selection", errx.TypeInternal)
	}
	return nil
}
