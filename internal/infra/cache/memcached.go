package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/totegamma/admindata"
)

const memcachePrefix = "admindata:type:"

// memcached reads expirations above 30 days as unix timestamps.
const maxMemcachedTTL = 30 * 24 * time.Hour

// Memcached shares record types between server instances.
type Memcached struct {
	client  *memcache.Client
	ttl     time.Duration
	metrics *Metrics
}

func NewMemcached(client *memcache.Client, ttl time.Duration, metrics *Metrics) *Memcached {
	return &Memcached{
		client:  client,
		ttl:     ttl,
		metrics: metrics,
	}
}

func (m *Memcached) Get(ctx context.Context, id string) (admindata.RecordType, bool) {
	item, err := m.client.Get(memcachePrefix + id)
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.WarnContext(
				ctx, "memcached get failed",
				slog.String("error", err.Error()),
				slog.String("module", "cache"),
			)
		}
		m.metrics.observe("memcached", false)
		return admindata.RecordType{}, false
	}

	var t admindata.RecordType
	if err := json.Unmarshal(item.Value, &t); err != nil {
		m.metrics.observe("memcached", false)
		return admindata.RecordType{}, false
	}
	m.metrics.observe("memcached", true)
	return t, true
}

func (m *Memcached) Set(ctx context.Context, t admindata.RecordType) {
	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	err = m.client.Set(&memcache.Item{
		Key:        memcachePrefix + t.ID,
		Value:      b,
		Expiration: expiration(m.ttl),
	})
	if err != nil {
		slog.WarnContext(
			ctx, "memcached set failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}

func (m *Memcached) Delete(ctx context.Context, id string) {
	err := m.client.Delete(memcachePrefix + id)
	if err != nil && err != memcache.ErrCacheMiss {
		slog.WarnContext(
			ctx, "memcached delete failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}

func expiration(ttl time.Duration) int32 {
	if ttl > maxMemcachedTTL {
		ttl = maxMemcachedTTL
	}
	if ttl <= 0 {
		return 0
	}
	return int32(ttl / time.Second)
}
