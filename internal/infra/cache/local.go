package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/totegamma/admindata"
)

// Local keeps record types in process memory.
type Local struct {
	cache   *gocache.Cache
	metrics *Metrics
}

func NewLocal(ttl time.Duration, metrics *Metrics) *Local {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Local{
		cache:   gocache.New(ttl, ttl+5*time.Minute),
		metrics: metrics,
	}
}

func (l *Local) Get(ctx context.Context, id string) (admindata.RecordType, bool) {
	v, found := l.cache.Get(id)
	l.metrics.observe("local", found)
	if !found {
		return admindata.RecordType{}, false
	}
	return v.(admindata.RecordType), true
}

func (l *Local) Set(ctx context.Context, t admindata.RecordType) {
	l.cache.SetDefault(t.ID, t)
}

func (l *Local) Delete(ctx context.Context, id string) {
	l.cache.Delete(id)
}
