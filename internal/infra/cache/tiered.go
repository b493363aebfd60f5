package cache

import (
	"context"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/usecase"
)

// Tiered reads through its tiers in order and back-fills the faster ones.
type Tiered struct {
	tiers []usecase.TypeCache
}

func NewTiered(tiers ...usecase.TypeCache) *Tiered {
	return &Tiered{tiers: tiers}
}

func (c *Tiered) Get(ctx context.Context, id string) (admindata.RecordType, bool) {
	for i, tier := range c.tiers {
		t, ok := tier.Get(ctx, id)
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			c.tiers[j].Set(ctx, t)
		}
		return t, true
	}
	return admindata.RecordType{}, false
}

func (c *Tiered) Set(ctx context.Context, t admindata.RecordType) {
	for _, tier := range c.tiers {
		tier.Set(ctx, t)
	}
}

func (c *Tiered) Delete(ctx context.Context, id string) {
	for _, tier := range c.tiers {
		tier.Delete(ctx, id)
	}
}
