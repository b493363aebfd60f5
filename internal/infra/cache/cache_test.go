package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/totegamma/admindata"
)

func TestLocalCountsHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetrics(prometheus.NewRegistry())
	local := NewLocal(time.Minute, metrics)

	if _, ok := local.Get(ctx, "t1"); ok {
		t.Fatalf("empty cache should miss")
	}
	local.Set(ctx, admindata.RecordType{ID: "t1", Name: "Brands"})
	got, ok := local.Get(ctx, "t1")
	if !ok || got.Name != "Brands" {
		t.Fatalf("expected hit got %+v", got)
	}
	local.Delete(ctx, "t1")
	if _, ok := local.Get(ctx, "t1"); ok {
		t.Fatalf("deleted entry should miss")
	}

	if hits := testutil.ToFloat64(metrics.hits.WithLabelValues("local")); hits != 1 {
		t.Fatalf("expected 1 hit got %v", hits)
	}
	if misses := testutil.ToFloat64(metrics.misses.WithLabelValues("local")); misses != 2 {
		t.Fatalf("expected 2 misses got %v", misses)
	}
}

func TestTieredBackfills(t *testing.T) {
	ctx := context.Background()
	front := NewLocal(time.Minute, nil)
	back := NewLocal(time.Minute, nil)
	tiered := NewTiered(front, back)

	back.Set(ctx, admindata.RecordType{ID: "t1", Name: "Brands"})
	if _, ok := tiered.Get(ctx, "t1"); !ok {
		t.Fatalf("expected hit from the back tier")
	}
	if _, ok := front.Get(ctx, "t1"); !ok {
		t.Fatalf("front tier should be back-filled")
	}

	tiered.Delete(ctx, "t1")
	if _, ok := back.Get(ctx, "t1"); ok {
		t.Fatalf("delete should reach every tier")
	}
}

func TestMemcachedExpiration(t *testing.T) {
	cases := map[time.Duration]int32{
		0:                    0,
		90 * time.Second:     90,
		24 * time.Hour:       86400,
		30 * 24 * time.Hour:  2592000,
		365 * 24 * time.Hour: 2592000,
	}
	for ttl, want := range cases {
		if got := expiration(ttl); got != want {
			t.Fatalf("expiration(%s) = %d, want %d", ttl, got, want)
		}
	}
}
