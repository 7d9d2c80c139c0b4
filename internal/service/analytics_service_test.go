package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lexcaraig/wheelbase-business/pkg/backend"
)

func TestDashboardStatsReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"total_orders":12,"pending_orders":3,"revenue_cents":450000}}`))
	}))
	defer ts.Close()

	svc := NewAnalyticsService(backend.NewClient(ts.URL, "anon"), rdb, 5*time.Minute, noopLogger{})
	ctx := context.Background()

	stats, err := svc.DashboardStats(ctx, "token", "biz-1")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if stats.TotalOrders != 12 || stats.RevenueCents != 450000 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("backend hits = %d, want 1", got)
	}

	// Second call is served from cache.
	if _, err := svc.DashboardStats(ctx, "token", "biz-1"); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("backend hits after cached read = %d, want 1", got)
	}

	// TTL expiry forces a refresh.
	mr.FastForward(6 * time.Minute)
	if _, err := svc.DashboardStats(ctx, "token", "biz-1"); err != nil {
		t.Fatalf("refetch after expiry: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 2 {
		t.Fatalf("backend hits after expiry = %d, want 2", got)
	}
}

func TestTrendsReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if got := r.URL.Query().Get("group_by"); got != "week" {
			t.Errorf("group_by = %q, want week", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"date":"2026-08-24","total":40,"profile_views":25,"product_views":10,"contact_clicks":5}]}`))
	}))
	defer ts.Close()

	svc := NewAnalyticsService(backend.NewClient(ts.URL, "anon"), rdb, time.Hour, noopLogger{})
	ctx := context.Background()

	points, err := svc.Trends(ctx, "token", "biz-1", "week")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if len(points) != 1 || points[0].Total != 40 || points[0].ProfileViews != 25 {
		t.Fatalf("points = %+v", points)
	}

	if _, err := svc.Trends(ctx, "token", "biz-1", "week"); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("backend hits = %d, want 1", got)
	}

	// Invalidation drops the trend buckets along with the stats.
	svc.InvalidateStats(ctx, "biz-1")
	if _, err := svc.Trends(ctx, "token", "biz-1", "week"); err != nil {
		t.Fatalf("fetch after invalidate: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 2 {
		t.Fatalf("backend hits after invalidate = %d, want 2", got)
	}
}

func TestTrendsRejectsUnknownGrouping(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewAnalyticsService(backend.NewClient("http://unreachable.invalid", "anon"), rdb, time.Hour, noopLogger{})
	if _, err := svc.Trends(context.Background(), "token", "biz-1", "hourly"); err == nil {
		t.Fatal("expected unknown grouping to be rejected")
	}
}

func TestInvalidateStatsDropsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"total_orders":1}}`))
	}))
	defer ts.Close()

	svc := NewAnalyticsService(backend.NewClient(ts.URL, "anon"), rdb, time.Hour, noopLogger{})
	ctx := context.Background()

	if _, err := svc.DashboardStats(ctx, "token", "biz-1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	svc.InvalidateStats(ctx, "biz-1")

	if _, err := svc.DashboardStats(ctx, "token", "biz-1"); err != nil {
		t.Fatalf("fetch after invalidate: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 2 {
		t.Fatalf("backend hits = %d, want 2", got)
	}
}
