package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
)

type IAnalyticsService interface {
	DashboardStats(ctx context.Context, token, businessID string) (*dto.DashboardStatsResponse, error)
	Trends(ctx context.Context, token, businessID, groupBy string) ([]dto.TrendPoint, error)
	InvalidateStats(ctx context.Context, businessID string)
}

var trendGroupings = map[string]bool{"day": true, "week": true, "month": true}

// analyticsService serves dashboard aggregates through a short-lived Redis
// read-through cache. Stats tolerate staleness up to the TTL; writes that
// must show immediately call InvalidateStats.
type analyticsService struct {
	backend *backend.Client
	rdb     *redis.Client
	ttl     time.Duration
	logger  logger.ILogger
}

func NewAnalyticsService(client *backend.Client, rdb *redis.Client, ttl time.Duration, log logger.ILogger) IAnalyticsService {
	return &analyticsService{
		backend: client,
		rdb:     rdb,
		ttl:     ttl,
		logger:  log,
	}
}

func statsCacheKey(businessID string) string {
	return fmt.Sprintf("dashboard_stats:%s", businessID)
}

func (s *analyticsService) DashboardStats(ctx context.Context, token, businessID string) (*dto.DashboardStatsResponse, error) {
	key := statsCacheKey(businessID)

	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var stats dto.DashboardStatsResponse
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
		// Corrupt cache entry, fall through to a fresh fetch.
		s.rdb.Del(ctx, key)
	}

	var stats dto.DashboardStatsResponse
	fn := fmt.Sprintf("get-dashboard-stats?business_id=%s", url.QueryEscape(businessID))
	if err := s.backend.Get(ctx, fn, token, &stats); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(&stats); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("AnalyticsService", "Failed to cache dashboard stats", map[string]interface{}{
				"business_id": businessID,
				"error":       err.Error(),
			})
		}
	}
	return &stats, nil
}

func trendsCacheKey(businessID, groupBy string) string {
	return fmt.Sprintf("analytics_trends:%s:%s", businessID, groupBy)
}

// Trends returns the engagement time series bucketed by day, week or month.
// Same read-through treatment as the dashboard stats.
func (s *analyticsService) Trends(ctx context.Context, token, businessID, groupBy string) ([]dto.TrendPoint, error) {
	if groupBy == "" {
		groupBy = "day"
	}
	if !trendGroupings[groupBy] {
		return nil, fmt.Errorf("unknown trend grouping %q", groupBy)
	}
	key := trendsCacheKey(businessID, groupBy)

	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var points []dto.TrendPoint
		if err := json.Unmarshal([]byte(cached), &points); err == nil {
			return points, nil
		}
		s.rdb.Del(ctx, key)
	}

	var points []dto.TrendPoint
	fn := fmt.Sprintf("get-business-analytics?business_id=%s&action=trends&group_by=%s", url.QueryEscape(businessID), groupBy)
	if err := s.backend.Get(ctx, fn, token, &points); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(points); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("AnalyticsService", "Failed to cache trends", map[string]interface{}{
				"business_id": businessID,
				"error":       err.Error(),
			})
		}
	}
	return points, nil
}

func (s *analyticsService) InvalidateStats(ctx context.Context, businessID string) {
	keys := []string{statsCacheKey(businessID)}
	for groupBy := range trendGroupings {
		keys = append(keys, trendsCacheKey(businessID, groupBy))
	}
	s.rdb.Del(ctx, keys...)
}
