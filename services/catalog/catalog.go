package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"stayhub/config"
	catalogRepo "stayhub/database/repository/catalog"
	"stayhub/models"
	"stayhub/utils"
)

// DefaultCatalogService serves catalog reads through a short-lived Redis
// cache. Quotes are still recomputed per request; only the underlying rate
// documents are cached.
type DefaultCatalogService struct {
	Repo  catalogRepo.CatalogRepository
	Cache *redis.Client
}

// GetProperty retrieves a property, preferring the cache.
func (s *DefaultCatalogService) GetProperty(id string) (*models.Property, error) {
	var property models.Property
	if s.cacheGet(utils.CatalogCachePrefix+"property:"+id, &property) {
		return &property, nil
	}

	fetched, err := s.Repo.GetProperty(id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(utils.CatalogCachePrefix+"property:"+id, fetched)
	return fetched, nil
}

// GetRoomType retrieves a room type, preferring the cache.
func (s *DefaultCatalogService) GetRoomType(id string) (*models.RoomType, error) {
	var roomType models.RoomType
	if s.cacheGet(utils.CatalogCachePrefix+"roomtype:"+id, &roomType) {
		return &roomType, nil
	}

	fetched, err := s.Repo.GetRoomType(id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(utils.CatalogCachePrefix+"roomtype:"+id, fetched)
	return fetched, nil
}

// IsHoliday reports whether the given date is in the holiday calendar.
func (s *DefaultCatalogService) IsHoliday(date time.Time) (bool, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	key := utils.CatalogCachePrefix + "holiday:" + day.Format("2006-01-02")

	if s.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if val, err := s.Cache.Get(ctx, key).Result(); err == nil {
			return val == "1", nil
		}
	}

	holidays, err := s.Repo.ListHolidays(day, day.AddDate(0, 0, 1))
	if err != nil {
		return false, err
	}
	holiday := len(holidays) > 0

	if s.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		val := "0"
		if holiday {
			val = "1"
		}
		s.Cache.Set(ctx, key, val, config.CatalogCacheTTL())
	}
	return holiday, nil
}

func (s *DefaultCatalogService) cacheGet(key string, out interface{}) bool {
	if s.Cache == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := s.Cache.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), out) == nil
}

func (s *DefaultCatalogService) cacheSet(key string, val interface{}) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Cache.Set(ctx, key, data, config.CatalogCacheTTL())
}
