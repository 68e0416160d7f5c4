package core

import (
	c "api/internal/cache"
	"api/internal/models"

	"go.uber.org/zap"
)

func NewCache(config models.CacheConfiguration) c.ICache {
	switch config.Type {
	case "redis":
		redisCache, err := c.NewRueidisCache(*config.Redis)
		if err != nil {
			zap.L().Fatal("Failed to connect to redis", zap.Error(err))
		}
		return redisCache
	case "memory":
		return c.NewMemoryCache()
	default:
		zap.L().Fatal("Unknown cache type", zap.String("type", config.Type))
		return nil
	}
}
