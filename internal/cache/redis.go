package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"api/internal/configuration"
	"api/internal/models"

	"github.com/redis/rueidis"
)

// RueidisCache is the Redis-backed ICache used in multi-instance
// deployments. Conditional operations rely on SET NX and single-key DEL for
// atomicity.
type RueidisCache struct {
	client rueidis.Client
}

func NewRueidisCache(config models.RedisCacheConfiguration) (*RueidisCache, error) {
	clientOption := rueidis.ClientOption{
		InitAddress: config.Hosts,
		Password:    config.Password,
	}

	if config.TLSEnabled {
		clientOption.TLSConfig = &tls.Config{
			ServerName: config.TLSServerName,
			MinVersion: tls.VersionTLS12,
		}
	}

	client, err := rueidis.NewClient(clientOption)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RueidisCache{client: client}, nil
}

func (r *RueidisCache) StoreSession(sessionID string, userID string) error {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheSessionKey, sessionID)
	return r.client.Do(ctx, r.client.B().Set().Key(key).Value(userID).Build()).Error()
}

func (r *RueidisCache) GetSession(sessionID string) (string, bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheSessionKey, sessionID)

	userID, err := r.client.Do(ctx, r.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return userID, true, nil
}

func (r *RueidisCache) DeleteSession(sessionID string) error {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheSessionKey, sessionID)
	return r.client.Do(ctx, r.client.B().Del().Key(key).Build()).Error()
}

func (r *RueidisCache) MarkTOTPCodeUsed(userID string, code string) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheTOTPUsedKey, userID, code)

	// SET NX EX: OK if set, RedisNil if the code was already marked.
	err := r.client.Do(
		ctx,
		r.client.B().Set().Key(key).Value("1").Nx().ExSeconds(int64(configuration.TOTPCodeTTL)).Build(),
	).Error()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *RueidisCache) IsTOTPCodeUsed(userID string, code string) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheTOTPUsedKey, userID, code)

	result, err := r.client.Do(ctx, r.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

func (r *RueidisCache) StoreSMSCode(userID string, code string, ttl time.Duration) error {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheSMSCodeKey, userID)
	return r.client.Do(
		ctx,
		r.client.B().Set().Key(key).Value(code).ExSeconds(int64(ttl.Seconds())).Build(),
	).Error()
}

func (r *RueidisCache) ConsumeSMSCode(userID string, code string) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf(configuration.CacheSMSCodeKey, userID)

	staged, err := r.client.Do(ctx, r.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}
	if staged != code {
		return false, nil
	}

	deleted, err := r.client.Do(ctx, r.client.B().Del().Key(key).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	// A concurrent consumer may have deleted the key first; only the caller
	// whose DEL removed it wins.
	return deleted > 0, nil
}

func (r *RueidisCache) Close() error {
	r.client.Close()
	return nil
}
