package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSessions(t *testing.T) {
	cache := NewMemoryCache()

	t.Run("should store and resolve a session", func(t *testing.T) {
		require.NoError(t, cache.StoreSession("token-1", "user-1"))

		userID, found, err := cache.GetSession("token-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("should miss an unknown session", func(t *testing.T) {
		_, found, err := cache.GetSession("unknown")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should delete a session", func(t *testing.T) {
		require.NoError(t, cache.StoreSession("token-2", "user-2"))
		require.NoError(t, cache.DeleteSession("token-2"))

		_, found, err := cache.GetSession("token-2")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should tolerate deleting a missing session", func(t *testing.T) {
		assert.NoError(t, cache.DeleteSession("never-stored"))
	})
}

func TestMemoryCacheTOTPMarks(t *testing.T) {
	t.Run("should mark a fresh code exactly once", func(t *testing.T) {
		cache := NewMemoryCache()

		fresh, err := cache.MarkTOTPCodeUsed("user-1", "123456")
		require.NoError(t, err)
		assert.True(t, fresh)

		replay, err := cache.MarkTOTPCodeUsed("user-1", "123456")
		require.NoError(t, err)
		assert.False(t, replay, "second mark within the TTL is a replay")
	})

	t.Run("should scope marks per user", func(t *testing.T) {
		cache := NewMemoryCache()

		_, err := cache.MarkTOTPCodeUsed("user-1", "123456")
		require.NoError(t, err)

		fresh, err := cache.MarkTOTPCodeUsed("user-2", "123456")
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("should report mark state without setting it", func(t *testing.T) {
		cache := NewMemoryCache()

		used, err := cache.IsTOTPCodeUsed("user-1", "123456")
		require.NoError(t, err)
		assert.False(t, used)

		_, err = cache.MarkTOTPCodeUsed("user-1", "123456")
		require.NoError(t, err)

		used, err = cache.IsTOTPCodeUsed("user-1", "123456")
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("should admit exactly one concurrent mark", func(t *testing.T) {
		cache := NewMemoryCache()

		const attempts = 16
		var wg sync.WaitGroup
		results := make(chan bool, attempts)

		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fresh, err := cache.MarkTOTPCodeUsed("user-1", "654321")
				assert.NoError(t, err)
				results <- fresh
			}()
		}
		wg.Wait()
		close(results)

		var winners int
		for fresh := range results {
			if fresh {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestMemoryCacheSMSCodes(t *testing.T) {
	t.Run("should consume a staged code exactly once", func(t *testing.T) {
		cache := NewMemoryCache()
		require.NoError(t, cache.StoreSMSCode("user-1", "111222", time.Minute))

		ok, err := cache.ConsumeSMSCode("user-1", "111222")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = cache.ConsumeSMSCode("user-1", "111222")
		require.NoError(t, err)
		assert.False(t, ok, "consumed code must not verify again")
	})

	t.Run("should reject a wrong code without consuming", func(t *testing.T) {
		cache := NewMemoryCache()
		require.NoError(t, cache.StoreSMSCode("user-1", "111222", time.Minute))

		ok, err := cache.ConsumeSMSCode("user-1", "999999")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = cache.ConsumeSMSCode("user-1", "111222")
		require.NoError(t, err)
		assert.True(t, ok, "staged code survives a wrong attempt")
	})

	t.Run("should reject an expired code", func(t *testing.T) {
		cache := NewMemoryCache()
		require.NoError(t, cache.StoreSMSCode("user-1", "111222", -time.Second))

		ok, err := cache.ConsumeSMSCode("user-1", "111222")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should replace a previously staged code", func(t *testing.T) {
		cache := NewMemoryCache()
		require.NoError(t, cache.StoreSMSCode("user-1", "111222", time.Minute))
		require.NoError(t, cache.StoreSMSCode("user-1", "333444", time.Minute))

		ok, err := cache.ConsumeSMSCode("user-1", "111222")
		require.NoError(t, err)
		assert.False(t, ok, "replaced code must not verify")

		ok, err = cache.ConsumeSMSCode("user-1", "333444")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
