package activity

import (
	"path/filepath"
	"testing"

	"api/internal/configuration"
	"api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) IActivityLogger {
	t.Helper()
	client := NewFilesystemClient(models.ActivityConfiguration{
		Type: "filesystem",
		Filesystem: &models.FilesystemActivityConfiguration{
			Directory: filepath.Join(t.TempDir(), "activity"),
		},
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sendLogin(t *testing.T, client IActivityLogger, userID string, method string) {
	t.Helper()
	err := client.Send(models.Activity{
		Message: "User logged in",
		Object:  map[string]string{"id": userID},
		Filter: map[string]string{
			"action":      configuration.ActivityUserLoggedIn,
			"object_type": "user",
			"user_id":     userID,
			"method":      method,
		},
	})
	require.NoError(t, err)
}

func TestFilesystemClient_SendAndSearch(t *testing.T) {
	client := newTestClient(t)

	sendLogin(t, client, "user-1", "password")
	sendLogin(t, client, "user-1", "totp")
	sendLogin(t, client, "user-2", "password")

	t.Run("filter by user", func(t *testing.T) {
		results, err := client.Search(map[string][]string{
			"user_id": {"user-1"},
		})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("filter by user and method", func(t *testing.T) {
		results, err := client.Search(map[string][]string{
			"user_id": {"user-1"},
			"method":  {"totp"},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, configuration.ActivityUserLoggedIn, results[0]["action"])
		assert.Equal(t, "User logged in", results[0]["message"])
	})

	t.Run("disjunction over values", func(t *testing.T) {
		results, err := client.Search(map[string][]string{
			"user_id": {"user-1", "user-2"},
		})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("no match", func(t *testing.T) {
		results, err := client.Search(map[string][]string{
			"user_id": {"user-3"},
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestFilesystemClient_SearchReturnsObject(t *testing.T) {
	client := newTestClient(t)

	err := client.Send(models.Activity{
		Message: "MFA enabled",
		Object:  map[string]string{"id": "user-1", "email": "alice@example.com"},
		Filter: map[string]string{
			"action":      configuration.ActivityMFAEnabled,
			"object_type": "user",
			"user_id":     "user-1",
		},
	})
	require.NoError(t, err)

	results, err := client.Search(map[string][]string{
		"action": {configuration.ActivityMFAEnabled},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	object, ok := results[0]["object"].(map[string]any)
	require.True(t, ok, "expected object field to round-trip")
	assert.Equal(t, "alice@example.com", object["email"])
}

func TestFilesystemClient_CountByDay(t *testing.T) {
	client := newTestClient(t)

	sendLogin(t, client, "user-1", "password")
	sendLogin(t, client, "user-1", "totp")

	points, err := client.CountByDay(map[string][]string{
		"user_id": {"user-1"},
	}, 7)
	require.NoError(t, err)

	var total int
	for _, p := range points {
		total += p.Count
	}
	assert.Equal(t, 2, total)
}
