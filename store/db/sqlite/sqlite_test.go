package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/store"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	driver, err := NewDriver(context.Background(), &profile.Profile{
		DSN: filepath.Join(t.TempDir(), "oncobrief_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	return driver
}

func TestLoadUnknownSessionReturnsEmpty(t *testing.T) {
	driver := newTestDriver(t)
	messages, err := driver.LoadConversation(context.Background(), "never-seen")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	saved := []store.Message{
		{Role: store.RoleUser, Content: "Hello", Timestamp: "2026-08-23T10:00:00Z"},
		{Role: store.RoleAssistant, Content: "Hi there", Timestamp: "2026-08-23T10:00:00Z"},
	}
	require.NoError(t, driver.SaveConversation(ctx, "abc123", saved))

	loaded, err := driver.LoadConversation(ctx, "abc123")
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

func TestSaveOverwritesExistingHistory(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	first := []store.Message{{Role: store.RoleUser, Content: "one", Timestamp: "2026-08-23T10:00:00Z"}}
	require.NoError(t, driver.SaveConversation(ctx, "abc123", first))

	second := append(first, store.Message{Role: store.RoleAssistant, Content: "two", Timestamp: "2026-08-23T10:00:00Z"})
	require.NoError(t, driver.SaveConversation(ctx, "abc123", second))

	loaded, err := driver.LoadConversation(ctx, "abc123")
	require.NoError(t, err)
	require.Equal(t, second, loaded)
}

func TestSessionsAreIndependent(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	require.NoError(t, driver.SaveConversation(ctx, "a", []store.Message{{Role: store.RoleUser, Content: "for a", Timestamp: "2026-08-23T10:00:00Z"}}))
	require.NoError(t, driver.SaveConversation(ctx, "b", []store.Message{{Role: store.RoleUser, Content: "for b", Timestamp: "2026-08-23T10:00:00Z"}}))

	loaded, err := driver.LoadConversation(ctx, "a")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "for a", loaded[0].Content)
}
