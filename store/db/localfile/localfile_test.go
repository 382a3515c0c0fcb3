package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/store"
)

func newTestDriver(t *testing.T) (*Driver, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "memory")
	driver, err := NewDriver(&profile.Profile{MemoryDir: dir})
	require.NoError(t, err)
	return driver, dir
}

func TestLoadUnknownSessionReturnsEmpty(t *testing.T) {
	driver, _ := newTestDriver(t)
	messages, err := driver.LoadConversation(context.Background(), "never-seen")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	driver, _ := newTestDriver(t)
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

func TestSaveWritesPrettyPrintedJSON(t *testing.T) {
	driver, dir := newTestDriver(t)
	ctx := context.Background()

	require.NoError(t, driver.SaveConversation(ctx, "abc123", []store.Message{
		{Role: store.RoleUser, Content: "Hello", Timestamp: "2026-08-23T10:00:00Z"},
	}))

	data, err := os.ReadFile(filepath.Join(dir, "abc123.json"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "[\n  {"))

	var messages []store.Message
	require.NoError(t, json.Unmarshal(data, &messages))
	require.Len(t, messages, 1)
}

func TestSaveRecreatesMissingDirectory(t *testing.T) {
	driver, dir := newTestDriver(t)
	require.NoError(t, os.RemoveAll(dir))

	err := driver.SaveConversation(context.Background(), "abc123", []store.Message{})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "abc123.json"))
}

func TestLoadMalformedFileFails(t *testing.T) {
	driver, dir := newTestDriver(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := driver.LoadConversation(context.Background(), "bad")
	require.Error(t, err)
}
