// Package localfile stores each session's conversation as a pretty-printed
// JSON array at <dir>/<session_id>.json.
package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/store"
)

type Driver struct {
	dir string
}

func NewDriver(profile *profile.Profile) (*Driver, error) {
	if profile.MemoryDir == "" {
		return nil, errors.New("memory directory is not configured")
	}
	if err := os.MkdirAll(profile.MemoryDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create memory directory %s", profile.MemoryDir)
	}
	return &Driver{dir: profile.MemoryDir}, nil
}

func (d *Driver) LoadConversation(_ context.Context, sessionID string) ([]store.Message, error) {
	path := filepath.Join(d.dir, store.ConversationObjectName(sessionID))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []store.Message{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read conversation file %s", path)
	}
	var messages []store.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, errors.Wrapf(err, "malformed conversation file %s", path)
	}
	return messages, nil
}

func (d *Driver) SaveConversation(_ context.Context, sessionID string, messages []store.Message) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create memory directory %s", d.dir)
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation")
	}
	path := filepath.Join(d.dir, store.ConversationObjectName(sessionID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write conversation file %s", path)
	}
	return nil
}

func (*Driver) Close() error {
	return nil
}
