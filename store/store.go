package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/oncobrief/oncobrief/internal/profile"
)

// Store provides access to per-session conversation histories through the
// configured driver.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) LoadConversation(ctx context.Context, sessionID string) ([]Message, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	return s.driver.LoadConversation(ctx, sessionID)
}

func (s *Store) SaveConversation(ctx context.Context, sessionID string, messages []Message) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	return s.driver.SaveConversation(ctx, sessionID, messages)
}

// ConversationObjectName derives the file name or object key holding a
// session's history.
func ConversationObjectName(sessionID string) string {
	return sessionID + ".json"
}

// checkSessionID rejects identifiers that would escape the storage
// namespace when used as a file name or object key.
func checkSessionID(sessionID string) error {
	if sessionID == "" {
		return errors.New("session id is empty")
	}
	if strings.ContainsAny(sessionID, "/\\") || sessionID == "." || sessionID == ".." {
		return errors.Errorf("invalid session id %q", sessionID)
	}
	return nil
}
