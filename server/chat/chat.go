// Package chat implements the turn-processing core: load history, build the
// windowed model input, invoke the model, append both records, persist.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/semaphore"

	"github.com/oncobrief/oncobrief/server/ai"
	cherrors "github.com/oncobrief/oncobrief/server/internal/errors"
	"github.com/oncobrief/oncobrief/store"
)

const (
	// historyWindow is the number of most recent stored records sent to the
	// model on each turn (the last 5 exchanges).
	historyWindow = 10

	// maxConcurrentCompletions caps in-flight model calls across all sessions.
	maxConcurrentCompletions = 8
)

// Result is the outcome of one chat turn.
type Result struct {
	Response  string
	SessionID string
}

// Service orchestrates chat turns against the store and the model provider.
type Service struct {
	store        *store.Store
	llm          ai.LLMService
	systemPrompt string
	logger       *slog.Logger

	completionSem *semaphore.Weighted

	// Per-session locks serialize the read-modify-write cycle within this
	// process so two concurrent turns on one session cannot clobber each
	// other. Entries are refcounted and evicted when the last turn on a
	// session finishes. Cross-process writers remain unsynchronized.
	mu           sync.Mutex
	sessionLocks map[string]*sessionLock
}

// sessionLock is a mutex with a waiter count, so the owning map entry can be
// removed once nobody holds or waits for it.
type sessionLock struct {
	sync.Mutex
	refs int
}

// NewService creates a chat service.
func NewService(st *store.Store, llm ai.LLMService, systemPrompt string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:         st,
		llm:           llm,
		systemPrompt:  systemPrompt,
		logger:        logger,
		completionSem: semaphore.NewWeighted(maxConcurrentCompletions),
		sessionLocks:  make(map[string]*sessionLock),
	}
}

// NewSessionID generates a fresh opaque session identifier.
func NewSessionID() string {
	return shortuuid.New()
}

// Complete processes one chat turn. An empty sessionID starts a new session.
func (s *Service) Complete(ctx context.Context, sessionID, message string) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, cherrors.InvalidArgument("message is empty")
	}
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	lock := s.lockSession(sessionID)
	defer s.unlockSession(sessionID, lock)

	history, err := s.store.LoadConversation(ctx, sessionID)
	if err != nil {
		return nil, cherrors.StorageFailed("failed to load conversation", err)
	}

	modelInput := buildModelMessages(history, s.systemPrompt)
	modelInput = append(modelInput, ai.Message{Role: store.RoleUser, Content: message})

	if err := s.completionSem.Acquire(ctx, 1); err != nil {
		return nil, cherrors.ContextCanceled(err)
	}
	response, err := s.llm.Chat(ctx, modelInput)
	s.completionSem.Release(1)
	if err != nil {
		return nil, cherrors.LLMUnavailable("model invocation failed", err)
	}

	// Both records of the turn share one timestamp.
	now := store.NowTimestamp()
	history = append(history,
		store.Message{Role: store.RoleUser, Content: message, Timestamp: now},
		store.Message{Role: store.RoleAssistant, Content: response, Timestamp: now},
	)

	if err := s.store.SaveConversation(ctx, sessionID, history); err != nil {
		return nil, cherrors.StorageFailed("failed to save conversation", err)
	}

	s.logger.Debug("chat turn completed",
		slog.String("session_id", sessionID),
		slog.Int("history_length", len(history)))

	return &Result{Response: response, SessionID: sessionID}, nil
}

// History returns the full stored history for a session. Unseen sessions
// yield an empty slice.
func (s *Service) History(ctx context.Context, sessionID string) ([]store.Message, error) {
	messages, err := s.store.LoadConversation(ctx, sessionID)
	if err != nil {
		return nil, cherrors.StorageFailed("failed to load conversation", err)
	}
	return messages, nil
}

func (s *Service) lockSession(sessionID string) *sessionLock {
	s.mu.Lock()
	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.sessionLocks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

func (s *Service) unlockSession(sessionID string, lock *sessionLock) {
	lock.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.sessionLocks, sessionID)
	}
	s.mu.Unlock()
}

// buildModelMessages converts the most recent stored records into the
// role-tagged sequence the model expects, with the system instruction
// first. Records with unrecognized roles are dropped.
func buildModelMessages(history []store.Message, systemPrompt string) []ai.Message {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		switch msg.Role {
		case store.RoleUser, store.RoleAssistant:
			messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
		}
	}
	return messages
}
