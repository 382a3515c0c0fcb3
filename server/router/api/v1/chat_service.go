package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oncobrief/oncobrief/server/internal/errors"
	"github.com/oncobrief/oncobrief/server/internal/observability"
	"github.com/oncobrief/oncobrief/store"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type conversationResponse struct {
	SessionID string          `json:"session_id"`
	Messages  []store.Message `json:"messages"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// handleChat processes one chat turn.
// POST /chat
func (s *APIV1Service) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
	}

	reqCtx := observability.NewRequestContext(s.logger, req.SessionID)
	result, err := s.ChatService.Complete(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeInvalidArgument) {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		}
		reqCtx.Error("chat turn failed", err,
			slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, errors.ErrCodeLLMUnavailable))),
			slog.Int(observability.LogFieldMessageLen, len(req.Message)))
		return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "Internal Server Error: " + err.Error()})
	}

	reqCtx.Info("chat turn completed",
		slog.String(observability.LogFieldSessionID, result.SessionID),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	return c.JSON(http.StatusOK, chatResponse{
		Response:  result.Response,
		SessionID: result.SessionID,
	})
}

// getConversation returns the full stored history of a session.
// GET /conversation/:session_id
func (s *APIV1Service) getConversation(c echo.Context) error {
	sessionID := c.Param("session_id")

	messages, err := s.ChatService.History(c.Request().Context(), sessionID)
	if err != nil {
		reqCtx := observability.NewRequestContext(s.logger, sessionID)
		reqCtx.Error("failed to load conversation", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
	}
	if messages == nil {
		messages = []store.Message{}
	}

	return c.JSON(http.StatusOK, conversationResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}
