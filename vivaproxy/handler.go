package vivaproxy

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// Handler handles viva chat HTTP requests.
type Handler struct {
	client *Client
}

// NewHandler creates a new viva chat handler.
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes registers viva routes. The chat endpoint does not
// require authentication.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/viva/chat", h.Chat)
}

type chatRequest struct {
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type chatError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Chat handles one conversation turn.
// POST /api/viva/chat
func (h *Handler) Chat(c echo.Context) error {
	if !h.client.Configured() {
		return c.JSON(http.StatusServiceUnavailable, chatError{
			Message: "AI service is not configured.",
		})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil || len(req.ConversationHistory) == 0 {
		return c.JSON(http.StatusBadRequest, chatError{
			Message: "Invalid or empty conversation history provided.",
		})
	}
	for _, msg := range req.ConversationHistory {
		if msg.Role == "" || msg.Content == "" {
			return c.JSON(http.StatusBadRequest, chatError{
				Message: "Each message must have a valid role and content.",
			})
		}
	}

	text, err := h.client.Complete(c.Request().Context(), req.ConversationHistory)
	if err != nil {
		log.WithError(err).Error("viva chat turn failed")

		var ue *UpstreamError
		if errors.As(err, &ue) {
			if ue.StatusCode == http.StatusTooManyRequests {
				return c.JSON(http.StatusTooManyRequests, chatError{
					Message: "AI service rate limit exceeded.",
					Details: "Please wait a few minutes before trying again.",
				})
			}
			if ue.StatusCode >= 400 && ue.StatusCode < 500 {
				return c.JSON(ue.StatusCode, chatError{
					Message: "AI service request error.",
					Details: ue.Message,
				})
			}
		}
		return c.JSON(http.StatusInternalServerError, chatError{
			Message: "Server error during AI chat.",
			Details: "The AI service is temporarily unavailable. Please try again later.",
		})
	}

	return c.JSON(http.StatusOK, chatResponse{Response: text})
}
