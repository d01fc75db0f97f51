package caseclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// Chat sends a viva transcript to the backend and returns the assistant
// reply text. It satisfies the session controller's Chatter interface.
// The endpoint requires no credential.
func (c *Client) Chat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/viva/chat", map[string]interface{}{
		"conversationHistory": history,
	}, false)
	if err != nil {
		return "", err
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp, &out); err != nil || out.Response == "" {
		return "", fmt.Errorf("chat response missing text")
	}
	return out.Response, nil
}
