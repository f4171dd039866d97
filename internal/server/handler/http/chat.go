package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// fallbackReply is returned when the model cannot be reached, so the
// chat surface degrades instead of erroring.
const fallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again later."

// ChatClient defines the chat operation required by the HTTP handler.
type ChatClient interface {
	Respond(ctx context.Context, message string) (string, error)
}

// ChatHandler proxies chat messages to the model.
type ChatHandler struct {
	ChatClient ChatClient
	Logger     *zap.Logger
}

// ChatRequest represents the JSON payload for a chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	reply, err := h.ChatClient.Respond(r.Context(), req.Message)
	if err != nil {
		h.Logger.Error("chat request failed", zap.Error(err))
		reply = fallbackReply
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response": reply,
	})
}
