package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"overseerr-approval-bot/internal/notify"
)

// dispatchTimeout bounds the Overseerr lookup plus Telegram send per webhook.
const dispatchTimeout = 30 * time.Second

// Dispatcher receives validated pending requests.
type Dispatcher interface {
	DispatchPending(ctx context.Context, req notify.PendingRequest) error
}

// Handler authenticates and parses inbound Overseerr webhooks.
type Handler struct {
	secret     []byte
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewHandler(secret string, dispatcher Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		secret:     []byte(secret),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// authorized checks the bearer token in constant time.
func (h *Handler) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), h.secret) == 1
}

// HandleWebhook processes POST /webhook. Authenticated, parseable calls are
// always answered 200, including notification types the bot does not act on
// and pending notifications whose delivery to Telegram fails.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.authorized(r) {
		h.logger.Warn("webhook call with missing or invalid bearer token", "remote_addr", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("malformed webhook body", "error", err)
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	h.logger.Info("webhook notification received", "type", payload.NotificationType)

	switch payload.NotificationType {
	case TypeTest:
		writeText(w, http.StatusOK, "Test notification received!")

	case TypeMediaPending:
		req, err := payload.PendingRequest()
		if err != nil {
			h.logger.Warn("invalid MEDIA_PENDING payload", "error", err)
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		// Delivery is best-effort: the sender gets a 200 even when the
		// chat is unreachable, and the webhook is not retried.
		ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
		defer cancel()
		if err := h.dispatcher.DispatchPending(ctx, req); err != nil {
			h.logger.Error("failed to dispatch request notice", "error", err, "request_id", req.RequestID)
		}
		writeText(w, http.StatusOK, "OK")

	default:
		writeText(w, http.StatusOK, "OK")
	}
}

// HandleHealth processes GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
