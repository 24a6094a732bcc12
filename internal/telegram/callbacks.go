package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "overseerr-approval-bot/internal/errors"
	"overseerr-approval-bot/internal/notify"
)

// handleCallback executes an approve/deny button press. The tracker's claim
// is the idempotency gate: unknown, already-resolved or concurrently claimed
// requests never reach the Overseerr API a second time.
func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	disposition, requestID, err := notify.ParseCallback(cb.Data)
	if err != nil {
		h.logger.Warn("unparseable callback data", "data", cb.Data, "error", err)
		h.answerCallback(cb.ID, "This button is no longer valid.", true)
		return
	}

	authorized, err := h.allow.IsAuthorizedUser(cb.From.ID)
	if err != nil {
		h.logger.Error("authorization check failed", "error", err, "user_id", cb.From.ID)
		h.answerCallback(cb.ID, apperrors.GetUserMessage(err), true)
		return
	}
	if !authorized {
		h.logger.Warn("unauthorized approve/deny attempt",
			"user_id", cb.From.ID, "request_id", requestID)
		h.answerCallback(cb.ID, apperrors.ErrNotAuthorized.UserMsg, true)
		return
	}

	notice, ok := h.tracker.Claim(requestID)
	if !ok {
		h.answerCallback(cb.ID, apperrors.ErrRequestNotPending.UserMsg, true)
		return
	}

	if disposition == notify.Approved {
		err = h.actions.Approve(ctx, requestID)
	} else {
		err = h.actions.Deny(ctx, requestID)
	}

	if err != nil {
		// The notice stays pending and the buttons stay live so the
		// action can be retried
		h.tracker.Abort(requestID)
		h.logger.Error("overseerr action failed",
			"error", err, "request_id", requestID, "action", disposition.String())
		h.answerCallback(cb.ID, apperrors.ErrOverseerrUnavailable.UserMsg, true)
		h.sendText(notice.ChatID, fmt.Sprintf(
			"Failed to %s *%s*. There might be an issue with Overseerr, please try again.",
			actionVerb(disposition), notice.Subject), tgbotapi.ModeMarkdown)
		return
	}

	h.tracker.Complete(requestID, disposition)
	notice.Disposition = disposition

	actor := actorName(cb.From)
	h.editNotice(notice, notify.FormatOutcome(notice, actor))
	h.answerCallback(cb.ID, fmt.Sprintf("Request %s.", disposition), false)

	h.logger.Info("request resolved",
		"request_id", requestID,
		"disposition", disposition.String(),
		"actor_id", cb.From.ID,
	)
}

// editNotice rewrites the dispatched message with the outcome text, dropping
// the inline keyboard.
func (h *Handler) editNotice(notice notify.Notice, text string) {
	var edit tgbotapi.Chattable
	if notice.HasPhoto {
		cfg := tgbotapi.NewEditMessageCaption(notice.ChatID, notice.MessageID, text)
		cfg.ParseMode = tgbotapi.ModeMarkdown
		edit = cfg
	} else {
		cfg := tgbotapi.NewEditMessageText(notice.ChatID, notice.MessageID, text)
		cfg.ParseMode = tgbotapi.ModeMarkdown
		edit = cfg
	}

	if _, err := h.api.Request(edit); err != nil {
		h.logger.Error("failed to edit notice message",
			"error", err, "chat_id", notice.ChatID, "message_id", notice.MessageID)
	}
}

func (h *Handler) answerCallback(callbackID, text string, alert bool) {
	var cfg tgbotapi.CallbackConfig
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	} else {
		cfg = tgbotapi.NewCallback(callbackID, text)
	}
	if _, err := h.api.Request(cfg); err != nil {
		h.logger.Error("failed to answer callback", "error", err)
	}
}

func actionVerb(d notify.Disposition) string {
	if d == notify.Denied {
		return "deny"
	}
	return "approve"
}

func actorName(user *tgbotapi.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.UserName != "" {
		return user.UserName
	}
	return strconv.FormatInt(user.ID, 10)
}
