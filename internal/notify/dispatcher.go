package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"overseerr-approval-bot/internal/config"
	"overseerr-approval-bot/internal/overseerr"
)

const (
	approvePrefix = "approve_"
	denyPrefix    = "deny_"
)

// ApproveCallback returns the callback data carried by an Approve button.
func ApproveCallback(requestID int64) string {
	return approvePrefix + strconv.FormatInt(requestID, 10)
}

// DenyCallback returns the callback data carried by a Deny button.
func DenyCallback(requestID int64) string {
	return denyPrefix + strconv.FormatInt(requestID, 10)
}

// ParseCallback splits callback data into the intended disposition and the
// request id it targets.
func ParseCallback(data string) (Disposition, int64, error) {
	var d Disposition
	var raw string
	switch {
	case strings.HasPrefix(data, approvePrefix):
		d, raw = Approved, strings.TrimPrefix(data, approvePrefix)
	case strings.HasPrefix(data, denyPrefix):
		d, raw = Denied, strings.TrimPrefix(data, denyPrefix)
	default:
		return Pending, 0, fmt.Errorf("unrecognized callback data %q", data)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Pending, 0, fmt.Errorf("parse request id from callback %q: %w", data, err)
	}
	return d, id, nil
}

// Sender is the slice of the Telegram API the dispatcher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// MediaLookup fetches media details for message enrichment.
type MediaLookup interface {
	MediaDetails(ctx context.Context, mediaType string, tmdbID int64) (*overseerr.MediaDetails, error)
}

// Dispatcher turns a pending request into a Telegram message with Approve and
// Deny buttons and records the correlation in the tracker.
type Dispatcher struct {
	api      Sender
	media    MediaLookup
	tracker  *Tracker
	chatID   int64
	messages func() config.MessageOptions
	logger   *slog.Logger
}

func NewDispatcher(
	api Sender,
	media MediaLookup,
	tracker *Tracker,
	chatID int64,
	messages func() config.MessageOptions,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		api:      api,
		media:    media,
		tracker:  tracker,
		chatID:   chatID,
		messages: messages,
		logger:   logger,
	}
}

// DispatchPending sends the notification for req and tracks the resulting
// message. Detail lookup failures degrade to the webhook-supplied fields
// rather than dropping the notification.
func (d *Dispatcher) DispatchPending(ctx context.Context, req PendingRequest) error {
	opts := d.messages()

	details, err := d.media.MediaDetails(ctx, req.MediaType, req.TmdbID)
	if err != nil {
		d.logger.Warn("could not fetch media details, using webhook fields",
			"error", err, "media_type", req.MediaType, "tmdb_id", req.TmdbID)
		details = nil
	}

	text := FormatPending(req, details, opts)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", ApproveCallback(req.RequestID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Deny", DenyCallback(req.RequestID)),
		),
	)

	subject := req.Subject
	if details != nil {
		if t := details.DisplayTitle(req.MediaType); t != "" {
			subject = t
		}
	}

	sendPhoto := opts.ShowPoster && req.PosterURL != ""
	var sent tgbotapi.Message
	if sendPhoto {
		photo := tgbotapi.NewPhoto(d.chatID, tgbotapi.FileURL(req.PosterURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = keyboard
		sent, err = d.api.Send(photo)
	} else {
		msg := tgbotapi.NewMessage(d.chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = keyboard
		sent, err = d.api.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("send request notice: %w", err)
	}

	d.tracker.Track(Notice{
		RequestID: req.RequestID,
		MediaType: req.MediaType,
		Subject:   subject,
		Requester: req.Requester,
		ChatID:    sent.Chat.ID,
		MessageID: sent.MessageID,
		HasPhoto:  sendPhoto,
	})

	d.logger.Info("request notice dispatched",
		"request_id", req.RequestID,
		"subject", subject,
		"message_id", sent.MessageID,
	)
	return nil
}
