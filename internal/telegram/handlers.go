package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"overseerr-approval-bot/internal/allowlist"
	"overseerr-approval-bot/internal/auth"
	"overseerr-approval-bot/internal/config"
	apperrors "overseerr-approval-bot/internal/errors"
	"overseerr-approval-bot/internal/notify"
)

// BotAPI is the slice of tgbotapi.BotAPI the handler uses, split out so tests
// can substitute a fake.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// RequestActions is the approve/deny surface of the Overseerr client.
type RequestActions interface {
	Approve(ctx context.Context, requestID int64) error
	Deny(ctx context.Context, requestID int64) error
}

// Handler processes Telegram updates
type Handler struct {
	api      BotAPI
	allow    allowlist.Store
	creds    *auth.Credentials
	throttle *auth.Throttle
	actions  RequestActions
	tracker  *notify.Tracker
	cfg      *config.Config
	logger   *slog.Logger
	commands map[string]route
}

// NewHandler creates a new update handler
func NewHandler(
	allow allowlist.Store,
	creds *auth.Credentials,
	throttle *auth.Throttle,
	actions RequestActions,
	tracker *notify.Tracker,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		allow:    allow,
		creds:    creds,
		throttle: throttle,
		actions:  actions,
		tracker:  tracker,
		cfg:      cfg,
		logger:   logger,
	}
	h.commands = h.routes()
	return h
}

// HandleUpdate processes a single update. A panicking handler is logged and
// swallowed so one bad update never takes down the bot.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if err := recover(); err != nil {
			h.logger.Error("panic while handling update", "error", err, "update_id", update.UpdateID)
		}
	}()

	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil && update.Message.IsCommand() {
		h.dispatch(ctx, update.Message)
	}
}

func (h *Handler) handleStart(_ context.Context, msg *tgbotapi.Message) {
	h.reply(msg,
		"This bot posts pending Overseerr requests and lets authorized users approve or deny them.\n\n"+
			"Use /help for available commands.")
}

func (h *Handler) handleHelp(_ context.Context, msg *tgbotapi.Message) {
	h.reply(msg,
		"Commands:\n"+
			"/login <password> - become an admin (private chat)\n"+
			"/logout - give up admin or user rights\n"+
			"/generatehash <password> - create a password hash (private chat)\n"+
			"/adduser <user_id> - allow a user to approve/deny (admin)\n"+
			"/add - reply to a user's message to allow them (admin)\n"+
			"/removeuser <user_id> - revoke a user (admin)\n"+
			"/listusers, /listadmins - show the allowlist (admin)\n"+
			"/reloadconfig, /configstatus - message format settings (admin)\n"+
			"/health - check the bot is alive")
}

func (h *Handler) handleHealth(_ context.Context, msg *tgbotapi.Message) {
	h.reply(msg, "Bot is running and healthy!")
}

func (h *Handler) handleGenerateHash(_ context.Context, msg *tgbotapi.Message) {
	password := strings.TrimSpace(msg.CommandArguments())
	if password == "" {
		h.reply(msg, "Usage: /generatehash <your-password>")
		return
	}

	hash, err := auth.GenerateHash(password)
	if err != nil {
		h.logger.Error("failed to generate password hash", "error", err)
		h.reply(msg, "Could not generate a hash, please try again.")
		return
	}

	h.replyMarkdown(msg,
		"Your secure password hash is:\n\n"+
			"`"+hash+"`\n\n"+
			"Copy this entire hash and set it as the admin password hash in the bot configuration, then restart it.")
}

func (h *Handler) handleLogin(_ context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	// The throttle gate comes before any credential work so a locked-out
	// user cannot keep guessing
	allowed, remaining := h.throttle.Allowed(userID)
	if !allowed {
		h.reply(msg, fmt.Sprintf(
			"Too many failed login attempts. Please try again in %s.",
			remaining.Round(time.Second)))
		return
	}

	if !h.creds.Configured() {
		h.reply(msg, apperrors.ErrNoCredential.UserMsg)
		return
	}

	password := strings.TrimSpace(msg.CommandArguments())
	if !h.creds.Verify(password) {
		if locked := h.throttle.RecordFailure(userID); locked {
			h.logger.Warn("login throttle engaged", "user_id", userID)
			h.reply(msg, "Too many failed login attempts. Please try again later.")
			return
		}
		h.reply(msg, apperrors.ErrBadPassword.UserMsg)
		return
	}

	h.throttle.RecordSuccess(userID)

	if err := h.allow.AddAdmin(h.memberFrom(msg.From, userID)); err != nil {
		h.logger.Error("failed to persist admin", "error", err, "user_id", userID)
		h.reply(msg, "Login succeeded but saving admin rights failed. Please try again.")
		return
	}

	h.logger.Info("admin login", "user_id", userID)
	h.reply(msg, "You are now an admin! You can now use admin commands in the group channel.")
}

func (h *Handler) handleLogout(_ context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	isAdmin, err := h.allow.IsAdmin(userID)
	if err == nil && isAdmin {
		if err := h.allow.RemoveAdmin(userID); err != nil {
			h.logger.Error("failed to remove admin", "error", err, "user_id", userID)
			h.reply(msg, "Logout failed, please try again.")
			return
		}
		h.reply(msg, "You have been logged out as admin.")
		return
	}

	isUser, err := h.allow.IsUser(userID)
	if err == nil && isUser {
		if err := h.allow.RemoveUser(userID); err != nil {
			h.logger.Error("failed to remove user", "error", err, "user_id", userID)
			h.reply(msg, "Logout failed, please try again.")
			return
		}
		h.reply(msg, "You have been logged out as user.")
		return
	}

	h.reply(msg, "You are not logged in.")
}

func (h *Handler) handleAddByReply(_ context.Context, msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		h.reply(msg, "Usage: Reply to a user's message with the /add command to add them.")
		return
	}

	target := msg.ReplyToMessage.From
	name := target.FirstName
	if name == "" {
		name = target.UserName
	}

	already, err := h.allow.IsUser(target.ID)
	if err == nil && already {
		h.reply(msg, fmt.Sprintf("User %s is already an authorized user.", name))
		return
	}

	if err := h.allow.AddUser(allowlist.Member{
		UserID:  target.ID,
		Name:    name,
		AddedAt: time.Now().UTC(),
		AddedBy: msg.From.ID,
	}); err != nil {
		h.logger.Error("failed to add user", "error", err, "user_id", target.ID)
		h.reply(msg, "Could not add the user, please try again.")
		return
	}

	h.reply(msg, fmt.Sprintf("User %s (%d) has been added.", name, target.ID))
}

func (h *Handler) handleAddUser(_ context.Context, msg *tgbotapi.Message) {
	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		h.reply(msg, "Usage: /adduser <user_id>")
		return
	}

	if err := h.allow.AddUser(allowlist.Member{
		UserID:  id,
		AddedAt: time.Now().UTC(),
		AddedBy: msg.From.ID,
	}); err != nil {
		h.logger.Error("failed to add user", "error", err, "user_id", id)
		h.reply(msg, "Could not add the user, please try again.")
		return
	}

	h.reply(msg, fmt.Sprintf("User %d added.", id))
}

func (h *Handler) handleRemoveUser(_ context.Context, msg *tgbotapi.Message) {
	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		h.reply(msg, "Usage: /removeuser <user_id>")
		return
	}

	present, err := h.allow.IsUser(id)
	if err != nil {
		h.logger.Error("failed to check user", "error", err, "user_id", id)
		h.reply(msg, "Could not remove the user, please try again.")
		return
	}
	if !present {
		h.reply(msg, "User not found.")
		return
	}

	if err := h.allow.RemoveUser(id); err != nil {
		h.logger.Error("failed to remove user", "error", err, "user_id", id)
		h.reply(msg, "Could not remove the user, please try again.")
		return
	}

	h.reply(msg, fmt.Sprintf("User %d removed.", id))
}

func (h *Handler) handleListUsers(_ context.Context, msg *tgbotapi.Message) {
	members, err := h.allow.ListUsers()
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.reply(msg, "Could not list users, please try again.")
		return
	}
	h.reply(msg, "Users: "+formatMembers(members))
}

func (h *Handler) handleListAdmins(_ context.Context, msg *tgbotapi.Message) {
	members, err := h.allow.ListAdmins()
	if err != nil {
		h.logger.Error("failed to list admins", "error", err)
		h.reply(msg, "Could not list admins, please try again.")
		return
	}
	h.reply(msg, "Admins: "+formatMembers(members))
}

func (h *Handler) handleReloadConfig(_ context.Context, msg *tgbotapi.Message) {
	if _, err := h.cfg.ReloadMessages(); err != nil {
		h.reply(msg, fmt.Sprintf("Error reloading configuration: %v", err))
		return
	}
	h.reply(msg, "Message configuration reloaded successfully!")
}

func (h *Handler) handleConfigStatus(_ context.Context, msg *tgbotapi.Message) {
	opts := h.cfg.Messages()
	file := h.cfg.ConfigFile()
	if file == "" {
		file = "(environment only)"
	}
	h.reply(msg, fmt.Sprintf(
		"Configuration status:\n"+
			"Poster: %t\n"+
			"Year in title: %t\n"+
			"Synopsis: %t (max %d chars)\n"+
			"Cast: %t (max %d)\n"+
			"Crew: %t (max %d)\n"+
			"Rating: %t\n"+
			"Links: %t\n"+
			"Config file: %s",
		opts.ShowPoster, opts.ShowYear, opts.ShowSynopsis, opts.SynopsisMaxLength,
		opts.ShowCast, opts.CastMaxItems, opts.ShowCrew, opts.CrewMaxItems,
		opts.ShowRating, opts.ShowLinks, file))
}

func (h *Handler) memberFrom(user *tgbotapi.User, addedBy int64) allowlist.Member {
	name := user.FirstName
	if name == "" {
		name = user.UserName
	}
	return allowlist.Member{
		UserID:  user.ID,
		Name:    name,
		AddedAt: time.Now().UTC(),
		AddedBy: addedBy,
	}
}

func formatMembers(members []allowlist.Member) string {
	if len(members) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(members))
	for _, m := range members {
		if m.Name != "" {
			parts = append(parts, fmt.Sprintf("%d (%s)", m.UserID, m.Name))
		} else {
			parts = append(parts, strconv.FormatInt(m.UserID, 10))
		}
	}
	return strings.Join(parts, ", ")
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	h.sendText(msg.Chat.ID, text, "")
}

func (h *Handler) replyMarkdown(msg *tgbotapi.Message, text string) {
	h.sendText(msg.Chat.ID, text, tgbotapi.ModeMarkdown)
}

func (h *Handler) sendText(chatID int64, text, parseMode string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("failed to send message", "error", err, "chat_id", chatID)
	}
}
