package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "overseerr-approval-bot/internal/errors"
)

// role is the minimum authorization a command demands.
type role int

const (
	// roleNone commands are open to anyone (or do their own checking,
	// like /login behind the throttle)
	roleNone role = iota
	// roleUser commands need allowlist membership, admin or user
	roleUser
	// roleAdmin commands need admin membership
	roleAdmin
)

type route struct {
	handler     func(ctx context.Context, msg *tgbotapi.Message)
	role        role
	privateOnly bool
}

func (h *Handler) routes() map[string]route {
	return map[string]route{
		"start":        {handler: h.handleStart},
		"help":         {handler: h.handleHelp},
		"health":       {handler: h.handleHealth},
		"generatehash": {handler: h.handleGenerateHash, privateOnly: true},
		"login":        {handler: h.handleLogin, privateOnly: true},
		"logout":       {handler: h.handleLogout},
		"add":          {handler: h.handleAddByReply, role: roleAdmin},
		"adduser":      {handler: h.handleAddUser, role: roleAdmin},
		"removeuser":   {handler: h.handleRemoveUser, role: roleAdmin},
		"listusers":    {handler: h.handleListUsers, role: roleAdmin},
		"listadmins":   {handler: h.handleListAdmins, role: roleAdmin},
		"reloadconfig": {handler: h.handleReloadConfig, role: roleAdmin},
		"configstatus": {handler: h.handleConfigStatus, role: roleAdmin},
	}
}

// dispatch routes a command message, enforcing context restrictions and
// authorization before the handler runs. Denials are plain replies and are
// never penalized; only failed logins feed the throttle.
func (h *Handler) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	r, ok := h.commands[msg.Command()]
	if !ok {
		if msg.Chat.IsPrivate() {
			h.reply(msg, "Unknown command. Use /help for available commands.")
		}
		return
	}

	if r.privateOnly && !msg.Chat.IsPrivate() {
		h.reply(msg, apperrors.ErrPrivateOnly.UserMsg)
		return
	}

	if msg.From == nil {
		return
	}

	allowed, err := h.authorize(msg.From.ID, r.role)
	if err != nil {
		h.logger.Error("authorization check failed", "error", err, "user_id", msg.From.ID)
		h.reply(msg, apperrors.GetUserMessage(err))
		return
	}
	if !allowed {
		h.logger.Warn("unauthorized command attempt",
			"command", msg.Command(), "user_id", msg.From.ID)
		denial := apperrors.ErrAdminOnly
		if r.role == roleUser {
			denial = apperrors.ErrNotAuthorized
		}
		h.reply(msg, denial.UserMsg)
		return
	}

	r.handler(ctx, msg)
}

func (h *Handler) authorize(userID int64, required role) (bool, error) {
	switch required {
	case roleNone:
		return true, nil
	case roleAdmin:
		return h.allow.IsAdmin(userID)
	default:
		return h.allow.IsAuthorizedUser(userID)
	}
}
