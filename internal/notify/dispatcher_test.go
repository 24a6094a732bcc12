package notify

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overseerr-approval-bot/internal/config"
	"overseerr-approval-bot/internal/overseerr"
)

type fakeSender struct {
	sent    []tgbotapi.Chattable
	nextID  int
	sendErr error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{
		MessageID: f.nextID,
		Chat:      &tgbotapi.Chat{ID: -100},
	}, nil
}

type fakeLookup struct {
	details *overseerr.MediaDetails
	err     error
}

func (f *fakeLookup) MediaDetails(_ context.Context, _ string, _ int64) (*overseerr.MediaDetails, error) {
	return f.details, f.err
}

func newTestDispatcher(sender *fakeSender, lookup *fakeLookup) (*Dispatcher, *Tracker) {
	tracker := NewTracker()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	d := NewDispatcher(sender, lookup, tracker, -100,
		func() config.MessageOptions { return defaultOpts() }, logger)
	return d, tracker
}

func TestDispatchPendingTracksNotice(t *testing.T) {
	sender := &fakeSender{}
	lookup := &fakeLookup{details: &overseerr.MediaDetails{Title: "Movie X", ReleaseDate: "2024-03-01"}}
	d, tracker := newTestDispatcher(sender, lookup)

	req := PendingRequest{RequestID: 101, MediaType: "movie", TmdbID: 101, Subject: "Movie X", Requester: "alice"}
	require.NoError(t, d.DispatchPending(context.Background(), req))

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Contains(t, msg.Text, "Movie X")

	// Buttons carry the request identifier as callback data
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 1)
	require.Len(t, keyboard.InlineKeyboard[0], 2)
	assert.Equal(t, "approve_101", *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "deny_101", *keyboard.InlineKeyboard[0][1].CallbackData)

	notice, ok := tracker.Get(101)
	require.True(t, ok)
	assert.Equal(t, Pending, notice.Disposition)
	assert.Equal(t, int64(-100), notice.ChatID)
	assert.Equal(t, 1, notice.MessageID)
	assert.False(t, notice.HasPhoto)
}

func TestDispatchPendingSendsPhotoWhenPosterAvailable(t *testing.T) {
	sender := &fakeSender{}
	d, tracker := newTestDispatcher(sender, &fakeLookup{err: errors.New("overseerr down")})

	req := PendingRequest{
		RequestID: 202,
		MediaType: "tv",
		TmdbID:    202,
		Subject:   "Show Y",
		PosterURL: "https://img.example.net/poster.jpg",
	}
	require.NoError(t, d.DispatchPending(context.Background(), req))

	require.Len(t, sender.sent, 1)
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Contains(t, photo.Caption, "Show Y")

	notice, ok := tracker.Get(202)
	require.True(t, ok)
	assert.True(t, notice.HasPhoto)
}

func TestDispatchPendingSendFailure(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("telegram unreachable")}
	d, tracker := newTestDispatcher(sender, &fakeLookup{})

	err := d.DispatchPending(context.Background(), PendingRequest{RequestID: 303, MediaType: "movie"})
	assert.Error(t, err)
	assert.Equal(t, 0, tracker.Len())
}

func TestDispatchPendingDetailsFailureStillDispatches(t *testing.T) {
	sender := &fakeSender{}
	d, tracker := newTestDispatcher(sender, &fakeLookup{err: errors.New("timeout")})

	req := PendingRequest{RequestID: 404, MediaType: "movie", TmdbID: 404, Subject: "Fallback Title"}
	require.NoError(t, d.DispatchPending(context.Background(), req))

	require.Len(t, sender.sent, 1)
	notice, ok := tracker.Get(404)
	require.True(t, ok)
	assert.Equal(t, "Fallback Title", notice.Subject)
}
