package webhook

import (
	"bytes"
	"fmt"
	"strconv"

	"overseerr-approval-bot/internal/notify"
)

// Overseerr notification types this service distinguishes. Anything else is
// acknowledged and dropped.
const (
	TypeMediaPending = "MEDIA_PENDING"
	TypeTest         = "TEST_NOTIFICATION"
)

// flexInt tolerates Overseerr emitting ids as either JSON numbers or strings,
// which varies with the template version. Zero means absent.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse id %q: %w", data, err)
	}
	*f = flexInt(n)
	return nil
}

// Payload mirrors the Overseerr webhook body.
type Payload struct {
	NotificationType string          `json:"notification_type"`
	Subject          string          `json:"subject"`
	Message          string          `json:"message"`
	Image            string          `json:"image"`
	Media            *PayloadMedia   `json:"media"`
	Request          *PayloadRequest `json:"request"`
}

type PayloadMedia struct {
	MediaType string  `json:"media_type"`
	TmdbID    flexInt `json:"tmdbId"`
}

type PayloadRequest struct {
	RequestID           flexInt `json:"request_id"`
	RequestedByUsername string  `json:"requestedBy_username"`
	RequestedBy         struct {
		Username string `json:"username"`
	} `json:"requestedBy"`
}

func (r *PayloadRequest) requester() string {
	if r.RequestedByUsername != "" {
		return r.RequestedByUsername
	}
	return r.RequestedBy.Username
}

// PendingRequest validates a MEDIA_PENDING payload and converts it into the
// dispatcher's input. The request identifier falls back to the TMDB id when
// Overseerr omits it; the requester falls back to a placeholder name.
func (p *Payload) PendingRequest() (notify.PendingRequest, error) {
	if p.Media == nil {
		return notify.PendingRequest{}, fmt.Errorf("media section missing")
	}
	if p.Media.MediaType != "movie" && p.Media.MediaType != "tv" {
		return notify.PendingRequest{}, fmt.Errorf("unsupported media type %q", p.Media.MediaType)
	}
	if p.Media.TmdbID == 0 {
		return notify.PendingRequest{}, fmt.Errorf("missing tmdbId")
	}

	requestID := int64(p.Media.TmdbID)
	requester := ""
	if p.Request != nil {
		if p.Request.RequestID != 0 {
			requestID = int64(p.Request.RequestID)
		}
		requester = p.Request.requester()
	}
	if requester == "" {
		requester = "Unknown User"
	}

	return notify.PendingRequest{
		RequestID: requestID,
		MediaType: p.Media.MediaType,
		TmdbID:    int64(p.Media.TmdbID),
		Subject:   p.Subject,
		Requester: requester,
		PosterURL: p.Image,
	}, nil
}
