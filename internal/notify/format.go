package notify

import (
	"fmt"
	"slices"
	"strings"

	"overseerr-approval-bot/internal/config"
	"overseerr-approval-bot/internal/overseerr"
)

// FormatPending renders the notification text for a pending request. details
// may be nil when the Overseerr lookup failed; the webhook-supplied fields are
// used instead.
func FormatPending(req PendingRequest, details *overseerr.MediaDetails, opts config.MessageOptions) string {
	var parts []string

	parts = append(parts, formatTitle(req, details, opts))

	if req.Requester != "" {
		format := opts.RequesterFormat
		if format == "" {
			format = "Requested by: {username}"
		}
		parts = append(parts, strings.ReplaceAll(format, "{username}", req.Requester))
	}

	if details != nil {
		if opts.ShowSynopsis {
			if synopsis := formatSynopsis(details.Overview, opts.SynopsisMaxLength); synopsis != "" {
				parts = append(parts, synopsis)
			}
		}
		if opts.ShowCast {
			if cast := formatCast(details.Credits.Cast, opts.CastMaxItems); cast != "" {
				parts = append(parts, cast)
			}
		}
		if opts.ShowCrew {
			if crew := formatCrew(details.Credits.Crew, opts.CrewMaxItems, opts.CrewRoles); crew != "" {
				parts = append(parts, crew)
			}
		}
		if opts.ShowRating && details.VoteAverage > 0 {
			parts = append(parts, fmt.Sprintf("*Rating:* %.1f/10 (TMDb)", details.VoteAverage))
		}
		if opts.ShowLinks {
			if links := formatLinks(req, details); links != "" {
				parts = append(parts, links)
			}
		}
	}

	return strings.Join(parts, "\n\n")
}

func formatTitle(req PendingRequest, details *overseerr.MediaDetails, opts config.MessageOptions) string {
	title := req.Subject
	if details != nil {
		if t := details.DisplayTitle(req.MediaType); t != "" {
			title = t
		}
		if opts.ShowYear {
			if released := details.Released(req.MediaType); len(released) >= 4 {
				title = fmt.Sprintf("%s (%s)", title, released[:4])
			}
		}
	}
	if title == "" {
		title = "Unknown Title"
	}

	emoji := opts.MovieEmoji
	if req.MediaType == "tv" {
		emoji = opts.TVEmoji
	}
	if emoji != "" {
		return fmt.Sprintf("%s *%s*", emoji, title)
	}
	return fmt.Sprintf("*%s*", title)
}

func formatSynopsis(overview string, maxLength int) string {
	if overview == "" {
		return ""
	}
	// Truncate by runes, not bytes; a split multi-byte character would make
	// the whole message invalid UTF-8 and the send would be rejected.
	if runes := []rune(overview); maxLength > 3 && len(runes) > maxLength {
		overview = string(runes[:maxLength-3]) + "..."
	}
	return "*Synopsis:* " + overview
}

func formatCast(cast []overseerr.CreditedPerson, maxItems int) string {
	var names []string
	for _, person := range cast {
		if len(names) >= maxItems {
			break
		}
		if person.Name != "" {
			names = append(names, person.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "*Cast:* " + strings.Join(names, ", ")
}

func formatCrew(crew []overseerr.CreditedPerson, maxItems int, roles []string) string {
	var names []string
	for _, person := range crew {
		if len(names) >= maxItems {
			break
		}
		if person.Name == "" || !slices.Contains(roles, person.Job) {
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", person.Name, person.Job))
	}
	if len(names) == 0 {
		return ""
	}
	return "*Crew:* " + strings.Join(names, ", ")
}

func formatLinks(req PendingRequest, details *overseerr.MediaDetails) string {
	var links []string

	if details.ExternalIDs.ImdbID != "" {
		links = append(links, fmt.Sprintf("[IMDb](https://www.imdb.com/title/%s/)", details.ExternalIDs.ImdbID))
	}
	if req.TmdbID != 0 {
		links = append(links, fmt.Sprintf("[TMDb](https://www.themoviedb.org/%s/%d)", req.MediaType, req.TmdbID))
	}
	if details.ExternalIDs.TvdbID != 0 {
		links = append(links, fmt.Sprintf("[TVDB](https://www.thetvdb.com/dereferrer/series/%d)", details.ExternalIDs.TvdbID))
	}

	if len(links) == 0 {
		return ""
	}
	return "*Links:* " + strings.Join(links, " | ")
}

// FormatOutcome renders the replacement text shown once a notice reaches its
// terminal disposition.
func FormatOutcome(n Notice, actor string) string {
	icon := "✅"
	if n.Disposition == Denied {
		icon = "❌"
	}
	requester := n.Requester
	if requester == "" {
		requester = "Unknown"
	}
	return fmt.Sprintf("%s *%s* (requested by %s) was %s by %s.",
		icon, n.Subject, requester, n.Disposition, actor)
}
