package overseerr

// MediaDetails is the subset of Overseerr's movie/tv detail response the bot
// renders. Movies carry Title/ReleaseDate, series carry Name/FirstAirDate.
type MediaDetails struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	ReleaseDate  string      `json:"releaseDate"`
	FirstAirDate string      `json:"firstAirDate"`
	Overview     string      `json:"overview"`
	VoteAverage  float64     `json:"voteAverage"`
	PosterPath   string      `json:"posterPath"`
	ExternalIDs  ExternalIDs `json:"externalIds"`
	Credits      Credits     `json:"credits"`
}

// Credits holds the cast and crew listings embedded in a detail response.
type Credits struct {
	Cast []CreditedPerson `json:"cast"`
	Crew []CreditedPerson `json:"crew"`
}

// CreditedPerson is one cast or crew entry. Job is set for crew only.
type CreditedPerson struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// ExternalIDs links a title to third-party databases.
type ExternalIDs struct {
	ImdbID string `json:"imdbId"`
	TvdbID int64  `json:"tvdbId"`
	TmdbID int64  `json:"tmdbId"`
}

// DisplayTitle returns the best human title for either media kind.
func (d *MediaDetails) DisplayTitle(mediaType string) string {
	if mediaType == "movie" && d.Title != "" {
		return d.Title
	}
	if d.Name != "" {
		return d.Name
	}
	return d.Title
}

// Released returns the release date for movies, the first-air date otherwise.
func (d *MediaDetails) Released(mediaType string) string {
	if mediaType == "movie" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}
