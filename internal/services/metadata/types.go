package metadata

// showDetail is the subset of the TMDB TV detail payload the core consumes
type showDetail struct {
	NextEpisodeToAir *nextEpisode `json:"next_episode_to_air"`
	EpisodeRunTime   []int        `json:"episode_run_time"`
	Status           string       `json:"status"`
}

type nextEpisode struct {
	AirDate       string `json:"air_date"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
}

// movieDetail is the subset of the TMDB movie detail payload the core consumes
type movieDetail struct {
	ReleaseDate string `json:"release_date"`
	Runtime     int    `json:"runtime"`
	Status      string `json:"status"`
}
