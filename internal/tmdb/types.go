package tmdb

// Result is one entry of a paged list endpoint. Movies carry Title and
// ReleaseDate; series carry Name and FirstAirDate.
type Result struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
}

// PageResponse is the envelope shared by /search/multi, /trending and the
// appended recommendations block.
type PageResponse struct {
	Page         int      `json:"page"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
	Results      []Result `json:"results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

// DetailResponse is GET /movie/{id} or /tv/{id} with videos, credits and
// recommendations appended.
type DetailResponse struct {
	ID             int     `json:"id"`
	Title          string  `json:"title,omitempty"`
	Name           string  `json:"name,omitempty"`
	Overview       string  `json:"overview"`
	Tagline        string  `json:"tagline"`
	ReleaseDate    string  `json:"release_date,omitempty"`
	FirstAirDate   string  `json:"first_air_date,omitempty"`
	VoteAverage    float64 `json:"vote_average"`
	PosterPath     string  `json:"poster_path"`
	BackdropPath   string  `json:"backdrop_path"`
	Runtime        int     `json:"runtime,omitempty"`
	EpisodeRunTime []int   `json:"episode_run_time,omitempty"`
	Genres         []Genre `json:"genres"`
	Videos         struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Recommendations PageResponse `json:"recommendations"`
}

type errorBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
