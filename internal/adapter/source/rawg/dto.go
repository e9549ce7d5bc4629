package rawg

// GamesResponse is the body of the /games listing
type GamesResponse struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []Game `json:"results"`
}

// Game is one entry of a games listing
type Game struct {
	ID              int     `json:"id"`
	Slug            string  `json:"slug,omitempty"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	BackgroundImage string  `json:"background_image"`
	Rating          float64 `json:"rating"`
	RatingTop       int     `json:"rating_top,omitempty"`
	Metacritic      int     `json:"metacritic,omitempty"`
	Playtime        int     `json:"playtime"`
	Genres          []Genre `json:"genres"`
}

// Genre is a RAWG genre reference
type Genre struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}
