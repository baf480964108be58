package rawg

// GamesResponse is the paginated body of GET /games
type GamesResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Game  `json:"results"`
}

// Game is one entry of a games listing
type Game struct {
	ID              int     `json:"id"`
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Released        *string `json:"released"`
	BackgroundImage *string `json:"background_image"`
	Rating          float64 `json:"rating"`
	RatingTop       int     `json:"rating_top"`
	Metacritic      *int    `json:"metacritic"`
	Genres          []Genre `json:"genres"`
}

// Genre is a genre attached to a game
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// GameDetail is the body of GET /games/{id}
type GameDetail struct {
	ID                        int     `json:"id"`
	Slug                      string  `json:"slug"`
	Name                      string  `json:"name"`
	DescriptionRaw            *string `json:"description_raw"`
	Released                  *string `json:"released"`
	BackgroundImage           *string `json:"background_image"`
	BackgroundImageAdditional *string `json:"background_image_additional"`
	Rating                    float64 `json:"rating"`
	RatingTop                 int     `json:"rating_top"`
	Metacritic                *int    `json:"metacritic"`
	Website                   *string `json:"website"`
	Playtime                  int     `json:"playtime"`
	TBA                       bool    `json:"tba"`
}

// ScreenshotsResponse is the body of GET /games/{id}/screenshots
type ScreenshotsResponse struct {
	Count   int          `json:"count"`
	Results []Screenshot `json:"results"`
}

type Screenshot struct {
	ID        int    `json:"id"`
	Image     string `json:"image"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	IsDeleted bool   `json:"is_deleted"`
}

// MoviesResponse is the body of GET /games/{id}/movies
type MoviesResponse struct {
	Count   int     `json:"count"`
	Results []Movie `json:"results"`
}

type Movie struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Preview string    `json:"preview"`
	Data    MovieData `json:"data"`
}

// MovieData holds video URLs keyed by quality
type MovieData struct {
	Low string `json:"480"`
	Max string `json:"max"`
}
