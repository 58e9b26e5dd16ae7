package models

import "time"

// Movie represents a movie stored in our database. Genre and country
// membership is kept as id arrays on the row rather than join rows, and the
// aggregate counters are maintained transactionally by the interaction write
// path, so the engine reads them as trusted precomputed values.
type Movie struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Overview     string    `json:"overview"`
	Year         int       `json:"year"`
	Rating       float64   `json:"rating"`
	RatingCount  int64     `json:"rating_count"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	DislikeCount int64     `json:"dislike_count"`
	GenreIDs     []int64   `json:"genre_ids"`
	CountryIDs   []int64   `json:"country_ids"`
	TypeID       int64     `json:"type_id"`
	PosterPath   string    `json:"poster_path"`
	ThumbPath    string    `json:"thumb_path"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Country represents a production country.
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MovieType distinguishes catalog entries (feature film, series, ...).
type MovieType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MovieFeatures is the projection the engine scores against: id sets only,
// no presentation fields.
type MovieFeatures struct {
	ID         int64
	GenreIDs   []int64
	CountryIDs []int64
}

// MovieCard is the response shape for a recommended movie.
type MovieCard struct {
	MovieID   int64   `json:"movieId"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	PosterURL string  `json:"posterUrl"`
	ThumbURL  string  `json:"thumbUrl"`
	Year      int     `json:"year"`
	Score     float64 `json:"score,omitempty"`

	// Categories consulted by the trending diversity cap; never serialized.
	GenreIDs   []int64 `json:"-"`
	CountryIDs []int64 `json:"-"`
}

// MovieDetail is the response shape for the movie detail endpoint.
type MovieDetail struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Overview     string   `json:"overview"`
	Year         int      `json:"year"`
	Rating       float64  `json:"rating"`
	RatingCount  int64    `json:"rating_count"`
	ViewCount    int64    `json:"view_count"`
	LikeCount    int64    `json:"like_count"`
	DislikeCount int64    `json:"dislike_count"`
	Genres       []string `json:"genres"`
	Countries    []string `json:"countries"`
	Type         string   `json:"type"`
	PosterURL    string   `json:"poster_url"`
	ThumbURL     string   `json:"thumb_url"`
}

const ImageBaseURL = "https://img.movierecs.example/w500"
