package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"movie-recommendation-engine/internal/models"
)

// MovieRepository handles read access to the movie catalog.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// CandidateFilter narrows a candidate-pool query. Zero values mean
// "no constraint"; AnyGenreIDs/AnyCountryIDs are OR-combined overlap tests.
type CandidateFilter struct {
	ExcludeIDs    []int64
	AnyGenreIDs   []int64
	AnyCountryIDs []int64
	TypeID        int64
	Limit         int
}

const cardColumns = `id, name, slug, poster_path, thumb_path, year, genre_ids, country_ids`

// GetByID returns the full movie row, or nil when it does not exist.
func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	var m models.Movie
	var genreIDs, countryIDs pq.Int64Array
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, overview, year, rating, rating_count,
			view_count, like_count, dislike_count,
			genre_ids, country_ids, type_id, poster_path, thumb_path,
			created_at, updated_at
		FROM movies WHERE id = $1
	`, id).Scan(
		&m.ID, &m.Name, &m.Slug, &m.Overview, &m.Year, &m.Rating, &m.RatingCount,
		&m.ViewCount, &m.LikeCount, &m.DislikeCount,
		&genreIDs, &countryIDs, &m.TypeID, &m.PosterPath, &m.ThumbPath,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query movie %d: %w", id, err)
	}
	m.GenreIDs = []int64(genreIDs)
	m.CountryIDs = []int64(countryIDs)
	return &m, nil
}

// GetDetail returns the movie detail response shape with genre, country and
// type names resolved.
func (r *MovieRepository) GetDetail(ctx context.Context, id int64) (*models.MovieDetail, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil || m == nil {
		return nil, err
	}

	detail := &models.MovieDetail{
		ID:           m.ID,
		Name:         m.Name,
		Slug:         m.Slug,
		Overview:     m.Overview,
		Year:         m.Year,
		Rating:       m.Rating,
		RatingCount:  m.RatingCount,
		ViewCount:    m.ViewCount,
		LikeCount:    m.LikeCount,
		DislikeCount: m.DislikeCount,
		Genres:       make([]string, 0),
		Countries:    make([]string, 0),
	}
	if m.PosterPath != "" {
		detail.PosterURL = models.ImageBaseURL + m.PosterPath
	}
	if m.ThumbPath != "" {
		detail.ThumbURL = models.ImageBaseURL + m.ThumbPath
	}

	if len(m.GenreIDs) > 0 {
		if detail.Genres, err = r.namesByIDs(ctx, "genres", m.GenreIDs); err != nil {
			return nil, err
		}
	}
	if len(m.CountryIDs) > 0 {
		if detail.Countries, err = r.namesByIDs(ctx, "countries", m.CountryIDs); err != nil {
			return nil, err
		}
	}
	if m.TypeID != 0 {
		err = r.db.QueryRowContext(ctx,
			`SELECT name FROM movie_types WHERE id = $1`, m.TypeID).Scan(&detail.Type)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("query movie type: %w", err)
		}
	}
	return detail, nil
}

// FeaturesByIDs returns the genre/country id sets for the given movies.
func (r *MovieRepository) FeaturesByIDs(ctx context.Context, ids []int64) ([]models.MovieFeatures, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, genre_ids, country_ids FROM movies WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query movie features: %w", err)
	}
	defer rows.Close()

	var result []models.MovieFeatures
	for rows.Next() {
		var f models.MovieFeatures
		var genreIDs, countryIDs pq.Int64Array
		if err := rows.Scan(&f.ID, &genreIDs, &countryIDs); err != nil {
			return nil, fmt.Errorf("scan movie features: %w", err)
		}
		f.GenreIDs = []int64(genreIDs)
		f.CountryIDs = []int64(countryIDs)
		result = append(result, f)
	}
	return result, rows.Err()
}

// EmbeddingByID returns the movie's content embedding, or nil when the
// movie has none.
func (r *MovieRepository) EmbeddingByID(ctx context.Context, id int64) ([]float64, error) {
	var embedding pq.Float64Array
	err := r.db.QueryRowContext(ctx,
		`SELECT content_embedding FROM movies WHERE id = $1`, id).Scan(&embedding)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return []float64(embedding), nil
}

// FindCandidates returns a quality-biased candidate pool: movies matching
// the filter, ordered by rating then view count descending so the pool
// leans toward well-received titles.
func (r *MovieRepository) FindCandidates(ctx context.Context, f CandidateFilter) ([]models.MovieCard, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if len(f.ExcludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("NOT (id = ANY($%d))", argIdx))
		args = append(args, pq.Array(f.ExcludeIDs))
		argIdx++
	}
	if len(f.AnyGenreIDs) > 0 || len(f.AnyCountryIDs) > 0 {
		overlap := []string{}
		if len(f.AnyGenreIDs) > 0 {
			overlap = append(overlap, fmt.Sprintf("genre_ids && $%d", argIdx))
			args = append(args, pq.Array(f.AnyGenreIDs))
			argIdx++
		}
		if len(f.AnyCountryIDs) > 0 {
			overlap = append(overlap, fmt.Sprintf("country_ids && $%d", argIdx))
			args = append(args, pq.Array(f.AnyCountryIDs))
			argIdx++
		}
		conditions = append(conditions, "("+strings.Join(overlap, " OR ")+")")
	}
	if f.TypeID != 0 {
		conditions = append(conditions, fmt.Sprintf("type_id = $%d", argIdx))
		args = append(args, f.TypeID)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM movies
		WHERE %s
		ORDER BY rating DESC, view_count DESC, id ASC
		LIMIT $%d
	`, cardColumns, strings.Join(conditions, " AND "), argIdx)
	args = append(args, f.Limit)

	return r.queryCards(ctx, query, args...)
}

// TopByViews returns movies ordered by all-time view count descending. It
// backs both the popularity fallback and the no-recent-interactions
// trending fallback; genreID/typeID of 0 mean unfiltered.
func (r *MovieRepository) TopByViews(ctx context.Context, excludeIDs []int64, genreID, typeID int64, limit int) ([]models.MovieCard, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if len(excludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("NOT (id = ANY($%d))", argIdx))
		args = append(args, pq.Array(excludeIDs))
		argIdx++
	}
	if genreID != 0 {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(genre_ids)", argIdx))
		args = append(args, genreID)
		argIdx++
	}
	if typeID != 0 {
		conditions = append(conditions, fmt.Sprintf("type_id = $%d", argIdx))
		args = append(args, typeID)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM movies
		WHERE %s
		ORDER BY view_count DESC, id ASC
		LIMIT $%d
	`, cardColumns, strings.Join(conditions, " AND "), argIdx)
	args = append(args, limit)

	return r.queryCards(ctx, query, args...)
}

// CardsByIDs hydrates cards for the given movie ids, preserving the
// caller's id order (rankings computed upstream must survive hydration).
func (r *MovieRepository) CardsByIDs(ctx context.Context, ids []int64) ([]models.MovieCard, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cards, err := r.queryCards(ctx, fmt.Sprintf(`
		SELECT %s FROM movies WHERE id = ANY($1)
	`, cardColumns), pq.Array(ids))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.MovieCard, len(cards))
	for _, c := range cards {
		byID[c.MovieID] = c
	}
	ordered := make([]models.MovieCard, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *MovieRepository) namesByIDs(ctx context.Context, table string, ids []int64) ([]string, error) {
	// table is a fixed identifier supplied by GetDetail, never user input.
	query := fmt.Sprintf(`SELECT name FROM %s WHERE id = ANY($1) ORDER BY name`, table)
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query %s names: %w", table, err)
	}
	defer rows.Close()

	names := make([]string, 0, len(ids))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s name: %w", table, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *MovieRepository) queryCards(ctx context.Context, query string, args ...interface{}) ([]models.MovieCard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movie cards: %w", err)
	}
	defer rows.Close()

	cards := make([]models.MovieCard, 0)
	for rows.Next() {
		var c models.MovieCard
		var posterPath, thumbPath string
		var genreIDs, countryIDs pq.Int64Array
		if err := rows.Scan(&c.MovieID, &c.Name, &c.Slug, &posterPath, &thumbPath,
			&c.Year, &genreIDs, &countryIDs); err != nil {
			return nil, fmt.Errorf("scan movie card: %w", err)
		}
		if posterPath != "" {
			c.PosterURL = models.ImageBaseURL + posterPath
		}
		if thumbPath != "" {
			c.ThumbURL = models.ImageBaseURL + thumbPath
		}
		c.GenreIDs = []int64(genreIDs)
		c.CountryIDs = []int64(countryIDs)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
