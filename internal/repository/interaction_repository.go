package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"movie-recommendation-engine/internal/models"
)

var ErrInvalidInteraction = errors.New("invalid interaction")

// InteractionRepository handles database operations for interaction events.
type InteractionRepository struct {
	db *sql.DB
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// RecentMovieIDs returns the distinct movie ids the user touched within the
// most recent `window` events, newest first. This is the exclusion-set
// source: recency-ordered, not time-windowed.
func (r *InteractionRepository) RecentMovieIDs(ctx context.Context, userID int64, window int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id FROM (
			SELECT movie_id, created_at, id
			FROM interactions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at DESC, id DESC
	`, userID, window)
	if err != nil {
		return nil, fmt.Errorf("query recent interactions: %w", err)
	}
	defer rows.Close()

	return dedupeIDRows(rows)
}

// PositiveMovieIDs returns the distinct movie ids the user positively
// interacted with (LIKE, or RATE at or above ratingGte) inside the most
// recent `window` events, newest first.
func (r *InteractionRepository) PositiveMovieIDs(ctx context.Context, userID int64, ratingGte float64, window int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id FROM (
			SELECT movie_id, type, rating, created_at, id
			FROM interactions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		WHERE type = 'LIKE' OR (type = 'RATE' AND rating >= $3)
		ORDER BY created_at DESC, id DESC
	`, userID, window, ratingGte)
	if err != nil {
		return nil, fmt.Errorf("query positive interactions: %w", err)
	}
	defer rows.Close()

	return dedupeIDRows(rows)
}

// RecentMovieIDsByType returns the distinct movie ids of the user's most
// recent events of one type, newest first. Feeds the recently-liked and
// recently-watched reference sets.
func (r *InteractionRepository) RecentMovieIDsByType(ctx context.Context, userID int64, t models.InteractionType, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id
		FROM interactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, userID, string(t), limit)
	if err != nil {
		return nil, fmt.Errorf("query interactions by type: %w", err)
	}
	defer rows.Close()

	return dedupeIDRows(rows)
}

// UsersWithPositiveOverlap finds users who positively interacted with any of
// the given movies and ranks them by how many of those movies they share.
// The raw row scan is bounded by pool before grouping.
func (r *InteractionRepository) UsersWithPositiveOverlap(ctx context.Context, movieIDs []int64, excludeUserID int64, ratingGte float64, pool int) ([]models.UserOverlap, error) {
	if len(movieIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, COUNT(DISTINCT movie_id) AS overlap
		FROM (
			SELECT user_id, movie_id
			FROM interactions
			WHERE movie_id = ANY($1)
			  AND user_id <> $2
			  AND (type = 'LIKE' OR (type = 'RATE' AND rating >= $3))
			LIMIT $4
		) pool
		GROUP BY user_id
		ORDER BY overlap DESC, user_id ASC
	`, pq.Array(movieIDs), excludeUserID, ratingGte, pool)
	if err != nil {
		return nil, fmt.Errorf("query overlapping users: %w", err)
	}
	defer rows.Close()

	var result []models.UserOverlap
	for rows.Next() {
		var o models.UserOverlap
		if err := rows.Scan(&o.UserID, &o.Overlap); err != nil {
			return nil, fmt.Errorf("scan overlap row: %w", err)
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// PositiveMovieIDsForUsers returns the movie ids of the given users'
// positive interactions, newest first, bounded by pool. Duplicates are kept:
// the caller counts frequency per movie.
func (r *InteractionRepository) PositiveMovieIDsForUsers(ctx context.Context, userIDs []int64, ratingGte float64, pool int) ([]int64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id
		FROM interactions
		WHERE user_id = ANY($1)
		  AND (type = 'LIKE' OR (type = 'RATE' AND rating >= $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, pq.Array(userIDs), ratingGte, pool)
	if err != nil {
		return nil, fmt.Errorf("query neighbor positives: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan neighbor positive: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountRecentViewsByMovie aggregates VIEW events since the given time,
// grouped per movie and sorted by count descending with movie id ascending
// as the deterministic tie-break. genreID/typeID of 0 mean unfiltered.
func (r *InteractionRepository) CountRecentViewsByMovie(ctx context.Context, since time.Time, genreID, typeID int64, limit int) ([]models.MovieViewCount, error) {
	conditions := []string{"i.type = 'VIEW'", "i.created_at >= $1"}
	args := []interface{}{since}
	argIdx := 2

	join := ""
	if genreID != 0 {
		join = "JOIN movies m ON m.id = i.movie_id"
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(m.genre_ids)", argIdx))
		args = append(args, genreID)
		argIdx++
	} else if typeID != 0 {
		join = "JOIN movies m ON m.id = i.movie_id"
		conditions = append(conditions, fmt.Sprintf("m.type_id = $%d", argIdx))
		args = append(args, typeID)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT i.movie_id, COUNT(*) AS cnt
		FROM interactions i %s
		WHERE %s
		GROUP BY i.movie_id
		ORDER BY cnt DESC, i.movie_id ASC
		LIMIT $%d
	`, join, strings.Join(conditions, " AND "), argIdx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent views: %w", err)
	}
	defer rows.Close()

	var result []models.MovieViewCount
	for rows.Next() {
		var vc models.MovieViewCount
		if err := rows.Scan(&vc.MovieID, &vc.Count); err != nil {
			return nil, fmt.Errorf("scan view count: %w", err)
		}
		result = append(result, vc)
	}
	return result, rows.Err()
}

// Apply runs the interaction write state machine for one event and keeps the
// movie aggregate counters consistent in the same transaction. LIKE/DISLIKE
// toggle themselves off and retract each other; RATE is latest-wins; VIEW is
// append-only.
func (r *InteractionRepository) Apply(ctx context.Context, userID int64, req models.InteractionRequest) (*models.InteractionResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin interaction tx: %w", err)
	}
	defer tx.Rollback()

	var state string
	switch req.Type {
	case models.InteractionView:
		state, err = r.applyView(ctx, tx, userID, req.MovieID)
	case models.InteractionLike:
		state, err = r.applyToggle(ctx, tx, userID, req.MovieID, models.InteractionLike, models.InteractionDislike, "liked")
	case models.InteractionDislike:
		state, err = r.applyToggle(ctx, tx, userID, req.MovieID, models.InteractionDislike, models.InteractionLike, "disliked")
	case models.InteractionRate:
		if req.Rating == nil || *req.Rating < 0 || *req.Rating > 5 {
			return nil, fmt.Errorf("%w: RATE requires a rating in [0,5]", ErrInvalidInteraction)
		}
		state, err = r.applyRate(ctx, tx, userID, req.MovieID, *req.Rating)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInteraction, req.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit interaction tx: %w", err)
	}
	return &models.InteractionResult{MovieID: req.MovieID, State: state}, nil
}

func (r *InteractionRepository) applyView(ctx context.Context, tx *sql.Tx, userID, movieID int64) (string, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (user_id, movie_id, type) VALUES ($1, $2, 'VIEW')
	`, userID, movieID); err != nil {
		return "", fmt.Errorf("insert view: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE movies SET view_count = view_count + 1, updated_at = NOW() WHERE id = $1
	`, movieID); err != nil {
		return "", fmt.Errorf("bump view count: %w", err)
	}
	return "viewed", nil
}

func (r *InteractionRepository) applyToggle(ctx context.Context, tx *sql.Tx, userID, movieID int64, t, opposite models.InteractionType, onState string) (string, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM interactions WHERE user_id = $1 AND movie_id = $2 AND type = $3
	`, userID, movieID, string(t))
	if err != nil {
		return "", fmt.Errorf("toggle delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		// Same type existed: toggled off.
		if _, err := tx.ExecContext(ctx,
			counterSQL(t, -1), movieID); err != nil {
			return "", fmt.Errorf("decrement counter: %w", err)
		}
		return "none", nil
	}

	res, err = tx.ExecContext(ctx, `
		DELETE FROM interactions WHERE user_id = $1 AND movie_id = $2 AND type = $3
	`, userID, movieID, string(opposite))
	if err != nil {
		return "", fmt.Errorf("retract opposite: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx,
			counterSQL(opposite, -1), movieID); err != nil {
			return "", fmt.Errorf("decrement opposite counter: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (user_id, movie_id, type) VALUES ($1, $2, $3)
	`, userID, movieID, string(t)); err != nil {
		return "", fmt.Errorf("insert %s: %w", t, err)
	}
	if _, err := tx.ExecContext(ctx, counterSQL(t, +1), movieID); err != nil {
		return "", fmt.Errorf("increment counter: %w", err)
	}
	return onState, nil
}

func (r *InteractionRepository) applyRate(ctx context.Context, tx *sql.Tx, userID, movieID int64, rating float64) (string, error) {
	var previous sql.NullFloat64
	err := tx.QueryRowContext(ctx, `
		SELECT rating FROM interactions
		WHERE user_id = $1 AND movie_id = $2 AND type = 'RATE'
	`, userID, movieID).Scan(&previous)

	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO interactions (user_id, movie_id, type, rating)
			VALUES ($1, $2, 'RATE', $3)
		`, userID, movieID, rating); err != nil {
			return "", fmt.Errorf("insert rating: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE movies
			SET rating = (rating * rating_count + $1) / (rating_count + 1),
			    rating_count = rating_count + 1,
			    updated_at = NOW()
			WHERE id = $2
		`, rating, movieID); err != nil {
			return "", fmt.Errorf("apply new rating: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("lookup rating: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE interactions SET rating = $1, created_at = NOW()
			WHERE user_id = $2 AND movie_id = $3 AND type = 'RATE'
		`, rating, userID, movieID); err != nil {
			return "", fmt.Errorf("update rating: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE movies
			SET rating = CASE WHEN rating_count > 0
					THEN (rating * rating_count - $1 + $2) / rating_count
					ELSE $2 END,
			    updated_at = NOW()
			WHERE id = $3
		`, previous.Float64, rating, movieID); err != nil {
			return "", fmt.Errorf("reapply rating: %w", err)
		}
	}
	return "rated", nil
}

func counterSQL(t models.InteractionType, delta int) string {
	column := "like_count"
	if t == models.InteractionDislike {
		column = "dislike_count"
	}
	op := "+"
	if delta < 0 {
		op = "-"
	}
	return fmt.Sprintf(`UPDATE movies SET %s = GREATEST(%s %s 1, 0), updated_at = NOW() WHERE id = $1`, column, column, op)
}

func dedupeIDRows(rows *sql.Rows) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan movie id: %w", err)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
