package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"movie-recommendation-engine/internal/config"
)

func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS genres (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS countries (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS movie_types (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			overview TEXT DEFAULT '',
			year INTEGER DEFAULT 0,
			rating DOUBLE PRECISION DEFAULT 0,
			rating_count BIGINT DEFAULT 0,
			view_count BIGINT DEFAULT 0,
			like_count BIGINT DEFAULT 0,
			dislike_count BIGINT DEFAULT 0,
			genre_ids BIGINT[] NOT NULL DEFAULT '{}',
			country_ids BIGINT[] NOT NULL DEFAULT '{}',
			type_id BIGINT DEFAULT 0,
			poster_path VARCHAR(255) DEFAULT '',
			thumb_path VARCHAR(255) DEFAULT '',
			content_embedding DOUBLE PRECISION[] DEFAULT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_view_count ON movies(view_count DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_rating ON movies(rating DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_genre_ids ON movies USING GIN(genre_ids)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_country_ids ON movies USING GIN(country_ids)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			type VARCHAR(10) NOT NULL,
			rating DOUBLE PRECISION,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_recency ON interactions(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_movie_type ON interactions(movie_id, type)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_views_window ON interactions(created_at) WHERE type = 'VIEW'`,
		// One LIKE and one DISLIKE row at most per (user, movie); RATE is a
		// latest-wins upsert keyed the same way. VIEW stays append-only.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_interactions_toggle
			ON interactions(user_id, movie_id, type) WHERE type IN ('LIKE', 'DISLIKE', 'RATE')`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
