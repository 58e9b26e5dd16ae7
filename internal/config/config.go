package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB     DBConfig
	Redis  RedisConfig
	Qdrant QdrantConfig
	Engine EngineConfig
	Port   string
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
}

// EngineConfig holds the recommendation engine's tuning knobs. Defaults are
// the product's shipped values; every knob is env-overridable so thresholds
// can be adjusted without a redeploy.
type EngineConfig struct {
	// HistoryWindow bounds the exclusion set: only the most recent N
	// interaction events count as "seen".
	HistoryWindow int
	// PositiveWindow bounds how far back positive interactions are counted.
	PositiveWindow int
	// PositiveRatingThreshold is the minimum RATE value treated as positive.
	PositiveRatingThreshold float64
	// MinPositiveInteractions below which a user is cold.
	MinPositiveInteractions int
	// MinOverlap is the minimum shared-positive count for a neighbor.
	MinOverlap int
	// MaxSimilarUsers caps the collaborative neighborhood.
	MaxSimilarUsers int
	// NeighborPool bounds the raw candidate-neighbor row scan.
	NeighborPool int
	// CandidateMultiplier sizes content-based candidate pools (x limit).
	CandidateMultiplier int
	// TrendingMultiplier sizes trending candidate pools (x limit).
	TrendingMultiplier int
	// TrendingWindowDays / GenreTrendingWindowDays are the trailing view
	// windows for the global and filtered trending surfaces.
	TrendingWindowDays      int
	GenreTrendingWindowDays int
	// CountryCap / GenreCap are the diversity repetition caps.
	CountryCap int
	GenreCap   int
	// RecentLikes / RecentViews size the recently-liked / recently-watched
	// reference sets.
	RecentLikes int
	RecentViews int
	// StoreTimeout / VectorTimeout bound every external read.
	StoreTimeout  time.Duration
	VectorTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "3"))
	qdrantPort, _ := strconv.Atoi(getEnv("QDRANT_PORT", "6334"))

	return &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_recommendation"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Qdrant: QdrantConfig{
			Host:       getEnv("QDRANT_HOST", "localhost"),
			Port:       qdrantPort,
			Collection: getEnv("QDRANT_COLLECTION", "movie_embeddings"),
		},
		Engine: EngineConfig{
			HistoryWindow:           getEnvInt("ENGINE_HISTORY_WINDOW", 300),
			PositiveWindow:          getEnvInt("ENGINE_POSITIVE_WINDOW", 100),
			PositiveRatingThreshold: getEnvFloat("ENGINE_POSITIVE_RATING", 4.0),
			MinPositiveInteractions: getEnvInt("ENGINE_MIN_POSITIVE", 5),
			MinOverlap:              getEnvInt("ENGINE_MIN_OVERLAP", 3),
			MaxSimilarUsers:         getEnvInt("ENGINE_MAX_SIMILAR_USERS", 50),
			NeighborPool:            getEnvInt("ENGINE_NEIGHBOR_POOL", 1000),
			CandidateMultiplier:     getEnvInt("ENGINE_CANDIDATE_MULTIPLIER", 5),
			TrendingMultiplier:      getEnvInt("ENGINE_TRENDING_MULTIPLIER", 3),
			TrendingWindowDays:      getEnvInt("ENGINE_TRENDING_WINDOW_DAYS", 3),
			GenreTrendingWindowDays: getEnvInt("ENGINE_GENRE_TRENDING_WINDOW_DAYS", 7),
			CountryCap:              getEnvInt("ENGINE_COUNTRY_CAP", 3),
			GenreCap:                getEnvInt("ENGINE_GENRE_CAP", 2),
			RecentLikes:             getEnvInt("ENGINE_RECENT_LIKES", 15),
			RecentViews:             getEnvInt("ENGINE_RECENT_VIEWS", 25),
			StoreTimeout:            getEnvDuration("ENGINE_STORE_TIMEOUT", 3*time.Second),
			VectorTimeout:           getEnvDuration("ENGINE_VECTOR_TIMEOUT", 2*time.Second),
		},
		Port: getEnv("SERVER_PORT", "8084"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
