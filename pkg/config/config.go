package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	StorePostgres = "postgres"
	StoreFirebase = "firebase"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	SessionStore string

	Database   DatabaseConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	ScoreCache ScoreCacheConfig
	Print      PrintConfig
	AI         AIConfig
	Migration  MigrationConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// FirebaseConfig points at the Realtime Database holding legacy session documents.
type FirebaseConfig struct {
	DatabaseURL     string
	CredentialsFile string
}

// JWTConfig holds the Supabase project secret used to verify access tokens.
type JWTConfig struct {
	Secret   string
	Audience string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ScoreCacheConfig governs the per (session, student) score display cache.
type ScoreCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// PrintConfig configures signed links for printable session reports.
type PrintConfig struct {
	LinkSecret string
	LinkTTL    time.Duration
}

// AIConfig configures the completion endpoint used for comment suggestions.
// Suggestions are disabled when APIKey is empty.
type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// MigrationConfig controls the one-off Firebase to Postgres copy.
type MigrationConfig struct {
	Collections []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.SessionStore = strings.ToLower(v.GetString("SESSION_STORE"))
	if cfg.SessionStore != StoreFirebase {
		cfg.SessionStore = StorePostgres
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Firebase = FirebaseConfig{
		DatabaseURL:     v.GetString("FIREBASE_DATABASE_URL"),
		CredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Audience: v.GetString("JWT_AUDIENCE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.ScoreCache = ScoreCacheConfig{
		Enabled: v.GetBool("SCORE_CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("SCORE_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Print = PrintConfig{
		LinkSecret: v.GetString("PRINT_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("PRINT_LINK_TTL"), 15*time.Minute),
	}

	cfg.AI = AIConfig{
		BaseURL: strings.TrimRight(v.GetString("AI_BASE_URL"), "/"),
		APIKey:  v.GetString("AI_API_KEY"),
		Model:   v.GetString("AI_MODEL"),
		Timeout: parseDuration(v.GetString("AI_TIMEOUT"), 20*time.Second),
	}

	cfg.Migration = MigrationConfig{
		Collections: splitAndTrim(v.GetString("MIGRATION_COLLECTIONS")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("SESSION_STORE", StorePostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tutoring_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("FIREBASE_DATABASE_URL", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_AUDIENCE", "authenticated")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCORE_CACHE_ENABLED", false)
	v.SetDefault("SCORE_CACHE_TTL", "10m")

	v.SetDefault("PRINT_LINK_SECRET", "dev_print_secret")
	v.SetDefault("PRINT_LINK_TTL", "15m")

	v.SetDefault("AI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TIMEOUT", "20s")

	v.SetDefault("MIGRATION_COLLECTIONS", "classes,students,sessions,monthlyComments")
}

// isMissingFile reports whether viper failed only because .env does not exist.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
