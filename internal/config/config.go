package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	NATS     NATSConfig
	Notifier NotifierConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	Env                string
	CORSAllowedOrigins []string
}

type PostgresConfig struct {
	User        string
	Password    string
	Name        string
	Host        string
	Port        int
	SSLMode     string
	SchemaPath  string
	ApplySchema bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ServiceTokenSecret string
}

// NotifyConfig controls how the API hands notifications to the notifier.
// Transport is one of "http", "nats" or "none".
type NotifyConfig struct {
	Transport string
	BaseURL   string
	Timeout   time.Duration
}

type NATSConfig struct {
	URL   string
	Token string
}

type NotifierConfig struct {
	Host         string
	Port         int
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
	StoreEmail   string
	MongoURI     string
	MongoDB      string
	ResetBaseURL string
	RateLimit    int
}

type LogConfig struct {
	Level  string
	Format string
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode,
	)
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (n NotifierConfig) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "" || s.Env == "development"
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host:               strEnv("SERVER_HOST", "0.0.0.0"),
		Port:               serverPort,
		Env:                strEnv("APP_ENV", "development"),
		CORSAllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	applySchema, err := boolEnv("POSTGRES_APPLY_SCHEMA", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:        postgresUser,
		Password:    postgresPassword,
		Name:        postgresDB,
		Host:        strEnv("POSTGRES_HOST", "localhost"),
		Port:        postgresPort,
		SSLMode:     strEnv("POSTGRES_SSLMODE", "disable"),
		SchemaPath:  os.Getenv("POSTGRES_SCHEMA_PATH"),
		ApplySchema: applySchema,
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     strEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	accessTTL, err := durationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshTTL, err := durationEnv("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if !serverCfg.IsDevelopment() {
			return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
		}
		jwtSecret = "dev-only-game-store-secret"
	}

	authCfg := AuthConfig{
		JWTSecret:          jwtSecret,
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		ServiceTokenSecret: strEnv("SERVICE_TOKEN_SECRET", jwtSecret),
	}

	notifyTimeout, err := durationEnv("NOTIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notifyCfg := NotifyConfig{
		Transport: strings.ToLower(strEnv("NOTIFY_TRANSPORT", "http")),
		BaseURL:   strings.TrimRight(strEnv("NOTIFY_BASE_URL", "http://localhost:8090"), "/"),
		Timeout:   notifyTimeout,
	}
	switch notifyCfg.Transport {
	case "http", "nats", "none":
	default:
		return nil, fmt.Errorf("%s: invalid NOTIFY_TRANSPORT %q", op, notifyCfg.Transport)
	}

	natsCfg := NATSConfig{
		URL:   strEnv("NATS_URL", "nats://localhost:4222"),
		Token: os.Getenv("NATS_TOKEN"),
	}

	notifierPort, err := intEnv("NOTIFIER_PORT", 8090)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rateLimit, err := intEnv("NOTIFIER_RATE_LIMIT", 30)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notifierCfg := NotifierConfig{
		Host:         strEnv("NOTIFIER_HOST", "0.0.0.0"),
		Port:         notifierPort,
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    strEnv("SMTP_FROM_EMAIL", "noreply@gamestorezarzis.com.tn"),
		FromName:     strEnv("SMTP_FROM_NAME", "Game Store Zarzis"),
		StoreEmail:   strEnv("STORE_EMAIL", "contact@gamestorezarzis.com.tn"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      strEnv("MONGO_DB", "game_store_notifier"),
		ResetBaseURL: strings.TrimRight(strEnv("RESET_BASE_URL", "http://localhost:5173/reset-password"), "/"),
		RateLimit:    rateLimit,
	}

	logCfg := LogConfig{
		Level:  strEnv("LOG_LEVEL", "info"),
		Format: strEnv("LOG_FORMAT", "console"),
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Auth:     authCfg,
		Notify:   notifyCfg,
		NATS:     natsCfg,
		Notifier: notifierCfg,
		Log:      logCfg,
	}, nil
}

func strEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func listEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
