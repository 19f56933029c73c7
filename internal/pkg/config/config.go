package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, booking fallbacks, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Booking BookingConfig
	Payment PaymentConfig
	Sweep   SweepConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_AVAILABILITY_TTL" default:"30s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

// BookingConfig holds platform-wide fallbacks. Restaurant-specific values live
// in the booking_settings table and take precedence when a row exists.
type BookingConfig struct {
	DwellTimeMinutes    int           `envconfig:"BOOKING_DWELL_TIME_MINUTES" default:"90"`
	HoldDurationMinutes int           `envconfig:"BOOKING_HOLD_DURATION_MINUTES" default:"10"`
	LockWait            time.Duration `envconfig:"BOOKING_LOCK_WAIT" default:"2s"`
	TxTimeout           time.Duration `envconfig:"BOOKING_TX_TIMEOUT" default:"8s"`
}

type PaymentConfig struct {
	StatusURL   string        `envconfig:"PAYMENT_STATUS_URL" default:""`
	SuccessCode string        `envconfig:"PAYMENT_SUCCESS_CODE" default:"2"`
	Timeout     time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"10s"`
}

type SweepConfig struct {
	// robfig/cron spec for the background expiry sweeps
	Schedule          string        `envconfig:"SWEEP_SCHEDULE" default:"@every 1m"`
	StaleRequestAfter time.Duration `envconfig:"SWEEP_STALE_REQUEST_AFTER" default:"24h"`
	SlotRetention     time.Duration `envconfig:"SWEEP_SLOT_RETENTION" default:"720h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level: "error",
		},
		Booking: BookingConfig{
			DwellTimeMinutes:    90,
			HoldDurationMinutes: 10,
			LockWait:            2 * time.Second,
			TxTimeout:           8 * time.Second,
		},
	}
}
