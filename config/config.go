package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Clinic  ClinicConfig
	Booking BookingConfig
	Sweep   SweepConfig
	Mail    MailConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	CORSOrigin string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ClinicConfig describes the clinic's local calendar.
type ClinicConfig struct {
	Name                  string
	Timezone              string
	AllowCloseHourBooking bool
}

type BookingConfig struct {
	MinDaysAhead      int
	StrictTransitions bool
}

type SweepConfig struct {
	Enabled       bool
	CronSpec      string
	DedupBackend  string
	DedupTTL      time.Duration
	LockTTL       time.Duration
	IncludeGuests bool
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type MailConfig struct {
	Driver         string
	FromEmail      string
	FromName       string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine; the environment alone can configure the service.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	dedupTTL, err := time.ParseDuration(viper.GetString("SWEEP_DEDUP_TTL"))
	if err != nil {
		dedupTTL = 48 * time.Hour
	}

	lockTTL, err := time.ParseDuration(viper.GetString("SWEEP_LOCK_TTL"))
	if err != nil {
		lockTTL = 55 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:       viper.GetString("APP_PORT"),
			Env:        viper.GetString("APP_ENV"),
			LogLevel:   viper.GetString("LOG_LEVEL"),
			CORSOrigin: viper.GetString("CORS_ALLOWED_ORIGIN"),
		},
		DB: DBConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Clinic: ClinicConfig{
			Name:                  viper.GetString("CLINIC_NAME"),
			Timezone:              viper.GetString("CLINIC_TIMEZONE"),
			AllowCloseHourBooking: viper.GetBool("CLINIC_ALLOW_CLOSE_HOUR_BOOKING"),
		},
		Booking: BookingConfig{
			MinDaysAhead:      viper.GetInt("BOOKING_MIN_DAYS_AHEAD"),
			StrictTransitions: viper.GetBool("STRICT_STATUS_TRANSITIONS"),
		},
		Sweep: SweepConfig{
			Enabled:       viper.GetBool("SWEEP_ENABLED"),
			CronSpec:      viper.GetString("SWEEP_CRON_SPEC"),
			DedupBackend:  viper.GetString("SWEEP_DEDUP_BACKEND"),
			DedupTTL:      dedupTTL,
			LockTTL:       lockTTL,
			IncludeGuests: viper.GetBool("SWEEP_INCLUDE_GUESTS"),
		},
		Mail: MailConfig{
			Driver:         viper.GetString("MAIL_DRIVER"),
			FromEmail:      viper.GetString("MAIL_FROM_EMAIL"),
			FromName:       viper.GetString("MAIL_FROM_NAME"),
			SendGridAPIKey: viper.GetString("SENDGRID_API_KEY"),
			SMTPHost:       viper.GetString("SMTP_HOST"),
			SMTPPort:       viper.GetString("SMTP_PORT"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("CLINIC_NAME", "Dr. Ahmed Dental Care")
	viper.SetDefault("CLINIC_TIMEZONE", "Asia/Karachi")
	viper.SetDefault("CLINIC_ALLOW_CLOSE_HOUR_BOOKING", true)
	viper.SetDefault("BOOKING_MIN_DAYS_AHEAD", 2)
	viper.SetDefault("STRICT_STATUS_TRANSITIONS", true)
	viper.SetDefault("SWEEP_ENABLED", true)
	viper.SetDefault("SWEEP_CRON_SPEC", "* * * * *")
	viper.SetDefault("SWEEP_DEDUP_BACKEND", "redis")
	viper.SetDefault("SWEEP_INCLUDE_GUESTS", false)
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("METRICS_PATH", "/metrics")
	viper.SetDefault("MAIL_DRIVER", "log")
	viper.SetDefault("MAIL_FROM_NAME", "Dr. Ahmed Dental Care")
	viper.SetDefault("SMTP_PORT", "25")
}
