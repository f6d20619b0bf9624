package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Attendance AttendanceConfig
	Leave      LeaveConfig
	Scheduler  SchedulerConfig
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttendanceConfig governs check-in status derivation and summaries.
type AttendanceConfig struct {
	// Timezone is the organization's local time zone; every day boundary and
	// cutoff comparison happens in it.
	Timezone string
	// LateCutoff is the "HH:MM" wall clock at or after which a check-in is late.
	LateCutoff string
	// HalfDayHours is the worked-hours floor below which a present/late day is
	// downgraded to half-day.
	HalfDayHours float64
	// SummaryCacheTTL bounds staleness of cached monthly summaries.
	SummaryCacheTTL time.Duration
}

// LeaveConfig carries the per-category yearly allotments used when a balance
// row is lazily created. Unpaid leave has no allotment and is exempt from
// sufficiency checks.
type LeaveConfig struct {
	CasualDays float64
	SickDays   float64
	AnnualDays float64
}

// SchedulerConfig controls the daily reconciliation trigger.
type SchedulerConfig struct {
	Enabled bool
	// TriggerAt is the "HH:MM" local wall clock at which the daily run fires.
	TriggerAt string
	// AutoCheckoutAt is the "HH:MM" local wall clock stamped on records left
	// open at end of day.
	AutoCheckoutAt string
	// LockTTL caps how long the per-day run lock may be held.
	LockTTL time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Attendance = AttendanceConfig{
		Timezone:        v.GetString("ATTENDANCE_TIMEZONE"),
		LateCutoff:      v.GetString("ATTENDANCE_LATE_CUTOFF"),
		HalfDayHours:    v.GetFloat64("ATTENDANCE_HALF_DAY_HOURS"),
		SummaryCacheTTL: parseDuration(v.GetString("ATTENDANCE_SUMMARY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Leave = LeaveConfig{
		CasualDays: v.GetFloat64("LEAVE_CASUAL_DAYS"),
		SickDays:   v.GetFloat64("LEAVE_SICK_DAYS"),
		AnnualDays: v.GetFloat64("LEAVE_ANNUAL_DAYS"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:        v.GetBool("SCHEDULER_ENABLED"),
		TriggerAt:      v.GetString("SCHEDULER_TRIGGER_AT"),
		AutoCheckoutAt: v.GetString("SCHEDULER_AUTO_CHECKOUT_AT"),
		LockTTL:        parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 30*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hr_attend")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Defaults preserve the legacy behavior: IST organization, 09:30 late
	// cutoff, four-hour half-day floor.
	v.SetDefault("ATTENDANCE_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("ATTENDANCE_LATE_CUTOFF", "09:30")
	v.SetDefault("ATTENDANCE_HALF_DAY_HOURS", 4.0)
	v.SetDefault("ATTENDANCE_SUMMARY_CACHE_TTL", "5m")

	v.SetDefault("LEAVE_CASUAL_DAYS", 12.0)
	v.SetDefault("LEAVE_SICK_DAYS", 10.0)
	v.SetDefault("LEAVE_ANNUAL_DAYS", 15.0)

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_TRIGGER_AT", "23:55")
	v.SetDefault("SCHEDULER_AUTO_CHECKOUT_AT", "18:30")
	v.SetDefault("SCHEDULER_LOCK_TTL", "30m")
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
