package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const DefaultAttendanceWindowDays = 14

// Conf holds every runtime setting. Values come from the process environment
// (optionally seeded from a .env file) with the defaults below.
var Conf *viper.Viper

// =======================
// ENV LOADER
// =======================
func LoadEnv() *viper.Viper {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" && os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running on a managed platform, using system ENV")
	}

	Conf = New()

	if Conf.GetString("JWT_SECRET") == "" {
		log.Println("❌ JWT_SECRET is not set!")
	} else {
		log.Println("✅ JWT_SECRET loaded.")
	}
	if Conf.GetString("SENDGRID_API_KEY") == "" {
		log.Println("[INFO] SENDGRID_API_KEY not set, e-mail goes to the console mailer")
	}
	return Conf
}

// New builds a viper instance over the current environment. Tests call it
// directly after setting env vars.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("APP_NAME", "Dansstudio")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Europe/Amsterdam")
	v.SetDefault("PORT", "3000")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_STATEMENT_TIMEOUT_MS", 3000)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("ATTENDANCE_EDIT_WINDOW_DAYS", DefaultAttendanceWindowDays)

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@dansstudio.local")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("NOTIFY_TIMEOUT", 10*time.Second)

	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("BUILD", "dev")

	v.AutomaticEnv()
	return v
}

func GetEnv(key string, defaultValue ...string) string {
	if Conf != nil {
		if s := strings.TrimSpace(Conf.GetString(key)); s != "" {
			return s
		}
	}
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func IsProduction() bool {
	return strings.EqualFold(GetEnv("APP_ENV"), "production")
}

// AttendanceWindowDays is how many days after a lesson non-admin staff may
// still record attendance.
func AttendanceWindowDays() int {
	if Conf != nil {
		if n := Conf.GetInt("ATTENDANCE_EDIT_WINDOW_DAYS"); n > 0 {
			return n
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("ATTENDANCE_EDIT_WINDOW_DAYS"))); err == nil && n > 0 {
		return n
	}
	return DefaultAttendanceWindowDays
}

// NotifyTimeout bounds one notification fan-out.
func NotifyTimeout() time.Duration {
	if Conf != nil {
		if d := Conf.GetDuration("NOTIFY_TIMEOUT"); d > 0 {
			return d
		}
	}
	return 10 * time.Second
}

// RateLimitPerMinute is the per-caller request allowance for the general API.
func RateLimitPerMinute() int { return positiveInt("RATE_LIMIT_PER_MINUTE", 120) }

// BulkRateLimitPerMinute caps batch writes (attendance bulk, payroll runs) per caller.
func BulkRateLimitPerMinute() int { return positiveInt("BULK_RATE_LIMIT_PER_MINUTE", 20) }

func positiveInt(key string, def int) int {
	if Conf != nil {
		if n := Conf.GetInt(key); n > 0 {
			return n
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n > 0 {
		return n
	}
	return def
}

// Location returns the studio calendar timezone used for lesson-date math.
func Location() *time.Location {
	loc, err := time.LoadLocation(GetEnv("APP_TIMEZONE", "Europe/Amsterdam"))
	if err != nil {
		return time.UTC
	}
	return loc
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if !IsProduction() {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
