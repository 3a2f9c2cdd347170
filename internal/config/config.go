package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"followup/internal/domain/assignment"
	"followup/internal/domain/person"
	"followup/internal/domain/week"
)

// EnvPrefix namespaces every environment override (FOLLOWUP_DB_PATH, ...).
const EnvPrefix = "FOLLOWUP"

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Regenerate policies for a week that already has assignments.
const (
	PolicyStrict  = "strict"
	PolicyReplace = "replace"
)

// Config errors
var (
	ErrInvalidPolicy  = errors.New("assignments.policy must be 'strict' or 'replace'")
	ErrInvalidCSRFKey = errors.New("csrf_key must be 64 hex characters (32 bytes)")
	ErrCSRFKeyMissing = errors.New("csrf_key is required in production")
	ErrInvalidGrace   = errors.New("assignments.undo_grace must be positive")
)

// Admin is the bootstrap administrator seeded on first start.
type Admin struct {
	Email    string
	Password string
	Name     string
	Gender   string
}

// Config is the resolved runtime configuration.
type Config struct {
	Env              string
	Addr             string
	DBPath           string
	LogLevel         string
	CSRFKey          []byte
	WeekStartDay     time.Weekday
	AssignmentPolicy string
	UndoGrace        time.Duration
	SlowQuery        time.Duration
	SlowRequest      time.Duration
	RateLimit        int
	Admin            Admin
}

// IsProduction reports whether Env is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ReplaceByDefault reports whether generation overwrites an existing week
// unless told otherwise.
func (c Config) ReplaceByDefault() bool {
	return c.AssignmentPolicy == PolicyReplace
}

// Options controls where Load looks for configuration.
type Options struct {
	ConfigFile string // explicit YAML/TOML/JSON file; empty searches for followup.* in "."
	DotEnv     string // .env file loaded into the process environment if present
}

// New returns a viper instance with every default registered.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "followup.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("csrf_key", "")
	v.SetDefault("week.start_day", "saturday")
	v.SetDefault("assignments.policy", PolicyStrict)
	v.SetDefault("assignments.undo_grace", assignment.DefaultUndoGrace)
	v.SetDefault("slow_query_ms", 50)
	v.SetDefault("slow_request_ms", 200)
	v.SetDefault("rate_limit", 10)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.gender", person.GenderMale)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads defaults, the optional config file, the optional .env file and
// FOLLOWUP_* environment variables, in increasing precedence.
// POST: Returns a validated Config or an error naming the bad key
func Load(opts Options) (Config, error) {
	dotEnv := opts.DotEnv
	if dotEnv == "" {
		dotEnv = ".env"
	}
	if _, err := os.Stat(dotEnv); err == nil {
		if err := godotenv.Load(dotEnv); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", dotEnv, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", dotEnv, err)
	}

	v := New()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("followup")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper resolves and validates a Config from an already-populated viper.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:              strings.ToLower(v.GetString("env")),
		Addr:             v.GetString("addr"),
		DBPath:           v.GetString("db_path"),
		LogLevel:         v.GetString("log_level"),
		AssignmentPolicy: strings.ToLower(v.GetString("assignments.policy")),
		UndoGrace:        v.GetDuration("assignments.undo_grace"),
		SlowQuery:        time.Duration(v.GetInt("slow_query_ms")) * time.Millisecond,
		SlowRequest:      time.Duration(v.GetInt("slow_request_ms")) * time.Millisecond,
		RateLimit:        v.GetInt("rate_limit"),
		Admin: Admin{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
			Name:     v.GetString("admin.name"),
			Gender:   v.GetString("admin.gender"),
		},
	}

	day, err := week.ParseWeekday(v.GetString("week.start_day"))
	if err != nil {
		return Config{}, fmt.Errorf("week.start_day: %w", err)
	}
	cfg.WeekStartDay = day

	if cfg.AssignmentPolicy != PolicyStrict && cfg.AssignmentPolicy != PolicyReplace {
		return Config{}, ErrInvalidPolicy
	}
	if cfg.UndoGrace <= 0 {
		return Config{}, ErrInvalidGrace
	}

	cfg.CSRFKey, err = resolveCSRFKey(v.GetString("csrf_key"), cfg.IsProduction())
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveCSRFKey decodes a hex key, or outside production generates a random
// one per start.
func resolveCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrInvalidCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, ErrCSRFKeyMissing
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set FOLLOWUP_CSRF_KEY to keep sessions across restarts")
	return key, nil
}
