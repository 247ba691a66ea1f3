package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	EventsMemory = "memory"
	EventsRedis  = "redis"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port                int           `yaml:"port" validate:"min=1,max=65535"`
	AllowWeekdayPosting bool          `yaml:"allow_weekday_posting"`
	CorsOrigins         []string      `yaml:"cors_origins"`
	MaxRequestBodyBytes int64         `yaml:"max_request_body_bytes" validate:"gt=0"`
	HeartbeatInterval   time.Duration `yaml:"heartbeat_interval" validate:"gt=0"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	Storage   Storage   `yaml:"storage"`
	Events    Events    `yaml:"events"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Log       Log       `yaml:"log"`
}

type Storage struct {
	Driver        string        `yaml:"driver" validate:"oneof=sqlite postgres redis"`
	SqlitePath    string        `yaml:"sqlite_path"`
	RedisPrefix   string        `yaml:"redis_prefix" validate:"required"`
	LimitBytes    int64         `yaml:"limit_bytes" validate:"gt=0"`
	Threshold     float64       `yaml:"threshold" validate:"gt=0,lte=1"`
	UsageCacheTTL time.Duration `yaml:"usage_cache_ttl" validate:"gte=0"`
}

type Events struct {
	Driver     string `yaml:"driver" validate:"oneof=memory redis"`
	Channel    string `yaml:"channel" validate:"required"`
	BufferSize int    `yaml:"buffer_size" validate:"gt=0"`
}

// RateLimit applies to the posting endpoints, keyed by client IP.
type RateLimit struct {
	PostsPerSecond float64       `yaml:"posts_per_second" validate:"gte=0"` // 0 disables
	Burst          int           `yaml:"burst" validate:"gte=1"`
	Expiration     time.Duration `yaml:"expiration" validate:"gt=0"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Private struct {
	Pg       Pg     `yaml:"pg"`
	RedisURL string `yaml:"redis_url"`
}

type Pg struct {
	URL      string `yaml:"url"` // takes precedence over the discrete fields
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (p Pg) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Dbname)
}

func Default() *Config {
	return &Config{
		Public: Public{
			Port:                3000,
			CorsOrigins:         []string{"*"},
			MaxRequestBodyBytes: 64 << 10,
			HeartbeatInterval:   30 * time.Second,
			ShutdownTimeout:     10 * time.Second,
			Storage: Storage{
				Driver:        DriverSQLite,
				SqlitePath:    "data/textchan.db",
				RedisPrefix:   "textchan",
				LimitBytes:    1 << 30,
				Threshold:     0.9,
				UsageCacheTTL: 5 * time.Second,
			},
			Events: Events{
				Driver:     EventsMemory,
				Channel:    "textchan:events",
				BufferSize: 64,
			},
			RateLimit: RateLimit{
				PostsPerSecond: 1.0 / 5,
				Burst:          3,
				Expiration:     time.Hour,
			},
			Log: Log{Level: "info"},
		},
		Private: Private{
			Pg: Pg{Host: "localhost", Port: 5432, User: "textchan", Dbname: "textchan"},
		},
	}
}

func loadPath(configPath string, output interface{}, required bool) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if required {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		return nil
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml (required) and private.yaml (optional) from
// configFolder on top of the defaults, then applies environment overrides.
// An empty configFolder skips the files.
func Load(configFolder string) (*Config, error) {
	cfg := Default()
	if configFolder != "" {
		if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg.Public, true); err != nil {
			return nil, err
		}
		if err := loadPath(path.Join(configFolder, "private.yaml"), &cfg.Private, false); err != nil {
			return nil, err
		}
	}

	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v, ok := lookupInt("PORT"); ok {
		cfg.Public.Port = v
	}
	if v, ok := lookupBool("ALLOW_WEEKDAY_POSTING"); ok {
		cfg.Public.AllowWeekdayPosting = v
	}
	if v, ok := lookup("TEXTCHAN_DB_DRIVER"); ok {
		cfg.Public.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("TEXTCHAN_DB_PATH"); ok {
		cfg.Public.Storage.SqlitePath = v
	}
	if v, ok := lookup("TEXTCHAN_EVENTS_DRIVER"); ok {
		cfg.Public.Events.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		cfg.Private.Pg.URL = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		cfg.Private.RedisURL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Public.Log.Level = v
	}
	if v, ok := lookupBool("LOG_JSON"); ok {
		cfg.Public.Log.JSON = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func lookupInt(key string) (int, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func lookupBool(key string) (bool, bool) {
	v, ok := lookup(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
