// Package config loads the server configuration from a YAML file with
// environment-variable overrides on top. Durations are kept as strings in
// the file ("15m", "24h") and parsed at wiring time.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		// TTL for the client registration read-through cache.
		ClientCacheTTL string `yaml:"client_cache_ttl"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Issuer struct {
		URL        string `yaml:"url"`
		AccessTTL  string `yaml:"access_ttl"`
		IDTokenTTL string `yaml:"id_token_ttl"`
		CodeTTL    string `yaml:"code_ttl"`
		KeysFile   string `yaml:"keys_file"`
	} `yaml:"issuer"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads path, applies defaults, then lets environment variables win.
// A missing file is not an error: containers often configure everything
// through the environment.
func Load(path string) (*Config, error) {
	var c Config
	// Seeded before unmarshal so an absent key keeps the default while an
	// explicit `migrate: false` still wins.
	c.Flags.Migrate = true
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			// fall through to defaults + env
		default:
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.ClientCacheTTL == "" {
		c.Storage.ClientCacheTTL = "5m"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Issuer.URL == "" {
		c.Issuer.URL = "http://localhost:8080"
	}
	if c.Issuer.AccessTTL == "" {
		c.Issuer.AccessTTL = "15m"
	}
	if c.Issuer.IDTokenTTL == "" {
		c.Issuer.IDTokenTTL = "1h"
	}
	if c.Issuer.CodeTTL == "" {
		c.Issuer.CodeTTL = "10m"
	}
	if c.Issuer.KeysFile == "" {
		c.Issuer.KeysFile = "data/keys/signing.json"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sid"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()
	return &c, nil
}

// Dur parses a config duration string, falling back to def when the string
// is empty or malformed.
func Dur(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// applyEnvOverrides lets the environment win over the YAML file.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("STORAGE_CLIENT_CACHE_TTL"); ok {
		c.Storage.ClientCacheTTL = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("ISSUER_URL"); ok {
		c.Issuer.URL = v
	}
	if v, ok := getEnvStr("ISSUER_ACCESS_TTL"); ok {
		c.Issuer.AccessTTL = v
	}
	if v, ok := getEnvStr("ISSUER_ID_TOKEN_TTL"); ok {
		c.Issuer.IDTokenTTL = v
	}
	if v, ok := getEnvStr("ISSUER_CODE_TTL"); ok {
		c.Issuer.CodeTTL = v
	}
	if v, ok := getEnvStr("ISSUER_KEYS_FILE"); ok {
		c.Issuer.KeysFile = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
