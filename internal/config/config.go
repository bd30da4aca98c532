package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort           = 2333
	defaultEnv            = "development"
	defaultDBHost         = "127.0.0.1"
	defaultDBPort         = 3306
	defaultDBUser         = "root"
	defaultDBPassword     = "password"
	defaultDBName         = "berea"
	defaultDBCharset      = "utf8mb4"
	defaultRedisURL       = "redis://localhost:6379/0"
	defaultRetentionHours = 24
	defaultSweepMinutes   = 60
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig  `yaml:"database"`
	RedisURL       string          `yaml:"redis_url"`
	JWTSecret      string          `yaml:"jwt_secret"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Guide          GuideConfig     `yaml:"guide"`
	AI             AIConfig        `yaml:"ai"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// GuideConfig controls the study-guide cache subsystem: which inputs are
// accepted and how long anonymous ownership records live.
type GuideConfig struct {
	RetentionHours int      `yaml:"retention_hours"`
	SweepMinutes   int      `yaml:"sweep_minutes"`
	PurgeOrphans   bool     `yaml:"purge_orphans"`
	Languages      []string `yaml:"languages"`
}

// RetentionWindow is the lifetime of anonymous ownership records.
func (g GuideConfig) RetentionWindow() time.Duration {
	return time.Duration(g.RetentionHours) * time.Hour
}

// SweepInterval is how often the retention sweeper runs.
func (g GuideConfig) SweepInterval() time.Duration {
	return time.Duration(g.SweepMinutes) * time.Minute
}

type AIConfig struct {
	Providers []AIProvider `yaml:"providers"`
	Model     string       `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // openai | anthropic | openai-compatible
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// Load reads the YAML config file, applies env overrides and defaults.
// A missing file is not an error; env vars and defaults still apply.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// DSN returns the MySQL DSN, built from parts when not given verbatim.
func (c *AppConfig) DSN() string {
	if v := strings.TrimSpace(c.Database.DSN); v != "" {
		return v
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset)
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("BEREA_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("BEREA_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("BEREA_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("BEREA_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("BEREA_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
}

func normalize(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}

	db := &cfg.Database
	db.DSN = strings.TrimSpace(db.DSN)
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Password == "" {
		db.Password = defaultDBPassword
	}
	if db.Name == "" {
		db.Name = defaultDBName
	}
	if db.Charset == "" {
		db.Charset = defaultDBCharset
	}

	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = defaultRedisURL
	}

	g := &cfg.Guide
	if g.RetentionHours <= 0 {
		g.RetentionHours = defaultRetentionHours
	}
	if g.SweepMinutes <= 0 {
		g.SweepMinutes = defaultSweepMinutes
	}
	if len(g.Languages) == 0 {
		g.Languages = []string{"en", "es", "pt", "fr", "de", "zh"}
	}
	for i, lang := range g.Languages {
		g.Languages[i] = strings.ToLower(strings.TrimSpace(lang))
	}
}
