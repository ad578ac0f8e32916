package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Local    LocalConfig    `yaml:"local"`
	Redis    RedisConfig    `yaml:"redis"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ServerConfig drives the kernel HTTP API.
type ServerConfig struct {
	Host            string        `yaml:"host"` // ex: "127.0.0.1"
	Port            int           `yaml:"port"` // ex: 8731
	Debug           bool          `yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ex: 5s
	CORSOrigins     []string      `yaml:"cors_origins"`     // "*" allows everything

	AllowedHosts []string `yaml:"allowed_hosts"` // optional, restrict access to specific Host headers
	AllowedCIDRS []string `yaml:"allowed_cidrs"` // admin endpoints (/infra, /api/keys) only
	TrustProxy   bool     `yaml:"trust_proxy"`   // true => trust X-Forwarded-For headers

	KeyRateLimit  int           `yaml:"key_rate_limit"`  // POST /api/keys per window and client
	KeyRateWindow time.Duration `yaml:"key_rate_window"` // ex: 1m
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // kernel SQLite file
}

type LogConfig struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Pretty bool   `yaml:"pretty"` // true => zap dev (color), false => zap prod (JSON)
}

// LocalConfig covers the desktop library and the extension agent.
type LocalConfig struct {
	DataDir             string        `yaml:"data_dir"`              // default ~/.arvai
	KVBackend           string        `yaml:"kv_backend"`            // sqlite | redis | memory
	KVPath              string        `yaml:"kv_path"`               // sqlite file, default <data_dir>/local.db
	AgentSocket         string        `yaml:"agent_socket"`          // default <data_dir>/agent.sock
	StatusTTL           time.Duration `yaml:"status_ttl"`            // default 5m
	StatusSweepInterval time.Duration `yaml:"status_sweep_interval"` // 0 disables the sweeper
	FetchTimeout        time.Duration `yaml:"fetch_timeout"`         // page metadata fetch

	// gethomepage.dev files the agent keeps importing, empty disables
	HomepageBookmarks string        `yaml:"homepage_bookmarks"`
	HomepageServices  string        `yaml:"homepage_services"`
	HomepageInterval  time.Duration `yaml:"homepage_interval"` // 0 => import once at startup
}

type RedisConfig struct {
	Addr             string        `yaml:"addr"` // ex: "localhost:6379"
	User             string        `yaml:"user"`
	Password         string        `yaml:"password"`
	PasswordRequired bool          `yaml:"password_required"`
	DB               int           `yaml:"db"`
	KeyPrefix        string        `yaml:"key_prefix"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	PoolSize         int           `yaml:"pool_size"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"` // total time to retry connecting
	RetryInterval    time.Duration `yaml:"retry_interval"`  // initial wait, grows exponentially
	MaxWait          time.Duration `yaml:"max_wait"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	WarnThreshold    int           `yaml:"warn_threshold"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "Arvai Kernel",
			Version: "0.1.0",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8731,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
			AllowedCIDRS:    []string{"127.0.0.1/32", "::1/128"},
			KeyRateLimit:    10,
			KeyRateWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Path: "./data/arvai.db",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Local: LocalConfig{
			DataDir:      defaultDataDir(),
			KVBackend:    kv.BackendSQLite,
			StatusTTL:    5 * time.Minute,
			FetchTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			KeyPrefix:      kv.DefaultKeyPrefix,
			DialTimeout:    5 * time.Second,
			ReadTimeout:    3 * time.Second,
			WriteTimeout:   3 * time.Second,
			PoolSize:       10,
			ConnectTimeout: 30 * time.Second,
			RetryInterval:  2 * time.Second,
			MaxWait:        10 * time.Second,
			PingTimeout:    5 * time.Second,
			WarnThreshold:  3,
		},
	}
}

// Load builds the configuration from, in increasing priority: defaults, the
// YAML file (ARVAI_CONFIG or ./config.yaml), then ARVAI_* environment
// variables. A .env file in the working directory is loaded first; variables
// already set in the environment win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := configFile(); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.fillDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.Log.Level == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg, nil
}

// configFile returns the YAML file to read, or "" when there is none.
func configFile() string {
	if p := os.Getenv("ARVAI_CONFIG"); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// App
	c.App.Name = getenv("ARVAI_APP_NAME", c.App.Name)

	// Server
	c.Server.Host = getenv("ARVAI_SERVER_HOST", c.Server.Host)
	c.Server.Port = getenvInt("ARVAI_SERVER_PORT", c.Server.Port)
	c.Server.Debug = mustBool("ARVAI_SERVER_DEBUG", c.Server.Debug)
	c.Server.ShutdownTimeout = mustDuration("ARVAI_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.CORSOrigins = getenvSlice("ARVAI_SERVER_CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.AllowedHosts = getenvSlice("ARVAI_ALLOWED_HOSTS", c.Server.AllowedHosts)
	c.Server.AllowedCIDRS = getenvSlice("ARVAI_ALLOWED_CIDRS", c.Server.AllowedCIDRS)
	c.Server.TrustProxy = mustBool("ARVAI_TRUST_PROXY", c.Server.TrustProxy)
	c.Server.KeyRateLimit = getenvInt("ARVAI_KEY_RATE_LIMIT", c.Server.KeyRateLimit)
	c.Server.KeyRateWindow = mustDuration("ARVAI_KEY_RATE_WINDOW", c.Server.KeyRateWindow)

	// Database
	c.Database.Path = getenv("ARVAI_DATABASE_PATH", c.Database.Path)

	// Logging
	c.Log.Level = getenv("ARVAI_LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = mustBool("ARVAI_PRETTY_LOG", c.Log.Pretty)

	// Local state
	c.Local.DataDir = getenv("ARVAI_DATA_DIR", c.Local.DataDir)
	c.Local.KVBackend = getenv("ARVAI_KV_BACKEND", c.Local.KVBackend)
	c.Local.KVPath = getenv("ARVAI_KV_PATH", c.Local.KVPath)
	c.Local.AgentSocket = getenv("ARVAI_AGENT_SOCKET", c.Local.AgentSocket)
	c.Local.StatusTTL = mustDuration("ARVAI_STATUS_TTL", c.Local.StatusTTL)
	c.Local.StatusSweepInterval = mustDuration("ARVAI_STATUS_SWEEP_INTERVAL", c.Local.StatusSweepInterval)
	c.Local.FetchTimeout = mustDuration("ARVAI_FETCH_TIMEOUT", c.Local.FetchTimeout)
	c.Local.HomepageBookmarks = getenv("ARVAI_HOMEPAGE_BOOKMARKS", c.Local.HomepageBookmarks)
	c.Local.HomepageServices = getenv("ARVAI_HOMEPAGE_SERVICES", c.Local.HomepageServices)
	c.Local.HomepageInterval = mustDuration("ARVAI_HOMEPAGE_INTERVAL", c.Local.HomepageInterval)

	// Redis
	c.Redis.Addr = getenv("ARVAI_REDIS_ADDR", c.Redis.Addr)
	c.Redis.User = getenv("ARVAI_REDIS_USERNAME", c.Redis.User)
	c.Redis.Password = getenv("ARVAI_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.PasswordRequired = mustBool("ARVAI_REDIS_PASSWORD_REQUIRED", c.Redis.PasswordRequired)
	c.Redis.DB = getenvInt("ARVAI_REDIS_DB", c.Redis.DB)
	c.Redis.KeyPrefix = getenv("ARVAI_REDIS_KEY_PREFIX", c.Redis.KeyPrefix)
	c.Redis.DialTimeout = mustDuration("REDIS_DIAL_TIMEOUT", c.Redis.DialTimeout)
	c.Redis.ReadTimeout = mustDuration("REDIS_READ_TIMEOUT", c.Redis.ReadTimeout)
	c.Redis.WriteTimeout = mustDuration("REDIS_WRITE_TIMEOUT", c.Redis.WriteTimeout)
	c.Redis.MaxWait = mustDuration("REDIS_MAX_WAIT", c.Redis.MaxWait)
	c.Redis.PingTimeout = mustDuration("REDIS_PING_TIMEOUT", c.Redis.PingTimeout)
	c.Redis.PoolSize = getenvInt("REDIS_POOL_SIZE", c.Redis.PoolSize)
	c.Redis.ConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", c.Redis.ConnectTimeout)
	c.Redis.RetryInterval = mustDuration("REDIS_RETRY_INTERVAL", c.Redis.RetryInterval)
	c.Redis.WarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", c.Redis.WarnThreshold)
}

func (c *Config) fillDerived() {
	c.Local.DataDir = expandHome(c.Local.DataDir)
	if c.Local.KVPath == "" {
		c.Local.KVPath = filepath.Join(c.Local.DataDir, "local.db")
	}
	if c.Local.AgentSocket == "" {
		c.Local.AgentSocket = filepath.Join(c.Local.DataDir, "agent.sock")
	}
	c.Local.KVPath = expandHome(c.Local.KVPath)
	c.Local.AgentSocket = expandHome(c.Local.AgentSocket)
	c.Database.Path = expandHome(c.Database.Path)
	c.Local.HomepageBookmarks = expandHome(c.Local.HomepageBookmarks)
	c.Local.HomepageServices = expandHome(c.Local.HomepageServices)
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Local.StatusTTL <= 0 {
		return fmt.Errorf("status ttl must be > 0, got %v", c.Local.StatusTTL)
	}
	if c.Local.StatusSweepInterval < 0 {
		return fmt.Errorf("status sweep interval must be >= 0, got %v", c.Local.StatusSweepInterval)
	}
	if c.Local.HomepageInterval < 0 {
		return fmt.Errorf("homepage interval must be >= 0, got %v", c.Local.HomepageInterval)
	}
	for _, cidr := range c.Server.AllowedCIDRS {
		if _, _, err := net.ParseCIDR(cidr); err != nil && net.ParseIP(cidr) == nil {
			return fmt.Errorf("invalid allowed cidr %q", cidr)
		}
	}

	switch strings.ToLower(c.Local.KVBackend) {
	case kv.BackendSQLite, kv.BackendMemory:
	case kv.BackendRedis:
		if c.Redis.PasswordRequired && c.Redis.Password == "" {
			return errors.New("ARVAI_REDIS_PASSWORD is required when ARVAI_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		return fmt.Errorf("unknown kv backend %q", c.Local.KVBackend)
	}
	return nil
}

// ListenAddr is the kernel's host:port.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ServerURL is the origin clients use to reach the kernel.
func (c *Config) ServerURL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
}

// KVOptions maps the local settings onto kv.Open.
func (c *Config) KVOptions() kv.Options {
	return kv.Options{
		Backend:    c.Local.KVBackend,
		SQLitePath: c.Local.KVPath,
		Redis: kv.RedisOptions{
			Addr:           c.Redis.Addr,
			User:           c.Redis.User,
			Password:       c.Redis.Password,
			DB:             c.Redis.DB,
			KeyPrefix:      c.Redis.KeyPrefix,
			DialTimeout:    c.Redis.DialTimeout,
			ReadTimeout:    c.Redis.ReadTimeout,
			WriteTimeout:   c.Redis.WriteTimeout,
			PoolSize:       c.Redis.PoolSize,
			ConnectTimeout: c.Redis.ConnectTimeout,
			RetryInterval:  c.Redis.RetryInterval,
			MaxWait:        c.Redis.MaxWait,
			PingTimeout:    c.Redis.PingTimeout,
			WarnThreshold:  c.Redis.WarnThreshold,
		},
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.Redis.Password != "" {
		cp.Redis.Password = "***REDACTED***"
	}
	if cp.Redis.User != "" {
		cp.Redis.User = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvSlice(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitAndTrim(v)
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arvai"
	}
	return filepath.Join(home, ".arvai")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
