package extension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/auth"
	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// ConnectionKey is the kv key holding the connection config.
const ConnectionKey = "arvai_connection"

var (
	ErrInvalidConnectionURL = errors.New("invalid connection URL")
	ErrServerUnreachable    = errors.New("cannot reach the Arvai server")
	ErrInvalidAPIKey        = errors.New("invalid API key")
	ErrNotConnected         = errors.New("not connected")
)

// ConnectionConfig is the persisted link to a kernel.
type ConnectionConfig struct {
	Server       string     `json:"server"`
	APIKey       string     `json:"apiKey"`
	Connected    bool       `json:"connected"`
	LastVerified *time.Time `json:"lastVerified,omitempty"`
}

// ConnectionPatch overwrites the non-nil fields of a stored config.
type ConnectionPatch struct {
	Server       *string
	APIKey       *string
	Connected    *bool
	LastVerified *time.Time
}

type ParsedConnection struct {
	Server string
	APIKey string
}

// ParseConnectionURL splits "http://127.0.0.1:8731/?key=arvai_xxx" into the
// server origin and the key. Only http and https kernels are accepted.
func ParseConnectionURL(raw string) (ParsedConnection, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return ParsedConnection{}, false
	}
	origin, ok := originOf(u)
	if !ok {
		return ParsedConnection{}, false
	}

	key := u.Query().Get("key")
	if !auth.HasValidPrefix(key) {
		return ParsedConnection{}, false
	}

	return ParsedConnection{
		Server: origin,
		APIKey: key,
	}, true
}

// originOf serializes scheme, host and non-default port like a browser
// origin: lower-cased, ":80"/":443" dropped.
func originOf(u *url.URL) (string, bool) {
	scheme := strings.ToLower(u.Scheme)
	var defaultPort string
	switch scheme {
	case "http":
		defaultPort = "80"
	case "https":
		defaultPort = "443"
	default:
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPort {
		host += ":" + port
	}
	return scheme + "://" + host, true
}

func IsValidConnectionURL(raw string) bool {
	_, ok := ParseConnectionURL(raw)
	return ok
}

// BuildConnectionURL is the inverse of ParseConnectionURL.
func BuildConnectionURL(server, key string) (string, error) {
	u, err := url.Parse(server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidConnectionURL, server)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ConnectionManager reads and writes the connection config and runs the
// connect handshake.
type ConnectionManager struct {
	store     kv.Store
	newClient ClientFactory
	logger    logger.Logger
	now       func() time.Time
}

func NewConnectionManager(store kv.Store, clients ClientFactory, log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		store:     store,
		newClient: clients,
		logger:    log,
		now:       time.Now,
	}
}

// Get returns the stored config, or nil when there is none. A blob that does
// not decode is treated as absent.
func (m *ConnectionManager) Get(ctx context.Context) (*ConnectionConfig, error) {
	data, err := m.store.Load(ctx, ConnectionKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load connection: %w", err)
	}

	var cfg ConnectionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		m.logger.Debug("ignoring unreadable connection config", logger.Error(err))
		return nil, nil
	}
	return &cfg, nil
}

func (m *ConnectionManager) Save(ctx context.Context, cfg ConnectionConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, ConnectionKey, data); err != nil {
		return fmt.Errorf("save connection: %w", err)
	}
	return nil
}

func (m *ConnectionManager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, ConnectionKey); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("clear connection: %w", err)
	}
	return nil
}

// Update merges p into the stored config. It returns nil, and writes nothing,
// when no config is stored.
func (m *ConnectionManager) Update(ctx context.Context, p ConnectionPatch) (*ConnectionConfig, error) {
	cfg, err := m.Get(ctx)
	if err != nil || cfg == nil {
		return nil, err
	}

	if p.Server != nil {
		cfg.Server = *p.Server
	}
	if p.APIKey != nil {
		cfg.APIKey = *p.APIKey
	}
	if p.Connected != nil {
		cfg.Connected = *p.Connected
	}
	if p.LastVerified != nil {
		cfg.LastVerified = p.LastVerified
	}

	if err := m.Save(ctx, *cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Connect verifies the server and the key behind a connection URL, then
// stores the connection. Nothing is written when a check fails.
func (m *ConnectionManager) Connect(ctx context.Context, connectionURL string) (*ConnectionConfig, error) {
	parsed, ok := ParseConnectionURL(connectionURL)
	if !ok {
		return nil, ErrInvalidConnectionURL
	}

	api := m.newClient(parsed.Server, parsed.APIKey)

	if _, err := api.Health(ctx); err != nil {
		m.logger.Debug("health probe failed", logger.String("server", parsed.Server), logger.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrServerUnreachable, parsed.Server)
	}

	valid, err := api.VerifyAPIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify api key: %w", err)
	}
	if !valid {
		return nil, ErrInvalidAPIKey
	}

	now := m.now().UTC()
	cfg := ConnectionConfig{
		Server:       parsed.Server,
		APIKey:       parsed.APIKey,
		Connected:    true,
		LastVerified: &now,
	}
	if err := m.Save(ctx, cfg); err != nil {
		return nil, err
	}

	m.logger.Info("connected to arvai server",
		logger.String("server", cfg.Server),
		logger.String("key_prefix", auth.DisplayPrefix(cfg.APIKey)))
	return &cfg, nil
}

func (m *ConnectionManager) Disconnect(ctx context.Context) error {
	if err := m.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info("disconnected from arvai server")
	return nil
}
