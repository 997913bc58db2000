// Package config читает настройки клиента и сервера через viper.
// Значения берутся из флагов, переменных окружения GOPHSYNC_* и файла конфигурации.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iudanet/gophsync/internal/validation"
)

const (
	envPrefix = "GOPHSYNC"

	defaultServerURL       = "http://localhost:8080"
	defaultStorageDir      = "gophsync-data"
	defaultLogLevel        = "info"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabasePath    = "gophsync-server.db"
	defaultJWTTTL          = 24 * time.Hour
	defaultRateLimit       = 600
	defaultRateWindow      = time.Minute
	defaultSyncInterval    = time.Minute
	defaultHealthInterval  = 10 * time.Second
	defaultBackoffBase     = time.Second
	defaultBackoffMax      = 5 * time.Minute
	defaultSyncReadSize    = 500
	defaultSyncBatchSize   = 50
	defaultSyncMaxRetries  = 10
	minSecretLength        = 32
	socketSchemeHTTP       = "ws"
	socketSchemeHTTPSecure = "wss"
)

// ClientConfig настройки клиента синхронизации
type ClientConfig struct {
	ServerURL      string
	SocketURL      string
	AccountID      string
	Token          string
	WorkspaceID    string
	UserID         string
	StorageDir     string
	LogLevel       string
	ReadSize       int
	BatchSize      int
	MaxRetries     int
	SyncInterval   time.Duration
	HealthInterval time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
}

// ServerConfig настройки эталонного сервера
type ServerConfig struct {
	HTTPAddress  string
	DatabasePath string
	JWTSecret    string
	LogLevel     string
	RateLimit    int
	RateWindow   time.Duration
	JWTTTL       time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.url", defaultServerURL)
	v.SetDefault("storage.dir", defaultStorageDir)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("sync.read_size", defaultSyncReadSize)
	v.SetDefault("sync.batch_size", defaultSyncBatchSize)
	v.SetDefault("sync.max_retries", defaultSyncMaxRetries)
	v.SetDefault("sync.interval", defaultSyncInterval)
	v.SetDefault("connection.health_interval", defaultHealthInterval)
	v.SetDefault("connection.backoff_base", defaultBackoffBase)
	v.SetDefault("connection.backoff_max", defaultBackoffMax)

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("jwt.ttl", defaultJWTTTL)
	v.SetDefault("http.rate_limit", defaultRateLimit)
	v.SetDefault("http.rate_window", defaultRateWindow)
}

// LoadClient parses client configuration from viper.
func LoadClient(v *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		ServerURL:      strings.TrimRight(v.GetString("server.url"), "/"),
		SocketURL:      strings.TrimRight(v.GetString("server.socket_url"), "/"),
		AccountID:      v.GetString("account.id"),
		Token:          v.GetString("account.token"),
		WorkspaceID:    v.GetString("workspace.id"),
		UserID:         v.GetString("workspace.user_id"),
		StorageDir:     v.GetString("storage.dir"),
		LogLevel:       v.GetString("log.level"),
		ReadSize:       v.GetInt("sync.read_size"),
		BatchSize:      v.GetInt("sync.batch_size"),
		MaxRetries:     v.GetInt("sync.max_retries"),
		SyncInterval:   v.GetDuration("sync.interval"),
		HealthInterval: v.GetDuration("connection.health_interval"),
		BackoffBase:    v.GetDuration("connection.backoff_base"),
		BackoffMax:     v.GetDuration("connection.backoff_max"),
	}

	if cfg.SocketURL == "" {
		socketURL, err := SocketURLFor(cfg.ServerURL)
		if err != nil {
			return ClientConfig{}, err
		}
		cfg.SocketURL = socketURL
	}

	if err := cfg.validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// DatabasePath returns the bbolt file of the workspace replica.
func (c ClientConfig) DatabasePath() string {
	return filepath.Join(c.StorageDir, c.WorkspaceID+".db")
}

func (c ClientConfig) validate() error {
	if strings.TrimSpace(c.AccountID) == "" {
		return fmt.Errorf("account.id is required")
	}
	if strings.TrimSpace(c.WorkspaceID) == "" {
		return fmt.Errorf("workspace.id is required")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("workspace.user_id is required")
	}
	if err := validation.ValidateIdentifier("account.id", c.AccountID); err != nil {
		return err
	}
	if err := validation.ValidateIdentifier("workspace.id", c.WorkspaceID); err != nil {
		return err
	}
	if err := validation.ValidateIdentifier("workspace.user_id", c.UserID); err != nil {
		return err
	}
	if strings.TrimSpace(c.StorageDir) == "" {
		return fmt.Errorf("storage.dir is required")
	}
	if c.ReadSize <= 0 || c.BatchSize <= 0 || c.MaxRetries <= 0 {
		return fmt.Errorf("sync.read_size, sync.batch_size and sync.max_retries must be positive")
	}
	if c.BatchSize > c.ReadSize {
		return fmt.Errorf("sync.batch_size must not exceed sync.read_size")
	}
	if c.BackoffBase <= 0 || c.BackoffMax < c.BackoffBase {
		return fmt.Errorf("connection.backoff_max must be at least connection.backoff_base")
	}
	return nil
}

// LoadServer parses server configuration from viper.
func LoadServer(v *viper.Viper) (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddress:  v.GetString("http.address"),
		DatabasePath: v.GetString("database.path"),
		JWTSecret:    v.GetString("jwt.secret"),
		LogLevel:     v.GetString("log.level"),
		RateLimit:    v.GetInt("http.rate_limit"),
		RateWindow:   v.GetDuration("http.rate_window"),
		JWTTTL:       v.GetDuration("jwt.ttl"),
	}

	if err := cfg.validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func (c ServerConfig) validate() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("jwt.secret must be at least %d characters", minSecretLength)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("http.rate_limit and http.rate_window must be positive")
	}
	return nil
}

// SocketURLFor derives the websocket base url from the HTTP server url.
func SocketURLFor(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server.url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = socketSchemeHTTP
	case "https":
		u.Scheme = socketSchemeHTTPSecure
	default:
		return "", fmt.Errorf("invalid server.url scheme %q", u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
