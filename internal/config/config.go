package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/holotable/holotable-server-go/internal/game"
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// ServerConfig configures the network surface.
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	ReplayDir       string          `mapstructure:"replay_dir"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// WebSocketConfig configures the websocket endpoint.
type WebSocketConfig struct {
	Address         string        `mapstructure:"address"`
	Path            string        `mapstructure:"path"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the PostgreSQL pool used for game statistics.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// DSN returns the connection string for the database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// EngineConfig holds the per-game engine settings.
type EngineConfig struct {
	SnapshotTurnsToKeep int    `mapstructure:"snapshot_turns_to_keep"`
	RollbackAllowed     bool   `mapstructure:"rollback_allowed"`
	PriorityOrder       string `mapstructure:"priority_order"`
	StartingHandSize    int    `mapstructure:"starting_hand_size"`
	Seed                uint64 `mapstructure:"seed"`
	MaxStepsPerRun      int    `mapstructure:"max_steps_per_run"`
}

// GameConfig converts the settings for the engine.
func (e EngineConfig) GameConfig() game.Config {
	return game.Config{
		SnapshotTurnsToKeep: e.SnapshotTurnsToKeep,
		RollbackAllowed:     e.RollbackAllowed,
		PriorityOrder:       e.PriorityOrder,
		StartingHandSize:    e.StartingHandSize,
		Seed:                e.Seed,
		MaxStepsPerRun:      e.MaxStepsPerRun,
	}
}

// CatalogConfig locates the card catalog. An empty path uses the built-in set.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.replay_dir", "replays")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "holotable")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	defaults := game.DefaultConfig()
	v.SetDefault("engine.snapshot_turns_to_keep", defaults.SnapshotTurnsToKeep)
	v.SetDefault("engine.rollback_allowed", defaults.RollbackAllowed)
	v.SetDefault("engine.priority_order", defaults.PriorityOrder)
	v.SetDefault("engine.starting_hand_size", defaults.StartingHandSize)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.max_steps_per_run", defaults.MaxStepsPerRun)

	v.SetDefault("catalog.path", "")
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist. HOLOTABLE_* environment variables override both,
// e.g. HOLOTABLE_LOGGING_LEVEL=debug.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HOLOTABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	if c.Server.WebSocket.Address == "" {
		return errors.New("websocket address is required")
	}
	if !strings.HasPrefix(c.Server.WebSocket.Path, "/") {
		return fmt.Errorf("websocket path must start with /, got %q", c.Server.WebSocket.Path)
	}
	if c.Database.Enabled {
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("database host and name are required")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database min_conns %d exceeds max_conns %d", c.Database.MinConns, c.Database.MaxConns)
		}
	}
	if err := c.Engine.GameConfig().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
