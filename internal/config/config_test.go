package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holotable/holotable-server-go/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.WebSocket.Address)
	assert.Equal(t, "/ws", cfg.Server.WebSocket.Path)
	assert.Equal(t, 30*time.Second, cfg.Server.WebSocket.PingInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "", cfg.Catalog.Path)
	assert.Equal(t, game.DefaultConfig(), cfg.Engine.GameConfig())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  websocket:
    address: ":9000"
    allowed_origins: ["https://holotable.example"]
  replay_dir: /var/lib/holotable/replays
logging:
  level: debug
  format: json
database:
  enabled: true
  host: db
  name: swccg
  max_conns: 4
  max_conn_lifetime: 30m
engine:
  snapshot_turns_to_keep: 2
  rollback_allowed: false
  priority_order: opponent_first
  starting_hand_size: 6
  seed: 42
catalog:
  path: cards/premiere.yaml
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.WebSocket.Address)
	assert.Equal(t, []string{"https://holotable.example"}, cfg.Server.WebSocket.AllowedOrigins)
	assert.Equal(t, "/var/lib/holotable/replays", cfg.Server.ReplayDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, "postgres://postgres:postgres@db:5432/swccg?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "cards/premiere.yaml", cfg.Catalog.Path)

	engine := cfg.Engine.GameConfig()
	assert.Equal(t, 2, engine.SnapshotTurnsToKeep)
	assert.False(t, engine.RollbackAllowed)
	assert.Equal(t, game.PriorityOpponentFirst, engine.PriorityOrder)
	assert.Equal(t, 6, engine.StartingHandSize)
	assert.Equal(t, uint64(42), engine.Seed)
	assert.Equal(t, game.DefaultConfig().MaxStepsPerRun, engine.MaxStepsPerRun)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")
	t.Setenv("HOLOTABLE_LOGGING_LEVEL", "error")
	t.Setenv("HOLOTABLE_ENGINE_STARTING_HAND_SIZE", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Engine.StartingHandSize)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"log level", "logging:\n  level: loud\n"},
		{"log format", "logging:\n  format: xml\n"},
		{"websocket path", "server:\n  websocket:\n    path: ws\n"},
		{"database pool", "database:\n  enabled: true\n  min_conns: 5\n  max_conns: 2\n"},
		{"priority order", "engine:\n  priority_order: random\n"},
		{"snapshot turns", "engine:\n  snapshot_turns_to_keep: 0\n"},
		{"malformed", "logging: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
