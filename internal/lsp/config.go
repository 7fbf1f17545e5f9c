package lsp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the server configuration, overridable through the client's
// initializationOptions.
type Config struct {
	// LocalCommand is spawned as the default analysis backend.
	LocalCommand string   `json:"local_command"`
	LocalArgs    []string `json:"local_args"`
	// RemoteAddress, when set, connects to a running engine instead of
	// spawning one.
	RemoteAddress string `json:"remote_address"`
	// StatePath is the sqlite database holding persisted positions.
	StatePath string `json:"state_path"`
	// TimeoutSeconds bounds session establishment.
	TimeoutSeconds int `json:"timeout_seconds"`
}

var defaultConfig = Config{
	LocalCommand:   "sliver-engine",
	StatePath:      filepath.Join(os.TempDir(), "sliver", "state.db"),
	TimeoutSeconds: 10,
}

// LoadConfig overlays the client-provided options onto the defaults. Only
// fields present in v overwrite.
func LoadConfig(v any) (Config, error) {
	cfg := defaultConfig
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal options: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return cfg, nil
}
