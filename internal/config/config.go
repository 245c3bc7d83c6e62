// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds all server configuration, read from TERMHOST_*
// environment variables. The host key path is the only required
// setting; everything else has a default.
type Settings struct {
	HostKeyPath string `envconfig:"HOST_KEY_PATH" required:"true"`

	ListenAddr string `envconfig:"LISTEN_ADDR" default:":22"`
	APIAddr    string `envconfig:"API_ADDR" default:":8080"`

	DBPath    string `envconfig:"DB_PATH" default:"data/termhost.db"`
	RecordDir string `envconfig:"RECORD_DIR" default:""`

	FrameInterval time.Duration `envconfig:"FRAME_INTERVAL" default:"33ms"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1s"`
	IdleTimeout   time.Duration `envconfig:"IDLE_TIMEOUT" default:"300s"`

	Dev bool `envconfig:"DEV" default:"false"`
}

// Load reads settings from the environment.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("TERMHOST", &s); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &s, nil
}
