package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/fixstep.yaml
var defaultYAML []byte

// FileName is the configuration file name searched for by Load.
const FileName = "fixstep.yaml"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Loop: LoopConfig{
			TargetFPS:    60,
			MaxFrameTime: 250 * time.Millisecond,
			PollInterval: 4 * time.Millisecond,
		},
		Input: InputConfig{
			KeyReleaseDelay: 500 * time.Millisecond,
			ScrollPolicy:    "accumulate",
			CloseKeys:       []string{"ctrl+c"},
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.fixstep/fixstep.log",
		},
		Storage: StorageConfig{
			DBPath: "~/.fixstep/runs.db",
		},
		SSH: SSHConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
			DefaultApp:  "bounce",
		},
	}
}

// Load loads the configuration.
// Search order: customPath -> ~/.fixstep/fixstep.yaml -> ./configs/fixstep.yaml -> embedded default.
// Files are overlaid on the defaults, so they only need the keys they change.
func Load(customPath string) (Config, error) {
	cfg := embedded()

	if customPath != "" {
		data, err := os.ReadFile(ExpandHome(customPath))
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath(), filepath.Join("configs", FileName)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		next := cfg
		if err := yaml.Unmarshal(data, &next); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
		return next, nil
	}

	return cfg, nil
}

func embedded() Config {
	cfg := Default()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default() // Fallback to hardcoded if embed fails
	}
	return cfg
}

// userConfigPath returns the path to the user config file, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fixstep", FileName)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
