package core

import "time"

// RuntimeConfig is handed to applications when the host builds them.
type RuntimeConfig struct {
	ScreenW    int           // Screen width in cells
	ScreenH    int           // Screen height in cells
	TargetStep time.Duration // Fixed simulation step the loop starts with
	Window     WindowID      // Window the application is bound to
	User       string        // Session user, empty for local runs
	Seed       int64         // RNG seed; 0 means the host picks one
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:    80,
		ScreenH:    24,
		TargetStep: time.Second / 60,
	}
}
