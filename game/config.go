package game

import (
	"fmt"
	"os"

	"github.com/phanxgames/bramble/watch"
)

// RunConfig configures the game window and loop.
type RunConfig struct {
	Title  string `yaml:"title" validate:"required"`
	Width  int    `yaml:"width" validate:"min=64,max=7680"`
	Height int    `yaml:"height" validate:"min=64,max=4320"`
	// TPS is the number of scheduler steps per second.
	TPS int `yaml:"tps" validate:"min=1,max=240"`
	// Debug enables debug checks in bramble and the scene.
	Debug bool `yaml:"debug"`
	// Overlay draws the FPS counter and a dump of the scene tree.
	Overlay bool `yaml:"overlay"`
}

// DefaultRunConfig returns the configuration used when no file is given.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:   "bramble",
		Width:   640,
		Height:  480,
		TPS:     60,
		Overlay: true,
	}
}

// ParseRunConfig decodes YAML over the defaults and validates the result.
func ParseRunConfig(data []byte) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if err := watch.Decode(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("game: run config: %w", err)
	}
	return cfg, nil
}

// LoadRunConfig reads and parses a YAML run config file.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("game: run config: %w", err)
	}
	return ParseRunConfig(data)
}
