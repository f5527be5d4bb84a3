package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// DefaultModelBaseURL is where YOLOv10 weights are published
const DefaultModelBaseURL = "https://github.com/THU-MIG/yolov10/releases/download/v1.0"

// Config holds settings shared by every invocation. Per-run parameters come
// from command line flags instead.
type Config struct {
	ModelDir     string `env:"TIMELINE_MODEL_DIR"`
	ModelBaseURL string `env:"TIMELINE_MODEL_BASE_URL" envDefault:"https://github.com/THU-MIG/yolov10/releases/download/v1.0"`
	LogLevel     string `env:"TIMELINE_LOG_LEVEL"      envDefault:"info"`
	FFmpegPath   string `env:"TIMELINE_FFMPEG_PATH"    envDefault:"ffmpeg"`
	FFprobePath  string `env:"TIMELINE_FFPROBE_PATH"   envDefault:"ffprobe"`

	// ModelInputSize is the square input shape of the exported network. It is
	// unrelated to the --img-size downscale threshold.
	ModelInputSize int `env:"TIMELINE_MODEL_INPUT_SIZE" envDefault:"640"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ModelDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		cfg.ModelDir = filepath.Join(cacheDir, "timeline", "models")
	}
	return cfg, nil
}
