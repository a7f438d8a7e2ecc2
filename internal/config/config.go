// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/adityapathak/posefit/internal/engine"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Camera   CameraConfig   `yaml:"camera"`
	Tracking TrackingConfig `yaml:"tracking"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CameraConfig struct {
	DeviceID  int `yaml:"device_id"`
	ActiveFPS int `yaml:"active_fps"`
	IdleFPS   int `yaml:"idle_fps"`
	// IdleAfter is how many consecutive still frames drop the capture
	// rate to IdleFPS.
	IdleAfter int `yaml:"idle_after"`
}

type TrackingConfig struct {
	Exercise string `yaml:"exercise"`
	// Window is the moving-average smoothing window in frames.
	Window int `yaml:"window"`
	// MinVisibility is the landmark confidence below which a joint is
	// treated as unmeasured.
	MinVisibility float64 `yaml:"min_visibility"`
	// References is an optional JSON file of calibrated ranges layered
	// over the stored ones at startup.
	References string `yaml:"references"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8930,
		},
		Camera: CameraConfig{
			DeviceID:  0,
			ActiveFPS: 15,
			IdleFPS:   2,
			IdleAfter: 30,
		},
		Tracking: TrackingConfig{
			Exercise:      engine.ExerciseSquat,
			Window:        engine.DefaultWindow,
			MinVisibility: engine.DefaultVisibility,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, ".posefit", "posefit.db"),
		},
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; defaults apply. Env vars use
// the prefix POSEFIT_ and underscore-separated paths:
//
//	POSEFIT_SERVER_HOST, POSEFIT_SERVER_PORT,
//	POSEFIT_CAMERA_DEVICE_ID, POSEFIT_CAMERA_ACTIVE_FPS,
//	POSEFIT_CAMERA_IDLE_FPS, POSEFIT_TRACKING_EXERCISE,
//	POSEFIT_TRACKING_WINDOW, POSEFIT_DB_PATH
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSEFIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("POSEFIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("POSEFIT_CAMERA_DEVICE_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Camera.DeviceID = id
		}
	}
	if v := os.Getenv("POSEFIT_CAMERA_ACTIVE_FPS"); v != "" {
		if fps, err := strconv.Atoi(v); err == nil {
			cfg.Camera.ActiveFPS = fps
		}
	}
	if v := os.Getenv("POSEFIT_CAMERA_IDLE_FPS"); v != "" {
		if fps, err := strconv.Atoi(v); err == nil {
			cfg.Camera.IdleFPS = fps
		}
	}
	if v := os.Getenv("POSEFIT_TRACKING_EXERCISE"); v != "" {
		cfg.Tracking.Exercise = v
	}
	if v := os.Getenv("POSEFIT_TRACKING_WINDOW"); v != "" {
		if w, err := strconv.Atoi(v); err == nil {
			cfg.Tracking.Window = w
		}
	}
	if v := os.Getenv("POSEFIT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Camera.ActiveFPS <= 0 {
		return fmt.Errorf("camera.active_fps must be positive")
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return fmt.Errorf("camera.idle_fps must be positive and at most active_fps")
	}
	if _, ok := engine.LookupExercise(c.Tracking.Exercise); !ok {
		return fmt.Errorf("tracking.exercise %q is not a supported exercise", c.Tracking.Exercise)
	}
	if c.Tracking.Window < 1 {
		return fmt.Errorf("tracking.window must be at least 1")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}
