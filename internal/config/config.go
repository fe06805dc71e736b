// Package config handles demo configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate for values the demo cannot run with.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all demo settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Crowd    CrowdConfig    `yaml:"crowd"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOVDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	// Sun angles in degrees; longitude around Y from +Z, latitude above the horizon.
	SunLongitude float32 `yaml:"sun_longitude"`
	SunLatitude  float32 `yaml:"sun_latitude"`
}

// CrowdConfig holds army and batching settings.
type CrowdConfig struct {
	InitialInstances    int     `yaml:"initial_instances"`
	Seed                uint64  `yaml:"seed"` // 0 picks a time-based seed
	ShaderInstanceLimit int     `yaml:"shader_instance_limit"`
	CullWorkers         int     `yaml:"cull_workers"`
	TargetThresholdNear float32 `yaml:"target_threshold_near"`
	TargetThresholdFar  float32 `yaml:"target_threshold_far"`
	SpawnCount          int     `yaml:"spawn_count"`   // instances spawned without a placement file
	SpawnSpacing        float32 `yaml:"spawn_spacing"` // grid spacing without a placement file
}

// DataConfig holds asset paths, relative to AssetRoot. Empty paths select
// the built-in procedural model.
type DataConfig struct {
	AssetRoot        string `yaml:"asset_root"`
	ClipManifest     string `yaml:"clip_manifest"`
	AnimationTexture string `yaml:"animation_texture"`
	Placements       string `yaml:"placements"`
	ScreenshotDir    string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	// Rotation limits for log_file; zero keeps the logger defaults.
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOVDegrees: 45,
			Near:       1,
			Far:        10000,

			SunLongitude: 40,
			SunLatitude:  55,
		},
		Crowd: CrowdConfig{
			InitialInstances:    1000,
			ShaderInstanceLimit: 47,
			CullWorkers:         1,
			TargetThresholdNear: 15000,
			TargetThresholdFar:  50000,
			SpawnCount:          4096,
			SpawnSpacing:        6,
		},
		Data: DataConfig{
			AssetRoot:     "data",
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the demo cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FOVDegrees <= 0 || c.Graphics.FOVDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %v", ErrInvalidConfig, c.Graphics.FOVDegrees)
	case c.Graphics.Near <= 0 || c.Graphics.Far <= c.Graphics.Near:
		return fmt.Errorf("%w: clip planes near %v far %v", ErrInvalidConfig, c.Graphics.Near, c.Graphics.Far)
	case c.Graphics.SunLatitude <= 0 || c.Graphics.SunLatitude > 90:
		return fmt.Errorf("%w: sun_latitude %v", ErrInvalidConfig, c.Graphics.SunLatitude)
	case c.Crowd.ShaderInstanceLimit <= 0:
		return fmt.Errorf("%w: shader_instance_limit %d", ErrInvalidConfig, c.Crowd.ShaderInstanceLimit)
	case c.Crowd.InitialInstances < 0:
		return fmt.Errorf("%w: initial_instances %d", ErrInvalidConfig, c.Crowd.InitialInstances)
	case c.Crowd.TargetThresholdFar < c.Crowd.TargetThresholdNear:
		return fmt.Errorf("%w: target thresholds near %v far %v", ErrInvalidConfig,
			c.Crowd.TargetThresholdNear, c.Crowd.TargetThresholdFar)
	}
	return nil
}
