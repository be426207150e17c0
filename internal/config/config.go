// Package config handles meshtool configuration loading and management.
package config

import "time"

// Config holds all meshtool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoaderConfig holds model loading settings.
type LoaderConfig struct {
	DefaultModel           string `yaml:"default_model"` // used when no path is given; empty loads the sphere
	PLYMaxHeaderLines      int    `yaml:"ply_max_header_lines"`
	PLYMaxHeaderLineLength int    `yaml:"ply_max_header_line_length"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Format    string `yaml:"format"`     // "gltf" or "glb" when the output path is omitted
	OutputDir string `yaml:"output_dir"` // where derived output paths are placed
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			PLYMaxHeaderLines:      256,
			PLYMaxHeaderLineLength: 1024,
		},
		Export: ExportConfig{
			Format:    "glb",
			OutputDir: ".",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
