package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	ConfigPath     string
	Debug          bool
	LogFile        string
	Debounce       time.Duration
	MaxHeaderLines int
	ExportFormat   string
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file as well")
	fs.DurationVar(&f.Debounce, "debounce", 0, "Delay before reloading a changed file")
	fs.IntVar(&f.MaxHeaderLines, "ply-max-header-lines", 0, "Maximum PLY header lines")
	fs.StringVar(&f.ExportFormat, "format", "", "Export format when no output path is given (gltf, glb)")
	return f
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Debounce > 0 {
		cfg.Watch.Debounce = f.Debounce
	}
	if f.MaxHeaderLines > 0 {
		cfg.Loader.PLYMaxHeaderLines = f.MaxHeaderLines
	}
	if f.ExportFormat != "" {
		cfg.Export.Format = f.ExportFormat
	}
}
