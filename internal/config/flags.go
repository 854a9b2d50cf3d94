package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagMaxLights  = flag.Int("max-lights", 0, "Light registry capacity")
	flagWriteCfg   = flag.Bool("write-config", false, "Write the effective config to disk and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigRequested reports whether --write-config was passed. The loaded
// config, with flag overrides applied, should be saved and the program should
// exit without opening a window.
func WriteConfigRequested() bool {
	return *flagWriteCfg
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagMaxLights > 0 {
		cfg.Pipeline.MaxLights = *flagMaxLights
	}
}
