// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// PipelineConfig holds batching and lighting settings.
type PipelineConfig struct {
	// Batch staging buffer sizing, in vertices.
	BatchInitialVertices int `yaml:"batch_initial_vertices"`
	BatchMaxVertices     int `yaml:"batch_max_vertices"`

	// Light registry capacity and per-frame upload cap.
	MaxLights       int `yaml:"max_lights"`
	MaxUploadLights int `yaml:"max_upload_lights"`

	// Minimum intensity*radius/(1+distance) for a light to be uploaded.
	LightRelevance float32 `yaml:"light_relevance"`

	// Default search radius for junction queries, world units.
	JunctionRadius float32 `yaml:"junction_radius"`
}

// DataConfig holds asset file paths.
type DataConfig struct {
	TextureDirs []string `yaml:"texture_dirs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Pipeline: PipelineConfig{
			BatchInitialVertices: 4096,
			BatchMaxVertices:     262144,
			MaxLights:            256,
			MaxUploadLights:      32,
			LightRelevance:       0.05,
			JunctionRadius:       10.0,
		},
		Data: DataConfig{
			TextureDirs: []string{"assets/textures"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
