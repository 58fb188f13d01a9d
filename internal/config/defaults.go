package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 150
	}
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = 150
	}
	if cfg.Render.Workers == 0 {
		cfg.Render.Workers = 4
	}
	if cfg.Render.JPEGQuality == 0 {
		cfg.Render.JPEGQuality = 85
	}
	if cfg.Render.TimeoutSeconds == 0 {
		cfg.Render.TimeoutSeconds = 60
	}
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = "gpt-4o-mini"
	}
	if cfg.Vision.MaxTokens == 0 {
		cfg.Vision.MaxTokens = 1000
	}
	if cfg.Vision.TimeoutSeconds == 0 {
		cfg.Vision.TimeoutSeconds = 120
	}
}
