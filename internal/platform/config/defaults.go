package config

import "time"

// Default returns the baseline configuration used when the file omits values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8000,
			Auth: AuthConfig{
				Enabled:  true,
				TokenTTL: time.Hour,
			},
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			Port:      8080,
			StaticDir: "./web",
			Origins:   []string{"*"},
		},
		Analysis: AnalysisConfig{
			Provider: VisionProviderConfig{
				Type:        "openai",
				Temperature: 0.2,
				MaxTokens:   1024,
				TopP:        0.9,
			},
			Models: []string{
				"gemini-2.5-flash",
				"gemini-2.0-flash",
				"gemini-flash-latest",
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Driver:  "memory",
			TTL:     15 * time.Minute,
		},
		Storage: StorageConfig{
			DSN:          "./data/aidpal.db",
			HistoryLimit: 100,
		},
		Security: SecurityConfig{
			MaxFileSize:    5 * 1024 * 1024,
			MaxPixels:      16777216,
			MaxWidth:       4096,
			MaxHeight:      4096,
			AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif"},
			EnableDeepScan: true,
		},
	}
}

func mergeDefaults(cfg *Config) {
	def := Default()

	if cfg.Server.IP == "" {
		cfg.Server.IP = def.Server.IP
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Auth.TokenTTL <= 0 {
		cfg.Server.Auth.TokenTTL = def.Server.Auth.TokenTTL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = def.Log.Dir
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = def.Web.Port
	}
	if cfg.Web.StaticDir == "" {
		cfg.Web.StaticDir = def.Web.StaticDir
	}
	if len(cfg.Web.Origins) == 0 {
		cfg.Web.Origins = def.Web.Origins
	}
	if cfg.Analysis.Provider.Type == "" {
		cfg.Analysis.Provider.Type = def.Analysis.Provider.Type
	}
	if cfg.Analysis.Provider.MaxTokens == 0 {
		cfg.Analysis.Provider.MaxTokens = def.Analysis.Provider.MaxTokens
	}
	if len(cfg.Analysis.Models) == 0 {
		cfg.Analysis.Models = def.Analysis.Models
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = def.Cache.Driver
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = def.Cache.TTL
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = def.Storage.DSN
	}
	if cfg.Storage.HistoryLimit <= 0 {
		cfg.Storage.HistoryLimit = def.Storage.HistoryLimit
	}
	if cfg.Security.MaxFileSize == 0 {
		cfg.Security.MaxFileSize = def.Security.MaxFileSize
	}
	if cfg.Security.MaxPixels == 0 {
		cfg.Security.MaxPixels = def.Security.MaxPixels
	}
	if cfg.Security.MaxWidth == 0 {
		cfg.Security.MaxWidth = def.Security.MaxWidth
	}
	if cfg.Security.MaxHeight == 0 {
		cfg.Security.MaxHeight = def.Security.MaxHeight
	}
	if len(cfg.Security.AllowedFormats) == 0 {
		cfg.Security.AllowedFormats = def.Security.AllowedFormats
	}
}
