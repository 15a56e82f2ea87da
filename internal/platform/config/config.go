package config

import (
	"time"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Web      WebConfig      `yaml:"web"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	IP    string     `yaml:"ip"`
	Port  int        `yaml:"port"`
	Token string     `yaml:"token"`
	Auth  AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Port      int      `yaml:"port"`
	StaticDir string   `yaml:"static_dir"`
	Origins   []string `yaml:"origins"`
}

// AnalysisConfig drives the wound-analysis orchestrator and its provider.
type AnalysisConfig struct {
	Provider VisionProviderConfig `yaml:"provider"`
	// Models is the fixed candidate list, highest priority first.
	Models        []string `yaml:"models"`
	KnowledgePath string   `yaml:"knowledge_path"`
}

type VisionProviderConfig struct {
	Type        string  `yaml:"type"`
	BaseURL     string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopP        float64 `yaml:"top_p"`
}

type CacheConfig struct {
	Enabled bool             `yaml:"enabled"`
	Driver  string           `yaml:"driver"`
	TTL     time.Duration    `yaml:"ttl"`
	Redis   CacheRedisConfig `yaml:"redis,omitempty"`
}

type CacheRedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type StorageConfig struct {
	DSN          string `yaml:"dsn"`
	HistoryLimit int    `yaml:"history_limit"`
}

type SecurityConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size"`
	MaxPixels      int64    `yaml:"max_pixels"`
	MaxWidth       int      `yaml:"max_width"`
	MaxHeight      int      `yaml:"max_height"`
	AllowedFormats []string `yaml:"allowed_formats"`
	EnableDeepScan bool     `yaml:"enable_deep_scan"`
}
