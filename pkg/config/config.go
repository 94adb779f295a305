package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sipeed/mediapaste/pkg/accept"
)

type Config struct {
	Editor  EditorConfig  `json:"editor"`
	Storage StorageConfig `json:"storage"`
	Upload  UploadConfig  `json:"upload"`
	Logging LoggingConfig `json:"logging"`
	mu      sync.RWMutex
}

type EditorConfig struct {
	UploadingLabel  string `json:"uploading_label" env:"MEDIAPASTE_EDITOR_UPLOADING_LABEL"`
	ImageAlt        string `json:"image_alt" env:"MEDIAPASTE_EDITOR_IMAGE_ALT"`
	Multiple        bool   `json:"multiple" env:"MEDIAPASTE_EDITOR_MULTIPLE"`
	Accept          string `json:"accept" env:"MEDIAPASTE_EDITOR_ACCEPT"`
	ContinueOnError bool   `json:"continue_on_error" env:"MEDIAPASTE_EDITOR_CONTINUE_ON_ERROR"`
}

type StorageConfig struct {
	Root    string `json:"root" env:"MEDIAPASTE_STORAGE_ROOT"`
	BaseURL string `json:"base_url" env:"MEDIAPASTE_STORAGE_BASE_URL"`
}

type UploadConfig struct {
	Endpoint       string `json:"endpoint" env:"MEDIAPASTE_UPLOAD_ENDPOINT"`
	Token          string `json:"token" env:"MEDIAPASTE_UPLOAD_TOKEN"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"MEDIAPASTE_UPLOAD_TIMEOUT_SECONDS"`
}

type LoggingConfig struct {
	Level           string `json:"level" env:"MEDIAPASTE_LOGGING_LEVEL"`
	FileEnabled     bool   `json:"file_enabled" env:"MEDIAPASTE_LOGGING_FILE_ENABLED"`
	FilePath        string `json:"file_path" env:"MEDIAPASTE_LOGGING_FILE_PATH"`
	RotationEnabled bool   `json:"rotation_enabled" env:"MEDIAPASTE_LOGGING_ROTATION_ENABLED"`
	MaxAgeDays      int    `json:"max_age_days" env:"MEDIAPASTE_LOGGING_MAX_AGE_DAYS"`
	MaxSizeMB       int    `json:"max_size_mb" env:"MEDIAPASTE_LOGGING_MAX_SIZE_MB"`
}

func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			UploadingLabel: "Uploading image...",
			ImageAlt:       "image",
			Multiple:       true,
			Accept:         "image/*",
		},
		Storage: StorageConfig{
			Root: "~/.mediapaste/attachments",
		},
		Upload: UploadConfig{
			TimeoutSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:           "info",
			FileEnabled:     false,
			FilePath:        "~/.mediapaste/logs/mediapaste.log",
			RotationEnabled: true,
			MaxAgeDays:      7,
			MaxSizeMB:       50,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.Upload.Token = resolveEnvRef(cfg.Upload.Token)
	cfg.Upload.Endpoint = resolveEnvRef(cfg.Upload.Endpoint)
	cfg.Storage.BaseURL = resolveEnvRef(cfg.Storage.BaseURL)

	return cfg, nil
}

// resolveEnvRef expands a "${VAR}" or "$VAR" value from the environment so
// secrets can stay out of the config file. Unset variables are left as is.
func resolveEnvRef(v string) string {
	s := strings.TrimSpace(v)
	var key string
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		key = strings.TrimSpace(s[2 : len(s)-1])
	case strings.HasPrefix(s, "$") && len(s) > 1:
		key = strings.TrimSpace(s[1:])
	default:
		return v
	}
	if key == "" {
		return v
	}
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return v
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Policy returns the default acceptance policy for editor commands.
func (c *Config) Policy() accept.Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return accept.Policy{Multiple: c.Editor.Multiple, Accept: c.Editor.Accept}
}

func (c *Config) StorageRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.Storage.Root)
}

func (c *Config) UploadTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Upload.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Upload.TimeoutSeconds) * time.Second
}

func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
