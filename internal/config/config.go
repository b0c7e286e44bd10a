package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resumechat/internal/core"
	"resumechat/internal/util"

	"gopkg.in/yaml.v3"
)

// ServerConfig server configuration
type ServerConfig struct {
	Port    string
	GinMode string

	Chat   ChatSettings
	Static StaticSettings

	CORSAllowOrigins   []string
	MaxChatBodySize    int64
	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
}

// ChatSettings upstream chat configuration
type ChatSettings struct {
	APIKey        string
	Protocol      string
	AssistantID   string
	Model         string
	SystemPrompt  string
	FallbackReply string
	BaseURL       string
	PollInterval  time.Duration
	MaxPollWait   time.Duration
}

// Enabled reports whether an upstream key is configured
func (c ChatSettings) Enabled() bool {
	return c.APIKey != ""
}

// StaticSettings static asset configuration
type StaticSettings struct {
	Root      string
	CleanURLs bool
	MimeTypes map[string]string
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// FileConfig is the optional YAML overlay read from CONFIG_FILE.
// Empty fields leave the defaults untouched.
type FileConfig struct {
	Port string `yaml:"port"`
	Chat struct {
		Protocol      string `yaml:"protocol"`
		AssistantID   string `yaml:"assistant_id"`
		Model         string `yaml:"model"`
		SystemPrompt  string `yaml:"system_prompt"`
		FallbackReply string `yaml:"fallback_reply"`
		BaseURL       string `yaml:"base_url"`
		PollInterval  string `yaml:"poll_interval"`
		MaxPollWait   string `yaml:"max_poll_wait"`
	} `yaml:"chat"`
	Static struct {
		Root      string            `yaml:"root"`
		CleanURLs *bool             `yaml:"clean_urls"`
		MimeTypes map[string]string `yaml:"mime_types"`
	} `yaml:"static"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// DefaultServerConfig returns the built-in defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:    core.DefaultPort,
		GinMode: core.DefaultGinMode,
		Chat: ChatSettings{
			Protocol:      core.ProtocolAssistant,
			AssistantID:   core.DefaultAssistantID,
			Model:         core.DefaultModel,
			SystemPrompt:  core.DefaultSystemPrompt,
			FallbackReply: core.DefaultFallbackReply,
			BaseURL:       core.DefaultUpstreamURL,
			PollInterval:  core.DefaultPollInterval,
			MaxPollWait:   core.DefaultMaxPollWait,
		},
		Static: StaticSettings{
			Root:      core.DefaultStaticRoot,
			CleanURLs: true,
		},
		CORSAllowOrigins:   []string{core.DefaultCORSOrigin},
		MaxChatBodySize:    core.MaxChatBodySize,
		HTTPClientSettings: DefaultHTTPClientSettings(),
	}
}

// LoadFileConfig reads a YAML overlay file
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from operator config, not user input
	if err != nil {
		return fc, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return fc, nil
}

// ApplyFileConfig overlays non-empty file values onto cfg
func ApplyFileConfig(cfg *ServerConfig, fc FileConfig) error {
	setString(&cfg.Port, fc.Port)
	setString(&cfg.Chat.Protocol, fc.Chat.Protocol)
	setString(&cfg.Chat.AssistantID, fc.Chat.AssistantID)
	setString(&cfg.Chat.Model, fc.Chat.Model)
	setString(&cfg.Chat.SystemPrompt, fc.Chat.SystemPrompt)
	setString(&cfg.Chat.FallbackReply, fc.Chat.FallbackReply)
	setString(&cfg.Chat.BaseURL, fc.Chat.BaseURL)
	setString(&cfg.Static.Root, fc.Static.Root)

	if fc.Chat.PollInterval != "" {
		d, err := time.ParseDuration(fc.Chat.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid chat.poll_interval %q: %w", fc.Chat.PollInterval, err)
		}
		cfg.Chat.PollInterval = d
	}
	if fc.Chat.MaxPollWait != "" {
		d, err := time.ParseDuration(fc.Chat.MaxPollWait)
		if err != nil {
			return fmt.Errorf("invalid chat.max_poll_wait %q: %w", fc.Chat.MaxPollWait, err)
		}
		cfg.Chat.MaxPollWait = d
	}
	if fc.Static.CleanURLs != nil {
		cfg.Static.CleanURLs = *fc.Static.CleanURLs
	}
	if len(fc.Static.MimeTypes) > 0 {
		cfg.Static.MimeTypes = make(map[string]string, len(fc.Static.MimeTypes))
		for ext, contentType := range fc.Static.MimeTypes {
			cfg.Static.MimeTypes[normalizeExtension(ext)] = contentType
		}
	}
	if len(fc.CORSAllowOrigins) > 0 {
		cfg.CORSAllowOrigins = fc.CORSAllowOrigins
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg
func ApplyEnv(cfg *ServerConfig) error {
	cfg.Port = util.GetEnvWithDefault("PORT", cfg.Port)
	cfg.GinMode = util.GetEnvWithDefault("GIN_MODE", cfg.GinMode)

	cfg.Chat.APIKey = strings.TrimSpace(os.Getenv("RESUME_AI_KEY"))
	cfg.Chat.Protocol = util.GetEnvWithDefault("CHAT_PROTOCOL", cfg.Chat.Protocol)
	cfg.Chat.AssistantID = util.GetEnvWithDefault("ASSISTANT_ID", cfg.Chat.AssistantID)
	cfg.Chat.Model = util.GetEnvWithDefault("CHAT_MODEL", cfg.Chat.Model)
	cfg.Chat.SystemPrompt = util.GetEnvWithDefault("SYSTEM_PROMPT", cfg.Chat.SystemPrompt)
	cfg.Chat.FallbackReply = util.GetEnvWithDefault("FALLBACK_REPLY", cfg.Chat.FallbackReply)
	cfg.Chat.BaseURL = util.GetEnvWithDefault("UPSTREAM_BASE_URL", cfg.Chat.BaseURL)

	var err error
	if cfg.Chat.PollInterval, err = util.GetEnvDuration("POLL_INTERVAL", cfg.Chat.PollInterval); err != nil {
		return err
	}
	if cfg.Chat.MaxPollWait, err = util.GetEnvDuration("MAX_POLL_WAIT", cfg.Chat.MaxPollWait); err != nil {
		return err
	}

	cfg.Static.Root = util.GetEnvWithDefault("STATIC_ROOT", cfg.Static.Root)
	cfg.Static.CleanURLs = util.GetEnvBool("CLEAN_URLS", cfg.Static.CleanURLs)

	if origins := util.ParseEnvList(os.Getenv("CORS_ALLOW_ORIGIN")); len(origins) > 0 {
		cfg.CORSAllowOrigins = origins
	}
	return nil
}

// Validate checks the merged configuration and normalizes paths
func Validate(cfg *ServerConfig) error {
	cfg.Chat.Protocol = strings.ToLower(strings.TrimSpace(cfg.Chat.Protocol))
	switch cfg.Chat.Protocol {
	case core.ProtocolAssistant:
		if cfg.Chat.AssistantID == "" {
			return fmt.Errorf("assistant protocol requires ASSISTANT_ID")
		}
	case core.ProtocolCompletion:
		if cfg.Chat.Model == "" {
			return fmt.Errorf("completion protocol requires CHAT_MODEL")
		}
	default:
		return fmt.Errorf("unknown CHAT_PROTOCOL %q (want %q or %q)", cfg.Chat.Protocol, core.ProtocolAssistant, core.ProtocolCompletion)
	}

	if cfg.Chat.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", cfg.Chat.PollInterval)
	}
	if cfg.Chat.MaxPollWait < cfg.Chat.PollInterval {
		return fmt.Errorf("max poll wait %s shorter than poll interval %s", cfg.Chat.MaxPollWait, cfg.Chat.PollInterval)
	}
	cfg.Chat.BaseURL = strings.TrimRight(cfg.Chat.BaseURL, "/")

	root, err := filepath.Abs(cfg.Static.Root)
	if err != nil {
		return fmt.Errorf("resolve static root %q: %w", cfg.Static.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("static root %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("static root %q is not a directory", root)
	}
	cfg.Static.Root = root

	if cfg.MaxChatBodySize <= 0 {
		cfg.MaxChatBodySize = core.MaxChatBodySize
	}
	return nil
}

// LoadServerConfigFromEnv loads server config: defaults, then CONFIG_FILE, then environment
func LoadServerConfigFromEnv(logger core.Logger) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return cfg, err
		}
		if err := ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
		logger.Info("Loaded config file %s", path)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := Validate(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Chat.Enabled() {
		logger.Info("Chat proxy enabled (protocol=%s, key=%s)", cfg.Chat.Protocol, util.MaskSecret(cfg.Chat.APIKey))
	} else {
		logger.Warn("RESUME_AI_KEY is empty, chat proxy disabled")
	}
	logger.Info("Serving static assets from %s", cfg.Static.Root)

	return cfg, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
