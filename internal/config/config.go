package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the vidforge server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Video     VideoConfig
	Sound     SoundConfig
	ImageHost ImageHostConfig
	Mux       MuxConfig
	Staging   StagingConfig
}

type ServerConfig struct {
	Port          int
	Env           string
	RateLimit     int
	MaxUploadSize int64
	RunTimeout    time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type LLMConfig struct {
	Provider  string
	Timeout   time.Duration
	OpenAI    OpenAIConfig
	VLLM      VLLMConfig
	Ollama    OllamaConfig
	Anthropic AnthropicConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// VideoConfig configures the video-generation service and the poll loop.
type VideoConfig struct {
	APIKey          string
	BaseURL         string
	PollInterval    time.Duration
	MaxPollAttempts int
	RequestTimeout  time.Duration
}

// SoundConfig configures the audio-synthesis service. An empty APIKey disables sound.
type SoundConfig struct {
	APIKey          string
	BaseURL         string
	DurationSeconds float64
	PromptInfluence float64
	RequestTimeout  time.Duration
}

type ImageHostConfig struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	// RehostURLs sends url-mode images through the host instead of passing them on.
	RehostURLs bool
}

type MuxConfig struct {
	FFmpegPath    string
	MaxConcurrent int
}

type StagingConfig struct {
	Dir           string
	PublicBaseURL string
}

const (
	minPollInterval = 5 * time.Second
	maxPollInterval = 15 * time.Second
)

var validProviders = map[string]bool{
	"openai":    true,
	"vllm":      true,
	"ollama":    true,
	"anthropic": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          envInt("VIDFORGE_PORT", 8080),
			Env:           envString("VIDFORGE_ENV", "development"),
			RateLimit:     envInt("RATE_LIMIT_PER_MINUTE", 10),
			MaxUploadSize: int64(envInt("MAX_UPLOAD_MB", 10)) << 20,
			RunTimeout:    envDuration("RUN_TIMEOUT", 20*time.Minute),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		LLM: LLMConfig{
			Provider: envString("LLM_PROVIDER", "openai"),
			Timeout:  envDurationSecs("LLM_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000/v1"),
				Model:   envString("VLLM_MODEL", ""),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			},
		},
		Video: VideoConfig{
			APIKey:          envString("LUMA_API_KEY", os.Getenv("LUMMA_API_KEY")),
			BaseURL:         envString("LUMA_BASE_URL", "https://api.lumalabs.ai/dream-machine/v1"),
			PollInterval:    envDuration("VIDEO_POLL_INTERVAL", 5*time.Second),
			MaxPollAttempts: envInt("VIDEO_MAX_POLL_ATTEMPTS", 60),
			RequestTimeout:  envDurationSecs("VIDEO_REQUEST_TIMEOUT_SECS", 30*time.Second),
		},
		Sound: SoundConfig{
			APIKey:          os.Getenv("ELEVENLABS_API_KEY"),
			BaseURL:         envString("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
			DurationSeconds: envFloat("SOUND_DURATION_SECS", 10),
			PromptInfluence: envFloat("SOUND_PROMPT_INFLUENCE", 0.3),
			RequestTimeout:  envDurationSecs("SOUND_REQUEST_TIMEOUT_SECS", 60*time.Second),
		},
		ImageHost: ImageHostConfig{
			APIKey:         os.Getenv("IMGBB_API_KEY"),
			BaseURL:        envString("IMGBB_BASE_URL", "https://api.imgbb.com/1"),
			RequestTimeout: envDurationSecs("IMGBB_REQUEST_TIMEOUT_SECS", 30*time.Second),
			RehostURLs:     envBool("IMGBB_REHOST_URLS", false),
		},
		Mux: MuxConfig{
			FFmpegPath:    envString("FFMPEG_PATH", "ffmpeg"),
			MaxConcurrent: envInt("MUX_MAX_CONCURRENT", 2),
		},
		Staging: StagingConfig{
			Dir:           envString("STAGING_DIR", "./data"),
			PublicBaseURL: strings.TrimRight(envString("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("LLM_PROVIDER must be one of openai, vllm, ollama, anthropic; got %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "openai" && c.LLM.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is openai")
	}
	if c.LLM.Provider == "vllm" && c.LLM.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when LLM_PROVIDER is vllm")
	}
	if c.LLM.Provider == "anthropic" && c.LLM.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is anthropic")
	}

	if c.Video.APIKey == "" {
		return fmt.Errorf("LUMA_API_KEY is required")
	}
	if !isHTTPURL(c.Video.BaseURL) {
		return fmt.Errorf("LUMA_BASE_URL must start with http:// or https://, got %q", c.Video.BaseURL)
	}
	if c.Video.PollInterval < minPollInterval || c.Video.PollInterval > maxPollInterval {
		return fmt.Errorf("VIDEO_POLL_INTERVAL must be between %s and %s, got %s",
			minPollInterval, maxPollInterval, c.Video.PollInterval)
	}
	if c.Video.MaxPollAttempts <= 0 {
		return fmt.Errorf("VIDEO_MAX_POLL_ATTEMPTS must be positive, got %d", c.Video.MaxPollAttempts)
	}

	if c.ImageHost.APIKey == "" {
		return fmt.Errorf("IMGBB_API_KEY is required")
	}

	if c.Mux.MaxConcurrent <= 0 {
		return fmt.Errorf("MUX_MAX_CONCURRENT must be positive, got %d", c.Mux.MaxConcurrent)
	}

	if !isHTTPURL(c.Staging.PublicBaseURL) {
		return fmt.Errorf("PUBLIC_BASE_URL must start with http:// or https://, got %q", c.Staging.PublicBaseURL)
	}

	return nil
}

// SoundEnabled reports whether an audio-synthesis key is configured.
func (c *Config) SoundEnabled() bool {
	return c.Sound.APIKey != ""
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
