package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	LLM      LLMConfig
	OCR      OCRConfig
	Evidence EvidenceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMProviderConfig holds settings for a single generative model backend.
type LLMProviderConfig struct {
	Provider            string `mapstructure:"provider"`
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	DefaultModel        string `mapstructure:"default_model"`
	TimeoutSecs         int    `mapstructure:"timeout_secs"`
	MaxTransportRetries int    `mapstructure:"max_transport_retries"`
	// RequestsPerMinute paces calls to this provider; 0 disables pacing.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// LLMConfig holds model backend settings with multi-provider support.
type LLMConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
	Tertiary  LLMProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
// A legacy commonstack provider without an API key resolves to gemini.
func (l *LLMConfig) PrimaryConfig() *LLMProviderConfig {
	if l.Primary.Provider != "" {
		return &l.Primary
	}
	provider := l.Provider
	if strings.EqualFold(provider, "commonstack") && l.APIKey == "" {
		provider = "gemini"
	}
	return &LLMProviderConfig{
		Provider:            provider,
		APIKey:              l.APIKey,
		BaseURL:             l.BaseURL,
		DefaultModel:        l.DefaultModel,
		TimeoutSecs:         l.TimeoutSecs,
		MaxTransportRetries: l.Primary.MaxTransportRetries,
		RequestsPerMinute:   l.Primary.RequestsPerMinute,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (l *LLMConfig) TertiaryConfig() *LLMProviderConfig {
	if l.Tertiary.Provider != "" {
		return &l.Tertiary
	}
	return nil
}

// ProviderChain returns the configured providers in fallback order.
func (l *LLMConfig) ProviderChain() []*LLMProviderConfig {
	chain := []*LLMProviderConfig{l.PrimaryConfig()}
	if s := l.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := l.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// OCRConfig holds text extraction settings.
type OCRConfig struct {
	TesseractPath  string        `mapstructure:"tesseract_path"`
	Language       string        `mapstructure:"language"`
	RasterizerPath string        `mapstructure:"rasterizer_path"`
	DPI            int           `mapstructure:"dpi"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Preprocess     bool          `mapstructure:"preprocess"`
	MaxDimension   int           `mapstructure:"max_dimension"`
}

// EvidenceConfig holds extraction pipeline settings.
type EvidenceConfig struct {
	MaxRetries       int   `mapstructure:"max_retries"`
	PhotoConcurrency int   `mapstructure:"photo_concurrency"`
	MaxFiles         int   `mapstructure:"max_files"`
	MaxFileSizeMB    int64 `mapstructure:"max_file_size_mb"`
}

// MaxFileSizeBytes returns the per-file upload ceiling in bytes.
func (e *EvidenceConfig) MaxFileSizeBytes() int64 {
	return e.MaxFileSizeMB << 20
}

// Load reads configuration from environment variables with the RELIEF_ prefix.
// A .env file in the working directory or its parent is loaded first when present.
func Load() (*Config, error) {
	for _, f := range []string{".env", "../.env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				log.Printf("config: failed to load %s: %v", f, err)
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix("RELIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// LLM defaults (legacy flat)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	// Empty lets each backend apply its own default model.
	v.SetDefault("llm.default_model", "")
	v.SetDefault("llm.timeout_secs", 120)

	// LLM primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("llm."+tier+".provider", "")
		v.SetDefault("llm."+tier+".api_key", "")
		v.SetDefault("llm."+tier+".base_url", "")
		v.SetDefault("llm."+tier+".default_model", "")
		v.SetDefault("llm."+tier+".timeout_secs", 120)
		v.SetDefault("llm."+tier+".max_transport_retries", 2)
		v.SetDefault("llm."+tier+".requests_per_minute", 0)
	}

	// OCR defaults
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.rasterizer_path", "pdftoppm")
	v.SetDefault("ocr.dpi", 150)
	v.SetDefault("ocr.timeout", "60s")
	v.SetDefault("ocr.preprocess", true)
	v.SetDefault("ocr.max_dimension", 2500)

	// Evidence defaults
	v.SetDefault("evidence.max_retries", 1)
	v.SetDefault("evidence.photo_concurrency", 4)
	v.SetDefault("evidence.max_files", 10)
	v.SetDefault("evidence.max_file_size_mb", 20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "RELIEF_SERVER_PORT",
		"server.read_timeout":        "RELIEF_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "RELIEF_SERVER_WRITE_TIMEOUT",
		"server.environment":         "RELIEF_SERVER_ENVIRONMENT",
		"log.level":                  "RELIEF_LOG_LEVEL",
		"cors.allowed_origins":       "RELIEF_CORS_ALLOWED_ORIGINS",
		"llm.provider":               "RELIEF_LLM_PROVIDER",
		"llm.api_key":                "RELIEF_LLM_API_KEY",
		"llm.base_url":               "RELIEF_LLM_BASE_URL",
		"llm.default_model":          "RELIEF_LLM_DEFAULT_MODEL",
		"llm.timeout_secs":           "RELIEF_LLM_TIMEOUT_SECS",
		"ocr.tesseract_path":         "RELIEF_OCR_TESSERACT_PATH",
		"ocr.language":               "RELIEF_OCR_LANGUAGE",
		"ocr.rasterizer_path":        "RELIEF_OCR_RASTERIZER_PATH",
		"ocr.dpi":                    "RELIEF_OCR_DPI",
		"ocr.timeout":                "RELIEF_OCR_TIMEOUT",
		"ocr.preprocess":             "RELIEF_OCR_PREPROCESS",
		"ocr.max_dimension":          "RELIEF_OCR_MAX_DIMENSION",
		"evidence.max_retries":       "RELIEF_EVIDENCE_MAX_RETRIES",
		"evidence.photo_concurrency": "RELIEF_EVIDENCE_PHOTO_CONCURRENCY",
		"evidence.max_files":         "RELIEF_EVIDENCE_MAX_FILES",
		"evidence.max_file_size_mb":  "RELIEF_EVIDENCE_MAX_FILE_SIZE_MB",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "base_url", "default_model", "timeout_secs", "max_transport_retries", "requests_per_minute"} {
			key := "llm." + tier + "." + field
			envBindings[key] = "RELIEF_LLM_" + strings.ToUpper(tier) + "_" + strings.ToUpper(field)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if RELIEF_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RELIEF_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	providerConfig := func(tier string) LLMProviderConfig {
		prefix := "llm." + tier + "."
		return LLMProviderConfig{
			Provider:            v.GetString(prefix + "provider"),
			APIKey:              v.GetString(prefix + "api_key"),
			BaseURL:             v.GetString(prefix + "base_url"),
			DefaultModel:        v.GetString(prefix + "default_model"),
			TimeoutSecs:         v.GetInt(prefix + "timeout_secs"),
			MaxTransportRetries: v.GetInt(prefix + "max_transport_retries"),
			RequestsPerMinute:   v.GetInt(prefix + "requests_per_minute"),
		}
	}
	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		BaseURL:      v.GetString("llm.base_url"),
		DefaultModel: v.GetString("llm.default_model"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		Primary:      providerConfig("primary"),
		Secondary:    providerConfig("secondary"),
		Tertiary:     providerConfig("tertiary"),
	}

	cfg.OCR = OCRConfig{
		TesseractPath:  v.GetString("ocr.tesseract_path"),
		Language:       v.GetString("ocr.language"),
		RasterizerPath: v.GetString("ocr.rasterizer_path"),
		DPI:            v.GetInt("ocr.dpi"),
		Timeout:        v.GetDuration("ocr.timeout"),
		Preprocess:     v.GetBool("ocr.preprocess"),
		MaxDimension:   v.GetInt("ocr.max_dimension"),
	}

	cfg.Evidence = EvidenceConfig{
		MaxRetries:       v.GetInt("evidence.max_retries"),
		PhotoConcurrency: v.GetInt("evidence.photo_concurrency"),
		MaxFiles:         v.GetInt("evidence.max_files"),
		MaxFileSizeMB:    v.GetInt64("evidence.max_file_size_mb"),
	}

	return cfg, nil
}
