package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string

	LLMProvider        string
	LLMBaseURL         string
	LLMModel           string
	LLMAPIKey          string
	LLMMetadataModel   string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRequestsPerMin  int
	LLMTranslateTimeout time.Duration
	LLMMetadataTimeout time.Duration
	ChatRetryAttempts  int

	SourceDir    string
	OutputDir    string
	Extractor    string
	PDFToTextBin string
	OutputFormat string

	ChunkSize        int
	ContextPairs     int
	PaceDelay        time.Duration
	PaceLongDelay    time.Duration
	PaceLongEvery    int
	ErrorCooldown    time.Duration
	DocumentCooldown time.Duration

	NormalizeRepeatThreshold int
	NormalizeMaxNoiseLen     int
	NormalizePublisherNoise  bool
	HeadingMaxLen            int

	MetadataEnabled bool
	AuditXLSX       bool
	PromptFile      string

	ResilienceRetryMaxAttempts     int
	ResilienceRetryInitialBackoff  time.Duration
	ResilienceRetryMaxBackoff      time.Duration
	ResilienceRetryMultiplier      float64
	ResilienceBreakerEnabled       bool
	ResilienceBreakerMinRequests   int
	ResilienceBreakerFailureRatio  float64
	ResilienceBreakerOpenTimeout   time.Duration
	ResilienceBreakerHalfOpenCalls int

	PostgresDSN string

	NATSURL           string
	NATSSubject       string
	NATSResultSubject string

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		LLMProvider:        strings.ToLower(mustEnv("LLM_PROVIDER", "openai")),
		LLMBaseURL:         mustEnv("LLM_BASE_URL", ""),
		LLMModel:           mustEnv("LLM_MODEL", "deepseek-chat"),
		LLMAPIKey:          mustEnv("LLM_API_KEY", os.Getenv("DEEPSEEK_API_KEY")),
		LLMMetadataModel:   mustEnv("LLM_METADATA_MODEL", ""),
		LLMTemperature:     mustEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:       mustEnvInt("LLM_MAX_TOKENS", 4000),
		LLMRequestsPerMin:  mustEnvInt("LLM_RPM", 0),
		LLMTranslateTimeout: mustEnvDuration("LLM_TRANSLATE_TIMEOUT", 600*time.Second),
		LLMMetadataTimeout: mustEnvDuration("LLM_METADATA_TIMEOUT", 120*time.Second),
		ChatRetryAttempts:  mustEnvInt("CHAT_RETRY_ATTEMPTS", 1),

		SourceDir:    mustEnv("SOURCE_DIR", "./source_pdfs"),
		OutputDir:    mustEnv("OUTPUT_DIR", "./output"),
		Extractor:    strings.ToLower(mustEnv("EXTRACTOR", "pdftotext")),
		PDFToTextBin: mustEnv("PDFTOTEXT_BIN", "pdftotext"),
		OutputFormat: strings.ToLower(mustEnv("OUTPUT_FORMAT", "text")),

		ChunkSize:        mustEnvInt("CHUNK_SIZE", 1500),
		ContextPairs:     mustEnvInt("CONTEXT_PAIRS", 3),
		PaceDelay:        mustEnvDuration("PACE_DELAY", time.Second),
		PaceLongDelay:    mustEnvDuration("PACE_LONG_DELAY", 5*time.Second),
		PaceLongEvery:    mustEnvInt("PACE_LONG_EVERY", 10),
		ErrorCooldown:    mustEnvDuration("ERROR_COOLDOWN", 10*time.Second),
		DocumentCooldown: mustEnvDuration("DOCUMENT_COOLDOWN", 10*time.Second),

		NormalizeRepeatThreshold: mustEnvInt("NORMALIZE_REPEAT_THRESHOLD", 5),
		NormalizeMaxNoiseLen:     mustEnvInt("NORMALIZE_MAX_NOISE_LEN", 100),
		NormalizePublisherNoise:  mustEnvBool("NORMALIZE_PUBLISHER_NOISE", false),
		HeadingMaxLen:            mustEnvInt("HEADING_MAX_LEN", 50),

		MetadataEnabled: mustEnvBool("METADATA_ENABLED", true),
		AuditXLSX:       mustEnvBool("AUDIT_XLSX", false),
		PromptFile:      mustEnv("PROMPT_FILE", ""),

		ResilienceRetryMaxAttempts:     mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 3),
		ResilienceRetryInitialBackoff:  mustEnvDuration("RESILIENCE_RETRY_INITIAL_BACKOFF", 2*time.Second),
		ResilienceRetryMaxBackoff:      mustEnvDuration("RESILIENCE_RETRY_MAX_BACKOFF", 20*time.Second),
		ResilienceRetryMultiplier:      mustEnvFloat("RESILIENCE_RETRY_MULTIPLIER", 2),
		ResilienceBreakerEnabled:       mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
		ResilienceBreakerMinRequests:   mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", 10),
		ResilienceBreakerFailureRatio:  mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", 0.5),
		ResilienceBreakerOpenTimeout:   mustEnvDuration("RESILIENCE_BREAKER_OPEN_TIMEOUT", 60*time.Second),
		ResilienceBreakerHalfOpenCalls: mustEnvInt("RESILIENCE_BREAKER_HALF_OPEN_MAX_CALLS", 1),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:           mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:       mustEnv("NATS_SUBJECT", "papers.translate"),
		NATSResultSubject: mustEnv("NATS_RESULT_SUBJECT", "papers.translated"),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

// PromptOverrides is the YAML shape of PROMPT_FILE. Keys left out keep the
// built-in wording.
type PromptOverrides struct {
	System        *string `yaml:"system"`
	DomainHint    *string `yaml:"domain_hint"`
	FailurePrefix *string `yaml:"failure_prefix"`
}

func LoadPromptOverrides(path string) (PromptOverrides, error) {
	var out PromptOverrides
	if strings.TrimSpace(path) == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read prompt file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse prompt file: %w", err)
	}
	return out, nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvDuration accepts Go durations ("90s", "2m") and bare seconds.
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
