package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/viper"
)

// Provider 取值。
const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
	ProviderNone   = "none"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Env       string
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	AI        AIConfig
	Knowledge KnowledgeConfig
}

// Load 从环境变量（以及可选的 CONFIG_FILE 配置文件）加载配置。
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	server, err := loadServerConfig(v)
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig(v)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:    v.GetString("app_env"),
		Server: server,
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		CORS:      CORSConfig{AllowedOrigins: stringList(v, "allowed_origins")},
		RateLimit: rateLimit,
		AI:        ai,
		Knowledge: KnowledgeConfig{File: strings.TrimSpace(v.GetString("knowledge_base_file"))},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3001")
	v.SetDefault("trust_proxy", false)
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("allowed_origins", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("rate_limit_window_ms", 15*60*1000)
	v.SetDefault("rate_limit_max_requests", 100)
	v.SetDefault("ai_provider", ProviderAuto)
	v.SetDefault("ai_timeout", "20s")
	v.SetDefault("openai_model", "gpt-3.5-turbo")
	v.SetDefault("openai_max_tokens", 300)
	v.SetDefault("openai_temperature", 0.7)
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("gemini_temperature", 1.0)
	v.SetDefault("gemini_top_p", 0.95)
	v.SetDefault("ark_base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("ark_region", "cn-beijing")
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
	// TrustProxy 为 true 时才采信 X-Forwarded-For 等头部作为客户端地址
	TrustProxy bool
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(v *viper.Viper) (ServerConfig, error) {
	port := strings.TrimSpace(v.GetString("port"))
	if port == "" {
		port = "3001"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3001" 或 "127.0.0.1:3001"。
		return ServerConfig{Addr: port, TrustProxy: v.GetBool("trust_proxy")}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, TrustProxy: v.GetBool("trust_proxy")}, nil
}

// LogConfig 控制 zap 日志级别与输出格式。
type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig 描述允许跨域访问的来源。
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig 描述 /api 下的限流窗口。
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	RedisURL    string
}

func loadRateLimitConfig(v *viper.Viper) (RateLimitConfig, error) {
	windowMS, err := parseInt(v, "rate_limit_window_ms")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if windowMS <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_WINDOW_MS value %d: must be positive", windowMS)
	}

	maxRequests, err := parseInt(v, "rate_limit_max_requests")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if maxRequests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS value %d: must be positive", maxRequests)
	}

	return RateLimitConfig{
		Window:      time.Duration(windowMS) * time.Millisecond,
		MaxRequests: maxRequests,
		RedisURL:    strings.TrimSpace(v.GetString("redis_url")),
	}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string
	Timeout  time.Duration
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ark      ArkConfig
}

// OpenAIConfig 描述 OpenAI 兼容接口。
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Enabled 表示是否提供了 API Key。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// GeminiConfig 描述 Gemini 接口。
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	TopP        float32
}

// Enabled 表示是否提供了 API Key。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// ArkConfig 描述火山方舟模型配置。
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig(v *viper.Viper) (AIConfig, error) {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("ai_provider")))
	switch provider {
	case ProviderAuto, ProviderOpenAI, ProviderGemini, ProviderArk, ProviderNone:
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	timeout, err := parseDuration(v, "ai_timeout")
	if err != nil {
		return AIConfig{}, err
	}

	openAIMaxTokens, err := parseInt(v, "openai_max_tokens")
	if err != nil {
		return AIConfig{}, err
	}

	openAITemperature, err := parseFloat32(v, "openai_temperature")
	if err != nil {
		return AIConfig{}, err
	}

	geminiTemperature, err := parseFloat32(v, "gemini_temperature")
	if err != nil {
		return AIConfig{}, err
	}

	geminiTopP, err := parseFloat32(v, "gemini_top_p")
	if err != nil {
		return AIConfig{}, err
	}

	arkTemperature, err := parseOptionalFloat(v, "ark_temperature")
	if err != nil {
		return AIConfig{}, err
	}

	arkTopP, err := parseOptionalFloat(v, "ark_top_p")
	if err != nil {
		return AIConfig{}, err
	}

	arkMaxTokens, err := parseOptionalInt(v, "ark_max_tokens")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider: provider,
		Timeout:  timeout,
		OpenAI: OpenAIConfig{
			APIKey:      strings.TrimSpace(v.GetString("openai_api_key")),
			BaseURL:     strings.TrimSpace(v.GetString("openai_base_url")),
			Model:       strings.TrimSpace(v.GetString("openai_model")),
			MaxTokens:   openAIMaxTokens,
			Temperature: openAITemperature,
		},
		Gemini: GeminiConfig{
			APIKey:      strings.TrimSpace(v.GetString("gemini_api_key")),
			Model:       strings.TrimSpace(v.GetString("gemini_model")),
			Temperature: geminiTemperature,
			TopP:        geminiTopP,
		},
		Ark: ArkConfig{
			APIKey:      strings.TrimSpace(v.GetString("ark_api_key")),
			AccessKey:   strings.TrimSpace(v.GetString("ark_access_key")),
			SecretKey:   strings.TrimSpace(v.GetString("ark_secret_key")),
			Model:       strings.TrimSpace(v.GetString("ark_model")),
			BaseURL:     strings.TrimSpace(v.GetString("ark_base_url")),
			Region:      strings.TrimSpace(v.GetString("ark_region")),
			Temperature: arkTemperature,
			TopP:        arkTopP,
			MaxTokens:   arkMaxTokens,
		},
	}, nil
}

// KnowledgeConfig 指定可选的知识库文件。
type KnowledgeConfig struct {
	File string
}

func stringList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).(string); ok {
		return cleanList(strings.Split(raw, ","))
	}
	return cleanList(v.GetStringSlice(key))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), raw, err)
	}
	return val, nil
}

func parseFloat32(v *viper.Viper, key string) (float32, error) {
	raw := strings.TrimSpace(v.GetString(key))
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), raw, err)
	}
	return float32(val), nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", strings.ToUpper(key), raw)
	}
	return val, nil
}

func parseOptionalFloat(v *viper.Viper, key string) (*float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), raw, err)
	}
	return &val, nil
}

func parseOptionalInt(v *viper.Viper, key string) (*int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), raw, err)
	}
	return &val, nil
}
