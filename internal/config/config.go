package config

import "os"

type Config struct {
	ListenAddr        string
	GeneratorBackend  string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiPantryModel string
	AnthropicAPIKey   string
	AnthropicModel    string
	LogLevel          string
	LogFormat         string
	LogFile           string
}

func Load() *Config {
	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		GeneratorBackend:  getEnv("GENERATOR_BACKEND", "gemini"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp-image-generation"),
		GeminiPantryModel: getEnv("GEMINI_PANTRY_MODEL", "gemini-2.0-flash-lite"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
