package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir       string
	BasePath      string
	ExtraPath     string
	DBPath        string
	ProfilesPath  string
	ServerAddr    string
	SessionTTLMin int
	Debug         bool

	FetchTimeoutMs  int
	RenderTimeoutMs int
	RenderEnabled   bool
	MaxWebResults   int
	SourceDelayMs   int
	MinDirectHits   int
	SearchEngineURL string
	UserAgent       string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := getEnv("DATA_DIR", filepath.Join(home, ".medbuscador"))

	cfg := Config{
		DataDir:       dataDir,
		BasePath:      getEnv("BASE_PATH", filepath.Join(dataDir, "fuente.xlsx")),
		ExtraPath:     getEnv("EXTRA_PATH", filepath.Join(dataDir, "productos1.xlsx")),
		DBPath:        getEnv("DB_PATH", filepath.Join(dataDir, "app.db")),
		ProfilesPath:  getEnv("PROFILES_PATH", ""),
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		SessionTTLMin: getEnvInt("SESSION_TTL_MIN", 480),
		Debug:         getEnvBool("DEBUG", false),

		FetchTimeoutMs:  getEnvInt("FETCH_TIMEOUT_MS", 8000),
		RenderTimeoutMs: getEnvInt("RENDER_TIMEOUT_MS", 25000),
		RenderEnabled:   getEnvBool("RENDER_ENABLED", true),
		MaxWebResults:   getEnvInt("MAX_WEB_RESULTS", 40),
		SourceDelayMs:   getEnvInt("SOURCE_DELAY_MS", 250),
		MinDirectHits:   getEnvInt("MIN_DIRECT_HITS", 10),
		SearchEngineURL: getEnv("SEARCH_ENGINE_URL", "https://duckduckgo.com/html/"),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.7444.60 Safari/537.36"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
