package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	UploadPath    string
	ScratchPath   string
	EngineURL     string
	EngineTimeout time.Duration
	InitialTokens int
	MaxUploadMB   int64
	CORSOrigins   []string
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	initialTokens, err := strconv.Atoi(getEnv("INITIAL_TOKENS", "1240"))
	if err != nil || initialTokens < 0 {
		log.Printf("WARNING: invalid INITIAL_TOKENS, starting with 0 tokens")
		initialTokens = 0
	}

	maxUploadMB, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "512"), 10, 64)
	if err != nil || maxUploadMB <= 0 {
		maxUploadMB = 512
	}

	// Subtitle synthesis on long videos can take a while
	engineTimeout, err := time.ParseDuration(getEnv("ENGINE_TIMEOUT", "30m"))
	if err != nil || engineTimeout <= 0 {
		log.Printf("WARNING: invalid ENGINE_TIMEOUT, using 30m")
		engineTimeout = 30 * time.Minute
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", dataPath+"/walnut.db"),
		UploadPath:    getEnv("UPLOAD_PATH", dataPath+"/uploads"),
		ScratchPath:   getEnv("SCRATCH_PATH", dataPath+"/scratch"),
		EngineURL:     getEnv("ENGINE_URL", "http://localhost:8000"),
		EngineTimeout: engineTimeout,
		InitialTokens: initialTokens,
		MaxUploadMB:   maxUploadMB,
		CORSOrigins:   corsOrigins,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
