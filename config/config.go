package configs

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	HTTPPort       string
	GRPCPort       string
	MongoDBURL     string
	MongoDatabase  string
	RedisURL       string
	RedisPassword  string
	NATSURL        string
	AllowedOrigins []string
	JWTSecret      string
	StreakCron     string

	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	YouTubeAPIKey     string
	ImageSearchAPIKey string
	ImageSearchCX     string
	UnsplashAccessKey string
}

func LoadConfig() Config {
	// a missing .env is fine in containers where the environment is injected
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}
	config := Config{
		Env:            getEnv("ENV", "development"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "50056"),
		MongoDBURL:     getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "coursegen"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		StreakCron:     getEnv("STREAK_CRON", "@daily"),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIBaseURL: getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		AIModel:   getEnv("AI_MODEL", "gemini-2.0-flash"),

		YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
		ImageSearchAPIKey: getEnv("IMAGE_SEARCH_API_KEY", ""),
		ImageSearchCX:     getEnv("IMAGE_SEARCH_CX", ""),
		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
