package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	RedisURL                string
	FirebaseCredentialsPath string
	AuthProvider            string
	JWTSecret               string
	PublicBaseURL           string
	ChatRequireMutualFollow bool
	RateLimitRPS            float64
	MaxUploadBytes          int64
}

const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

// Load reads .env when present and then the process environment
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	return &Config{
		Port:                    port,
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		RedisURL:                getEnv("REDIS_URL", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", AuthFirebase)),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		PublicBaseURL:           strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		ChatRequireMutualFollow: getEnvBool("CHAT_REQUIRE_MUTUAL_FOLLOW", false),
		RateLimitRPS:            getEnvFloat("RATE_LIMIT_RPS", 20),
		MaxUploadBytes:          getEnvInt("MAX_UPLOAD_BYTES", 50<<20),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
