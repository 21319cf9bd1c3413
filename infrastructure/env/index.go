package env

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"matchbox.io/infrastructure/logger"
)

type Config struct {
	Port       string
	GinMode    string
	Env        string
	ImagesRoot string

	DBDriver string
	DBURL    string
	DBName   string

	RedisAddr     string
	RedisPassword string
	LockBackend   string

	VisionAPIKey  string
	VisionBaseURL string

	FacePPAPIKey    string
	FacePPAPISecret string
	FacePPBaseURL   string

	BotToken    string
	RelayChatID int64

	ExternalCallTimeout time.Duration
	GenderMinConfidence float64
	JPEGQuality         int
	MaxUploadBytes      int64
	CORSOrigins         []string

	// keyed by check name then "unavailable" / "error"
	PolicyOverrides map[string]map[string]string
}

// LoadEnv reads the .env file if present. Missing files are not an error in
// deployed environments where variables come from the process.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Info("error loading env variables")
	}
}

func Read() Config {
	cfg := Config{
		Port:       get("PORT", "8080"),
		GinMode:    get("GIN_MODE", "debug"),
		Env:        get("ENV", "dev"),
		ImagesRoot: get("IMAGES_ROOT", "./data/img"),

		DBDriver: strings.ToLower(get("DB_DRIVER", "sqlite")),
		DBURL:    get("DB_URL", "./data/matchbox.db"),
		DBName:   get("DB_NAME", "matchbox"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LockBackend:   strings.ToLower(get("LOCK_BACKEND", "local")),

		VisionAPIKey:  os.Getenv("GOOGLE_VISION_API_KEY"),
		VisionBaseURL: get("GOOGLE_VISION_BASE_URL", "https://vision.googleapis.com"),

		FacePPAPIKey:    os.Getenv("FACEPP_API_KEY"),
		FacePPAPISecret: os.Getenv("FACEPP_API_SECRET"),
		FacePPBaseURL:   get("FACEPP_BASE_URL", "https://api-us.faceplusplus.com"),

		BotToken:    os.Getenv("BOT_TOKEN"),
		RelayChatID: getInt64("RELAY_CHAT_ID", 0),

		ExternalCallTimeout: getDuration("EXTERNAL_CALL_TIMEOUT", 15*time.Second),
		GenderMinConfidence: getFloat("GENDER_MIN_CONFIDENCE", 0),
		JPEGQuality:         int(getInt64("JPEG_QUALITY", 95)),
		MaxUploadBytes:      getInt64("MAX_UPLOAD_MB", 15) << 20,
		CORSOrigins:         splitList(os.Getenv("CORS_ORIGINS")),

		PolicyOverrides: map[string]map[string]string{},
	}

	for _, check := range []string{"FACE", "AUTHENTICITY", "GENDER"} {
		overrides := map[string]string{}
		if value := os.Getenv(check + "_ON_UNAVAILABLE"); value != "" {
			overrides["unavailable"] = strings.ToLower(value)
		}
		if value := os.Getenv(check + "_ON_ERROR"); value != "" {
			overrides["error"] = strings.ToLower(value)
		}
		cfg.PolicyOverrides[strings.ToLower(check)] = overrides
	}
	return cfg
}

func get(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logger.Warning("invalid integer env variable, using default", logger.LoggerOptions{
			Key:  key,
			Data: value,
		})
		return fallback
	}
	return parsed
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warning("invalid float env variable, using default", logger.LoggerOptions{
			Key:  key,
			Data: value,
		})
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warning("invalid duration env variable, using default", logger.LoggerOptions{
			Key:  key,
			Data: value,
		})
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	list := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
