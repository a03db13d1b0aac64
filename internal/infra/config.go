package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiTextModel  string
	GeminiImageModel string

	SendMediaURL string
	SendTimeout  time.Duration

	DefaultPhone   string
	DefaultMail    string
	DefaultWebsite string

	HolidayCSVPath   string
	BrandOverlayPath string
	BrandLogoPath    string
	FooterFontPath   string

	// Randomized stagger between consecutive sends of one distribution run.
	// The legacy distribute route paces faster than the subscriber route.
	LegacyDelayMin     time.Duration
	LegacyDelayMax     time.Duration
	SubscriberDelayMin time.Duration
	SubscriberDelayMax time.Duration

	DailyDistributeCron string

	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-flash-latest"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-3-pro-image-preview"),

		SendMediaURL: getEnv("SEND_MEDIA_URL", "https://fast.meteor-fitness.com/send-media?type=base64"),
		SendTimeout:  time.Second * time.Duration(getEnvInt("SEND_TIMEOUT_SECONDS", 60)),

		DefaultPhone:   getEnv("DEFAULT_PHONE_NUMBER", "8299396255"),
		DefaultMail:    getEnv("DEFAULT_FOOTER_MAIL", "androcoders21@gmail.com"),
		DefaultWebsite: getEnv("DEFAULT_FOOTER_WEBSITE", "androcoders.in"),

		HolidayCSVPath:   getEnv("HOLIDAY_CSV_PATH", "holidays.csv"),
		BrandOverlayPath: getEnv("BRAND_OVERLAY_PATH", "overlay.png"),
		BrandLogoPath:    getEnv("BRAND_LOGO_PATH", "logo.png"),
		FooterFontPath:   os.Getenv("FOOTER_FONT_PATH"),

		LegacyDelayMin:     time.Second * time.Duration(getEnvInt("LEGACY_DELAY_MIN_SECONDS", 30)),
		LegacyDelayMax:     time.Second * time.Duration(getEnvInt("LEGACY_DELAY_MAX_SECONDS", 300)),
		SubscriberDelayMin: time.Second * time.Duration(getEnvInt("SUBSCRIBER_DELAY_MIN_SECONDS", 240)),
		SubscriberDelayMax: time.Second * time.Duration(getEnvInt("SUBSCRIBER_DELAY_MAX_SECONDS", 480)),

		DailyDistributeCron: os.Getenv("DAILY_DISTRIBUTE_CRON"),

		CORSAllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "*")},
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.LegacyDelayMax < cfg.LegacyDelayMin {
		return nil, fmt.Errorf("LEGACY_DELAY_MAX_SECONDS must be >= LEGACY_DELAY_MIN_SECONDS")
	}
	if cfg.SubscriberDelayMax < cfg.SubscriberDelayMin {
		return nil, fmt.Errorf("SUBSCRIBER_DELAY_MAX_SECONDS must be >= SUBSCRIBER_DELAY_MIN_SECONDS")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
