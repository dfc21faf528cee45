package initializers

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type EsewaSettings struct {
	FormURL     string
	StatusURL   string
	ProductCode string
	SecretKey   string
}

type KhaltiSettings struct {
	BaseURL    string
	SecretKey  string
	WebsiteURL string
}

type MailSettings struct {
	FromEmail string
	Password  string
	SMTPHost  string
	Address   string
}

type Config struct {
	Port           string
	DBDriver       string
	DBDSN          string
	JWTSecret      string
	TokenTTL       time.Duration
	FrontendURL    string
	AllowedOrigins []string

	// StrictOrderTransitions rejects status moves outside the transition
	// table unless the owner forces them. Off by default: any status may
	// follow any other.
	StrictOrderTransitions bool
	GatewayTimeout         time.Duration
	Esewa                  EsewaSettings
	Khalti                 KhaltiSettings

	S3Bucket         string
	RabbitMQURL      string
	RealtimeExchange string
	RealtimeBuffer   int
	Mail             MailSettings
}

var AppConfig *Config

func LoadConfig() *Config {
	frontend := strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/")

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		DBDriver:               getEnv("DB_DRIVER", "mysql"),
		DBDSN:                  os.Getenv("DB_DSN"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TokenTTL:               getDuration("TOKEN_TTL", 24*time.Hour),
		FrontendURL:            frontend,
		AllowedOrigins:         getList("ALLOWED_ORIGINS", []string{frontend}),
		StrictOrderTransitions: getBool("STRICT_ORDER_TRANSITIONS", false),
		GatewayTimeout:         getDuration("GATEWAY_TIMEOUT", 30*time.Second),
		Esewa: EsewaSettings{
			FormURL:     os.Getenv("ESEWA_FORM_URL"),
			StatusURL:   os.Getenv("ESEWA_STATUS_URL"),
			ProductCode: getEnv("ESEWA_PRODUCT_CODE", "EPAYTEST"),
			SecretKey:   os.Getenv("ESEWA_SECRET_KEY"),
		},
		Khalti: KhaltiSettings{
			BaseURL:    os.Getenv("KHALTI_BASE_URL"),
			SecretKey:  os.Getenv("KHALTI_SECRET_KEY"),
			WebsiteURL: getEnv("KHALTI_WEBSITE_URL", frontend),
		},
		S3Bucket:         os.Getenv("AWS_S3_BUCKET"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RealtimeExchange: os.Getenv("REALTIME_EXCHANGE"),
		RealtimeBuffer:   getInt("REALTIME_BUFFER", 16),
		Mail: MailSettings{
			FromEmail: os.Getenv("FROM_EMAIL"),
			Password:  os.Getenv("FROM_EMAIL_PASSWORD"),
			SMTPHost:  os.Getenv("FROM_EMAIL_SMTP"),
			Address:   os.Getenv("SMTP_ADDRESS"),
		},
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	AppConfig = cfg
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
