package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "defaultSecret"

// Config holds application configuration
type Config struct {
	Port        string
	AppEnv      string
	CorsOrigins string

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTKey    string
	JWTExpiry time.Duration
	SaltRound int

	BackendURL  string
	FrontendURL string

	PaymentProvider   string // sslcommerz or midtrans
	PaymentCurrency   string
	SSLCommerzStoreID string
	SSLCommerzPass    string
	SSLCommerzSandbox bool
	MidtransServerKey string
	MidtransProd      bool

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string

	OrderPendingTTL time.Duration
	OrderExpiryCron string
}

// Load reads configuration from .env (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	v := viper.New()
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "coursemaster")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET_KEY", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY", 7*24*time.Hour)
	v.SetDefault("SALT_ROUND", 10)

	v.SetDefault("BACKEND_URL", "http://localhost:3000")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")

	v.SetDefault("PAYMENT_PROVIDER", "sslcommerz")
	v.SetDefault("PAYMENT_CURRENCY", "BDT")
	v.SetDefault("SSLCOMMERZ_STORE_ID", "")
	v.SetDefault("SSLCOMMERZ_STORE_PASSWORD", "")
	v.SetDefault("SSLCOMMERZ_SANDBOX", true)
	v.SetDefault("MIDTRANS_SERVER_KEY", "")
	v.SetDefault("MIDTRANS_PRODUCTION", false)

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_SENDER", "noreply@localhost")
	v.SetDefault("EMAIL_SENDER_NAME", "CourseMaster")

	v.SetDefault("ORDER_PENDING_TTL", 2*time.Hour)
	v.SetDefault("ORDER_EXPIRY_CRON", "*/15 * * * *")
	v.AutomaticEnv()

	cfg := &Config{
		Port:        v.GetString("PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		CorsOrigins: v.GetString("CORS_ORIGINS"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTKey:    v.GetString("JWT_SECRET_KEY"),
		JWTExpiry: v.GetDuration("JWT_EXPIRY"),
		SaltRound: v.GetInt("SALT_ROUND"),

		BackendURL:  strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),

		PaymentProvider:   strings.ToLower(v.GetString("PAYMENT_PROVIDER")),
		PaymentCurrency:   v.GetString("PAYMENT_CURRENCY"),
		SSLCommerzStoreID: v.GetString("SSLCOMMERZ_STORE_ID"),
		SSLCommerzPass:    v.GetString("SSLCOMMERZ_STORE_PASSWORD"),
		SSLCommerzSandbox: v.GetBool("SSLCOMMERZ_SANDBOX"),
		MidtransServerKey: v.GetString("MIDTRANS_SERVER_KEY"),
		MidtransProd:      v.GetBool("MIDTRANS_PRODUCTION"),

		SendgridAPIKey:  v.GetString("SENDGRID_API_KEY"),
		EmailSender:     v.GetString("EMAIL_SENDER"),
		EmailSenderName: v.GetString("EMAIL_SENDER_NAME"),

		OrderPendingTTL: v.GetDuration("ORDER_PENDING_TTL"),
		OrderExpiryCron: v.GetString("ORDER_EXPIRY_CRON"),
	}

	if cfg.JWTKey == defaultJWTSecret {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	return cfg
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
