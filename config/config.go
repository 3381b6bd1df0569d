package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	PublicBaseURL     string `mapstructure:"PUBLIC_BASE_URL"`
	APIBaseURL        string `mapstructure:"API_BASE_URL"`

	// Storage backend: "mongo" or "memory".
	Store        string `mapstructure:"STORE"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB   int           `mapstructure:"REDIS_SESSION_DB"`
	RedisAuthDB      int           `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB     int           `mapstructure:"REDIS_QUEUE_DB"`
	WizardSessionTTL time.Duration `mapstructure:"WIZARD_SESSION_TTL"`

	// Auth.
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`
	AdminEmail        string        `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminLoginPath    string        `mapstructure:"ADMIN_LOGIN_PATH"`

	// Cloudinary. CloudinaryURL wins over the split credentials when set.
	CloudinaryURL       string `mapstructure:"CLOUDINARY_URL"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	UploadFolder        string `mapstructure:"UPLOAD_FOLDER"`
	UploadDir           string `mapstructure:"UPLOAD_DIR"`
	UploadSweepSchedule string `mapstructure:"UPLOAD_SWEEP_SCHEDULE"`
	PreviewLimitBytes   int64  `mapstructure:"PREVIEW_LIMIT_BYTES"`

	// Payments.
	PaymentProvider     string        `mapstructure:"PAYMENT_PROVIDER"`
	Currency            string        `mapstructure:"CURRENCY"`
	StripeKey           string        `mapstructure:"STRIPE_KEY"`
	MidtransServerKey   string        `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransProduction  bool          `mapstructure:"MIDTRANS_PRODUCTION"`
	PayPalClientID      string        `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret  string        `mapstructure:"PAYPAL_CLIENT_SECRET"`
	PayPalLive          bool          `mapstructure:"PAYPAL_LIVE"`
	PaymentPollInterval time.Duration `mapstructure:"PAYMENT_POLL_INTERVAL"`
	PaymentPollTimeout  time.Duration `mapstructure:"PAYMENT_POLL_TIMEOUT"`
	PendingPaymentTTL   time.Duration `mapstructure:"PENDING_PAYMENT_TTL"`
	ReconcileSchedule   string        `mapstructure:"RECONCILE_SCHEDULE"`

	// Notifications.
	FunctionsURL         string `mapstructure:"FUNCTIONS_URL"`
	FunctionsToken       string `mapstructure:"FUNCTIONS_TOKEN"`
	TeamEmail            string `mapstructure:"TEAM_EMAIL"`
	FirebaseCredentials  string `mapstructure:"FIREBASE_CREDENTIALS"`
	TeamTopic            string `mapstructure:"TEAM_TOPIC"`
	NotificationQueue    string `mapstructure:"NOTIFICATION_QUEUE"`
	NotificationMaxRetry int    `mapstructure:"NOTIFICATION_MAX_RETRY"`
	NotificationWorkers  int    `mapstructure:"NOTIFICATION_WORKERS"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:5173")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080")

	viper.SetDefault("STORE", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "visapoint")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("WIZARD_SESSION_TTL", 24*time.Hour)

	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("TOKEN_TTL", 7*24*time.Hour)
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("ADMIN_LOGIN_PATH", "/api/staff-portal-x9k2/login")

	viper.SetDefault("CLOUDINARY_URL", "")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("UPLOAD_FOLDER", "visa-documents")
	viper.SetDefault("UPLOAD_DIR", "")
	viper.SetDefault("UPLOAD_SWEEP_SCHEDULE", "@every 1h")
	viper.SetDefault("PREVIEW_LIMIT_BYTES", 2<<20)

	viper.SetDefault("PAYMENT_PROVIDER", "stripe")
	viper.SetDefault("CURRENCY", "SAR")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("MIDTRANS_SERVER_KEY", "")
	viper.SetDefault("PAYPAL_CLIENT_ID", "")
	viper.SetDefault("PAYPAL_CLIENT_SECRET", "")
	viper.SetDefault("MIDTRANS_PRODUCTION", false)
	viper.SetDefault("PAYPAL_LIVE", false)
	viper.SetDefault("PAYMENT_POLL_INTERVAL", 5*time.Second)
	viper.SetDefault("PAYMENT_POLL_TIMEOUT", 10*time.Minute)
	viper.SetDefault("PENDING_PAYMENT_TTL", 24*time.Hour)
	viper.SetDefault("RECONCILE_SCHEDULE", "@every 15m")

	viper.SetDefault("FUNCTIONS_URL", "")
	viper.SetDefault("FUNCTIONS_TOKEN", "")
	viper.SetDefault("TEAM_EMAIL", "")
	viper.SetDefault("FIREBASE_CREDENTIALS", "")
	viper.SetDefault("TEAM_TOPIC", "visa-team")
	viper.SetDefault("NOTIFICATION_QUEUE", "notifications")
	viper.SetDefault("NOTIFICATION_MAX_RETRY", 5)
	viper.SetDefault("NOTIFICATION_WORKERS", 5)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
