package config

import (
	"fmt"
	"time"

	"marketplace/logger"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Configuration holds everything the server reads from the environment.
type Configuration struct {
	Port     string `env:"PORT" envDefault:"4000"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
	Timezone string `env:"TIMEZONE" envDefault:"Africa/Abidjan"`

	MongoURI    string `env:"MONGO_URI,required"`
	MongoDBName string `env:"MONGO_DB" envDefault:"marketplace"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"marketplace-api"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	CORSOrigins      []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	MetricsAllowedIP string   `env:"METRICS_ALLOWED_IP"`

	// analytics
	MonthLocale           string        `env:"ANALYTICS_MONTH_LOCALE" envDefault:"fr"`
	AnalyticsTimeout      time.Duration `env:"ANALYTICS_TIMEOUT" envDefault:"15s"`
	AnalyticsCacheTTL     time.Duration `env:"ANALYTICS_CACHE_TTL" envDefault:"0s"`
	AnalyticsWarmInterval time.Duration `env:"ANALYTICS_WARM_INTERVAL" envDefault:"5m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisUser     string `env:"REDIS_USER"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// object storage: "s3" or "cloudinary"
	StorageDriver    string `env:"STORAGE_DRIVER" envDefault:"s3"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3AccessKey      string `env:"S3_ACCESS_KEY"`
	S3SecretKey      string `env:"S3_SECRET_KEY"`
	S3Bucket         string `env:"S3_BUCKET"`
	S3Secure         bool   `env:"S3_SECURE" envDefault:"true"`
	CDNDomain        string `env:"CDN_DOMAIN"`
	CloudinaryCloud  string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey string `env:"CLOUDINARY_API_KEY"`
	CloudinarySecret string `env:"CLOUDINARY_API_SECRET"`

	SMSURL         string `env:"SMS_URL" envDefault:"https://panel.yellikasms.com/api/v3/sms/send"`
	SMSToken       string `env:"SMS_TOKEN"`
	SMSSenderID    string `env:"SMS_SENDER_ID"`
	SMSCountryCode string `env:"SMS_COUNTRY_CODE" envDefault:"225"`
	ShopName       string `env:"SHOP_NAME" envDefault:"ECEFA"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@ecefa.com"`

	TelegramToken   string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatIDs []int64 `env:"TELEGRAM_CHAT_IDS" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`
}

// Cfg is populated by Load and read by the rest of the server.
var Cfg *Configuration

// Load reads .env (when present) and parses the environment.
func Load() (*Configuration, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found, using process environment")
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	Cfg = &cfg
	return Cfg, nil
}

// Location resolves the configured time zone, falling back to UTC.
func (c *Configuration) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		logger.Log.Warnf("Unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}
