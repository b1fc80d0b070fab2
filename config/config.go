package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Storage StorageConfig
	Payment PaymentConfig
	Kafka   KafkaConfig
	Booking BookingConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
}

// Location resolves the configured timezone. "Today" for date keys is decided in it.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	PublicURL string
}

type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
	SuccessURL      string
	CancelURL       string
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	PollInterval time.Duration
	BatchSize    int
}

type BookingConfig struct {
	PlatformShare decimal.Decimal
	RateLimit     float64
	RateBurst     int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !strings.Contains(err.Error(), "no such file") {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	pollInterval, err := time.ParseDuration(viper.GetString("OUTBOX_POLL_INTERVAL"))
	if err != nil {
		pollInterval = 2 * time.Second
	}

	platformShare, err := decimal.NewFromString(viper.GetString("PLATFORM_SHARE"))
	if err != nil {
		platformShare = decimal.RequireFromString("0.16")
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			Timezone: viper.GetString("APP_TIMEZONE"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			PublicURL: viper.GetString("STORAGE_PUBLIC_URL"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: viper.GetString("STRIPE_SECRET_KEY"),
			Currency:        viper.GetString("PAYMENT_CURRENCY"),
			SuccessURL:      viper.GetString("PAYMENT_SUCCESS_URL"),
			CancelURL:       viper.GetString("PAYMENT_CANCEL_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:        viper.GetString("KAFKA_TOPIC"),
			PollInterval: pollInterval,
			BatchSize:    viper.GetInt("OUTBOX_BATCH_SIZE"),
		},
		Booking: BookingConfig{
			PlatformShare: platformShare,
			RateLimit:     viper.GetFloat64("BOOKING_RATE_LIMIT"),
			RateBurst:     viper.GetInt("BOOKING_RATE_BURST"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("STORAGE_BUCKET", "vespera-media")
	viper.SetDefault("PAYMENT_CURRENCY", "inr")
	viper.SetDefault("KAFKA_TOPIC", "appointments")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("PLATFORM_SHARE", "0.16")
	viper.SetDefault("BOOKING_RATE_LIMIT", 2)
	viper.SetDefault("BOOKING_RATE_BURST", 5)
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
