package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Functions FunctionsConfig
	Shop      ShopConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	// RealtimeBroker is "redis" or "memory". Memory only fans out within
	// one process.
	RealtimeBroker string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StorageConfig describes the blob store. Buckets are directories under Root.
type StorageConfig struct {
	Root           string
	DocumentBucket string
	MaxUploadBytes int64
}

// FunctionsConfig points at the serverless functions that proxy the
// video, payment and AI chat providers.
type FunctionsConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type ShopConfig struct {
	ShippingFee decimal.Decimal
	Currency    string
	CartTTL     time.Duration
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REALTIME_BROKER", "redis")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("STORAGE_ROOT", "./data/storage")
	viper.SetDefault("STORAGE_DOCUMENT_BUCKET", "medical-documents")
	viper.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("FUNCTIONS_TIMEOUT", "15s")
	viper.SetDefault("SHOP_SHIPPING_FEE", "5.99")
	viper.SetDefault("SHOP_CURRENCY", "eur")
	viper.SetDefault("SHOP_CART_TTL", "720h")
}

func LoadConfig() (*Config, error) {
	setDefaults()
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// A missing .env is fine, the environment alone can configure the service.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	shippingFee, err := decimal.NewFromString(viper.GetString("SHOP_SHIPPING_FEE"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			RealtimeBroker: viper.GetString("REALTIME_BROKER"),
		},
		DB: DBConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Storage: StorageConfig{
			Root:           viper.GetString("STORAGE_ROOT"),
			DocumentBucket: viper.GetString("STORAGE_DOCUMENT_BUCKET"),
			MaxUploadBytes: viper.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
		},
		Functions: FunctionsConfig{
			BaseURL: viper.GetString("FUNCTIONS_BASE_URL"),
			APIKey:  viper.GetString("FUNCTIONS_API_KEY"),
			Timeout: viper.GetDuration("FUNCTIONS_TIMEOUT"),
		},
		Shop: ShopConfig{
			ShippingFee: shippingFee,
			Currency:    viper.GetString("SHOP_CURRENCY"),
			CartTTL:     viper.GetDuration("SHOP_CART_TTL"),
		},
	}

	return config, nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WatchLogLevel calls onChange with the current LOG_LEVEL every time the
// .env file is modified.
func WatchLogLevel(onChange func(level string)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
			onChange(viper.GetString("LOG_LEVEL"))
		}
	})
	viper.WatchConfig()
}
