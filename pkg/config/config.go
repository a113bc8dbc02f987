package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultSessionSecret = "dev-session-secret-change-in-production"
	defaultCouponSecret  = "dev-secret"
)

type Config struct {
	// Server
	ServerPort string
	AppEnv     string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Session and privileges
	SessionSecret     string
	AdminPasswordHash string
	AdPasswordHash    string
	CouponSecret      string
	AdvertiserUserID  int64

	// Storage
	StorageDriver      string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3UseSSL           string
	S3BucketName       string
	UploadDir          string
	UploadURLPrefix    string

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// Tracing
	OTELEndpoint    string
	OTELServiceName string

	CaptionRequired bool
	CatalogFile     string
	Catalog         Catalog
}

// Catalog holds the fixed option lists shown on forms and used for
// pseudo-user names. It can be overridden with a YAML file.
type Catalog struct {
	PriceOptions []string `yaml:"price_options"`
	Schools      []string `yaml:"schools"`
	Genders      []string `yaml:"genders"`
	FirstNames   []string `yaml:"first_names"`
	LastNames    []string `yaml:"last_names"`
	MapDomains   []string `yaml:"map_domains"`
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	advertiserID, err := strconv.ParseInt(getEnv("ADVERTISER_USER_ID", "1"), 10, 64)
	if err != nil || advertiserID <= 0 {
		return nil, fmt.Errorf("invalid ADVERTISER_USER_ID: %q", os.Getenv("ADVERTISER_USER_ID"))
	}

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "kuchikomi"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		SessionSecret:     getEnv("SESSION_SECRET", defaultSessionSecret),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdPasswordHash:    getEnv("AD_PASSWORD_HASH", ""),
		CouponSecret:      getEnv("COUPON_SECRET", defaultCouponSecret),
		AdvertiserUserID:  advertiserID,

		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "s3")),
		AWSRegion:          getEnv("AWS_REGION", "ap-northeast-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "kuchikomi-images"),
		UploadDir:          getEnv("UPLOAD_FOLDER_PATH", "static/uploads"),
		UploadURLPrefix:    getEnv("UPLOAD_URL_PREFIX", "/static/uploads"),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", ""),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "kuchikomi"),

		CaptionRequired: getEnvBool("CAPTION_REQUIRED", false),
		CatalogFile:     getEnv("CATALOG_FILE", ""),
		Catalog:         DefaultCatalog(),
	}

	if config.CatalogFile != "" {
		if err := config.Catalog.loadFile(config.CatalogFile); err != nil {
			return nil, err
		}
	}

	if config.IsProduction() {
		if config.SessionSecret == defaultSessionSecret {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production")
		}
		if config.CouponSecret == defaultCouponSecret {
			return nil, fmt.Errorf("COUPON_SECRET must be set in production")
		}
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns DATABASE_URL when set, otherwise a keyword DSN built from the DB_* fields.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// loadFile overlays the non-empty lists of a YAML file on top of c.
func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var fromFile Catalog
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	overlay(&c.PriceOptions, fromFile.PriceOptions)
	overlay(&c.Schools, fromFile.Schools)
	overlay(&c.Genders, fromFile.Genders)
	overlay(&c.FirstNames, fromFile.FirstNames)
	overlay(&c.LastNames, fromFile.LastNames)
	overlay(&c.MapDomains, fromFile.MapDomains)
	return nil
}

func overlay(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
