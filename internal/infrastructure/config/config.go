package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Server
	ServerPort string

	// Database
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBTimezone string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// FoxESS monitoring cloud
	FoxESSBaseURL      string
	FoxESSAPIKey       string
	FoxESSTimeout      time.Duration
	FoxESSRetryCount   int
	FoxESSRetryWait    time.Duration
	FoxESSRetryMaxWait time.Duration

	// TTL for the cached FoxESS fault dictionary; zero disables caching
	FaultDictionaryTTL time.Duration

	// StrictAggregation includes per-upstream degradation reasons in the
	// site detail response instead of only logging them
	StrictAggregation bool

	// Zoho invoicing
	ZohoRefreshToken   string
	ZohoClientID       string
	ZohoClientSecret   string
	ZohoTokenURL       string
	ZohoBaseURL        string
	ZohoOrganizationID string

	// AWS S3 (agreement documents)
	AWSRegion string
	AWSBucket string

	// Logging
	LogLevel string
	LogDir   string
}

// LoadConfig loads config from environment variables
func LoadConfig() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "rsolar_crm"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBTimezone: getEnv("DB_TIMEZONE", "Asia%2FKolkata"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		FoxESSBaseURL:      getEnv("FOXESS_BASE_URL", "https://www.foxesscloud.com"),
		FoxESSAPIKey:       getEnv("FOXESS_API_KEY", ""),
		FoxESSTimeout:      getEnvAsDuration("FOXESS_TIMEOUT", 15*time.Second),
		FoxESSRetryCount:   getEnvAsInt("FOXESS_RETRY_COUNT", 2),
		FoxESSRetryWait:    getEnvAsDuration("FOXESS_RETRY_WAIT", 500*time.Millisecond),
		FoxESSRetryMaxWait: getEnvAsDuration("FOXESS_RETRY_MAX_WAIT", 5*time.Second),

		FaultDictionaryTTL: getEnvAsDuration("FAULT_DICTIONARY_TTL", 10*time.Minute),

		StrictAggregation: getEnvAsBool("STRICT_AGGREGATION", false),

		ZohoRefreshToken:   getEnv("ZOHO_REFRESH_TOKEN_RSOLAR", ""),
		ZohoClientID:       getEnv("ZOHO_CLIENT_ID_RSOLAR", ""),
		ZohoClientSecret:   getEnv("ZOHO_CLIENT_SECRET_RSOLAR", ""),
		ZohoTokenURL:       getEnv("ZOHO_REFRESH_TOKEN_URL_RSOLAR", "https://accounts.zoho.in/oauth/v2/token"),
		ZohoBaseURL:        getEnv("ZOHO_BASE_URL_RSOLAR", "https://www.zohoapis.in/invoice/v3/"),
		ZohoOrganizationID: getEnv("ZOHO_ORGANIZATION_ID_RSOLAR", ""),

		AWSRegion: getEnv("AWS_DEFAULT_REGION", "ap-south-1"),
		AWSBucket: getEnv("AWS_BUCKET", ""),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogDir:   getEnv("LOG_DIRECTORY", "./logs"),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
		"?charset=utf8mb4&parseTime=True&loc=" + c.DBTimezone + "&allowNativePasswords=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as duration with default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
