package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	Database      DatabaseConfig      `json:"database"`
	Security      SecurityConfig      `json:"security"`
	Logging       LoggingConfig       `json:"logging"`
	Wallet        WalletConfig        `json:"wallet"`
	Projects      ProjectsConfig      `json:"projects"`
	Creation      CreationConfig      `json:"creation"`
	Onboarding    OnboardingConfig    `json:"onboarding"`
	Lifecycle     LifecycleConfig     `json:"lifecycle"`
	Notifications NotificationsConfig `json:"notifications"`
	Storage       StorageConfig       `json:"storage"`
	Events        EventsConfig        `json:"events"`
	Search        SearchConfig        `json:"search"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration.
// Driver "memory" keeps the seeded mock data set in process.
type DatabaseConfig struct {
	Driver         string        `json:"driver"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	Seed           bool          `json:"seed"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret  string        `json:"jwt_secret"`
	JWTIssuer  string        `json:"jwt_issuer"`
	SessionTTL time.Duration `json:"session_ttl"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// WalletConfig controls how wallet connections resolve an account.
// An empty RPCURL simulates MockAccount.
type WalletConfig struct {
	RPCURL      string        `json:"rpc_url"`
	MockAccount string        `json:"mock_account"`
	Timeout     time.Duration `json:"timeout"`
}

type ProjectsConfig struct {
	PoRRequirement     int           `json:"por_requirement"`
	DefaultFundingGoal float64       `json:"default_funding_goal"`
	DisputeWindow      time.Duration `json:"dispute_window"`
}

// CreationConfig drives the simulated on-chain project creation steps
type CreationConfig struct {
	StepDelays  []time.Duration `json:"step_delays"`
	FailureRate float64         `json:"failure_rate"`
	Retention   time.Duration   `json:"retention"`
}

type OnboardingConfig struct {
	VerificationDelay time.Duration `json:"verification_delay"`
	SuccessRate       float64       `json:"success_rate"`
	MongoURI          string        `json:"mongo_uri"`
	MongoDatabase     string        `json:"mongo_database"`
	MongoCollection   string        `json:"mongo_collection"`
}

// LifecycleConfig schedules background status maintenance.
// ArchiveGracePeriod of zero disables archival.
type LifecycleConfig struct {
	Enabled            bool          `json:"enabled"`
	Schedule           string        `json:"schedule"`
	ArchiveGracePeriod time.Duration `json:"archive_grace_period"`
}

type NotificationsConfig struct {
	ToastTTL time.Duration `json:"toast_ttl"`
}

type StorageConfig struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UsePathStyle    bool   `json:"use_path_style"`
	PublicBaseURL   string `json:"public_base_url"`
}

type EventsConfig struct {
	SNSTopicARN string `json:"sns_topic_arn"`
	Region      string `json:"region"`
}

type SearchConfig struct {
	ElasticAddresses []string `json:"elastic_addresses"`
	Username         string   `json:"username"`
	Password         string   `json:"password"`
	Index            string   `json:"index"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         "memory",
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "cairn_portal",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    time.Hour,
			Seed:           true,
		},
		Security: SecurityConfig{
			JWTSecret:  "cairn-dev-secret",
			JWTIssuer:  "cairn-portal",
			SessionTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "debug"},
		Wallet: WalletConfig{
			MockAccount: "0x1A2B...C3D4",
			Timeout:     10 * time.Second,
		},
		Projects: ProjectsConfig{
			PoRRequirement:     3,
			DefaultFundingGoal: 15000,
			DisputeWindow:      7 * 24 * time.Hour,
		},
		Creation: CreationConfig{
			StepDelays: []time.Duration{2 * time.Second, 2500 * time.Millisecond, 2 * time.Second},
			Retention:  time.Hour,
		},
		Onboarding: OnboardingConfig{
			VerificationDelay: 3500 * time.Millisecond,
			SuccessRate:       0.8,
			MongoDatabase:     "cairn",
			MongoCollection:   "onboarding_flags",
		},
		Lifecycle: LifecycleConfig{
			Schedule: "0 */15 * * * *",
		},
		Notifications: NotificationsConfig{ToastTTL: 5 * time.Second},
		Storage: StorageConfig{
			Bucket:        "cairn-outputs",
			Region:        "us-east-1",
			PublicBaseURL: "http://localhost:8080/files",
		},
		Events: EventsConfig{Region: "us-east-1"},
		Search: SearchConfig{Index: "cairn-projects"},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
		config.Server.Port = p
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if rpcURL := os.Getenv("WALLET_RPC_URL"); rpcURL != "" {
		config.Wallet.RPCURL = rpcURL
	}
	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		config.Onboarding.MongoURI = mongoURI
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if topic := os.Getenv("SNS_TOPIC_ARN"); topic != "" {
		config.Events.SNSTopicARN = topic
	}
	if addrs := os.Getenv("ELASTICSEARCH_URLS"); addrs != "" {
		config.Search.ElasticAddresses = strings.Split(addrs, ",")
	}
	if grace := os.Getenv("ARCHIVE_GRACE_PERIOD"); grace != "" {
		d, err := time.ParseDuration(grace)
		if err != nil {
			return fmt.Errorf("invalid ARCHIVE_GRACE_PERIOD: %w", err)
		}
		config.Lifecycle.ArchiveGracePeriod = d
	}
	return nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Projects.PoRRequirement < 0 {
		return fmt.Errorf("por_requirement must not be negative")
	}
	if c.Creation.FailureRate < 0 || c.Creation.FailureRate > 1 {
		return fmt.Errorf("creation failure_rate must be within [0,1]")
	}
	if c.Onboarding.SuccessRate < 0 || c.Onboarding.SuccessRate > 1 {
		return fmt.Errorf("onboarding success_rate must be within [0,1]")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
