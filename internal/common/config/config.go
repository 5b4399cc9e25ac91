// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Facebook      FacebookConfig     `mapstructure:"facebook"`
	Intake        IntakeConfig       `mapstructure:"intake"`
	Search        SearchConfig       `mapstructure:"search"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	RequestTimeout  int    `mapstructure:"request_timeout"`  // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres       PostgresConfig      `mapstructure:"postgres"`
	Redis          RedisConfig         `mapstructure:"redis"`
	Elasticsearch  ElasticsearchConfig `mapstructure:"elasticsearch"`
	MigrateOnStart bool                `mapstructure:"migrate_on_start"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	LeadTTL  int    `mapstructure:"lead_ttl"` // seconds
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// AuthConfig holds staff login settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	TokenTTL  int    `mapstructure:"token_ttl"` // minutes
	Issuer    string `mapstructure:"issuer"`

	// First owner account, created only while the staff table is empty.
	BootstrapOwnerName     string `mapstructure:"bootstrap_owner_name"`
	BootstrapOwnerEmail    string `mapstructure:"bootstrap_owner_email"`
	BootstrapOwnerPassword string `mapstructure:"bootstrap_owner_password"`
}

// FacebookConfig holds the lead-ads integration credentials.
type FacebookConfig struct {
	VerifyToken  string `mapstructure:"verify_token"`
	AccessToken  string `mapstructure:"access_token"`
	GraphBaseURL string `mapstructure:"graph_base_url"`
	GraphVersion string `mapstructure:"graph_version"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// IntakeConfig drives how provider leads are mapped onto internal leads.
type IntakeConfig struct {
	DefaultBranchID string `mapstructure:"default_branch_id"`
	DefaultLoanType string `mapstructure:"default_loan_type"`
}

type SearchConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

// NotificationConfig holds settings for new-lead alerts.
type NotificationConfig struct {
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled      bool     `mapstructure:"enabled"`
		PhoneNumbers []string `mapstructure:"phone_numbers"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
