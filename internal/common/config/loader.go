// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<env>.yaml on top of it and
// lets environment variables override any key.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // environment overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional env names when the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		target *string
		env    string
	}{
		{&cfg.Facebook.VerifyToken, "FACEBOOK_VERIFY_TOKEN"},
		{&cfg.Facebook.AccessToken, "FACEBOOK_ACCESS_TOKEN"},
		{&cfg.Auth.JWTSecret, "JWT_SECRET"},
		{&cfg.Auth.BootstrapOwnerEmail, "BOOTSTRAP_OWNER_EMAIL"},
		{&cfg.Auth.BootstrapOwnerPassword, "BOOTSTRAP_OWNER_PASSWORD"},
		{&cfg.Database.Postgres.User, "DB_USER"},
		{&cfg.Database.Postgres.Password, "DB_PASSWORD"},
		{&cfg.Database.Redis.Password, "REDIS_PASSWORD"},
		{&cfg.Intake.DefaultBranchID, "INTAKE_DEFAULT_BRANCH_ID"},
	}
	for _, o := range overrides {
		if *o.target != "" {
			continue
		}
		if val := os.Getenv(o.env); val != "" {
			*o.target = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "loandesk"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.LeadTTL == 0 {
		cfg.Database.Redis.LeadTTL = 300
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 720
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = cfg.App.Name
	}

	if cfg.Facebook.GraphBaseURL == "" {
		cfg.Facebook.GraphBaseURL = "https://graph.facebook.com"
	}
	if cfg.Facebook.GraphVersion == "" {
		cfg.Facebook.GraphVersion = "v18.0"
	}
	if cfg.Facebook.Timeout == 0 {
		cfg.Facebook.Timeout = 10000
	}

	if cfg.Intake.DefaultBranchID == "" {
		cfg.Intake.DefaultBranchID = "main"
	}
	if cfg.Intake.DefaultLoanType == "" {
		cfg.Intake.DefaultLoanType = "Personal Loan"
	}

	if cfg.Search.Index == "" {
		cfg.Search.Index = "leads"
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-south-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.Search.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when search is enabled")
	}
	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required when email alerts are enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
