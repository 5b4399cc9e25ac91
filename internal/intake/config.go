package intake

import (
	"fmt"

	"loandesk/internal/common/config"
)

// Provider labels logs and metrics for leads arriving through lead ads.
const Provider = "facebook"

type Config struct {
	VerifyToken     string `mapstructure:"verify_token"`
	DefaultBranchID string `mapstructure:"default_branch_id"`
	DefaultLoanType string `mapstructure:"default_loan_type"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultBranchID: "main",
		DefaultLoanType: "Personal Loan",
		MaxBodyBytes:    1 << 20,
	}
}

func (c *Config) Validate() error {
	if c.DefaultBranchID == "" {
		return fmt.Errorf("default_branch_id is required")
	}
	if c.DefaultLoanType == "" {
		return fmt.Errorf("default_loan_type is required")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}

// createConfigFromAppConfig starts from the defaults, layers the application
// config on top and lets an explicit custom config win.
func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	cfg := DefaultConfig()

	if appConfig != nil {
		cfg.VerifyToken = appConfig.Facebook.VerifyToken
		if appConfig.Intake.DefaultBranchID != "" {
			cfg.DefaultBranchID = appConfig.Intake.DefaultBranchID
		}
		if appConfig.Intake.DefaultLoanType != "" {
			cfg.DefaultLoanType = appConfig.Intake.DefaultLoanType
		}
	}

	if customConfig != nil {
		if customConfig.VerifyToken != "" {
			cfg.VerifyToken = customConfig.VerifyToken
		}
		if customConfig.DefaultBranchID != "" {
			cfg.DefaultBranchID = customConfig.DefaultBranchID
		}
		if customConfig.DefaultLoanType != "" {
			cfg.DefaultLoanType = customConfig.DefaultLoanType
		}
		if customConfig.MaxBodyBytes > 0 {
			cfg.MaxBodyBytes = customConfig.MaxBodyBytes
		}
	}

	return cfg
}
