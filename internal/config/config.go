// Package config loads the YAML configuration file into a typed struct and
// validates it eagerly, so a broken setup fails before any remote call is
// made. There is no ambient singleton; the loaded Config is passed explicitly
// to whoever needs it.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultPath is used when the HHIWI_CONFIG environment variable is unset.
const DefaultPath = "./config.yml"

// HarvestConfig holds the remote API credentials.
type HarvestConfig struct {
	APIURL       string `mapstructure:"api_url"`
	AccountID    string `mapstructure:"account_id"`
	AccountToken string `mapstructure:"account_token"`
	ProjectID    string `mapstructure:"project_id"`
}

// FunctionConfig toggles the optional processing rules.
type FunctionConfig struct {
	MergeDaily   bool `mapstructure:"merge_daily"`
	MonthlyLeave bool `mapstructure:"monthly_leave"`
	ClipOvertime bool `mapstructure:"clip_overtime"`
}

// PersonalConfig holds the identity and billing data printed on the sheet.
type PersonalConfig struct {
	Name            string  `mapstructure:"name"`
	PersonnelNumber string  `mapstructure:"personnel_number"`
	Institute       string  `mapstructure:"institute"`
	// WorkingHours is the contracted monthly working-time target in hours.
	WorkingHours float64 `mapstructure:"working_hours"`
	HourlyRate   float64 `mapstructure:"hourly_rate"`
	// MonthlyLeave is the leave granted per month, in hours. Only read when
	// function.monthly_leave is enabled.
	MonthlyLeave float64 `mapstructure:"monthly_leave"`
}

// Config is the full configuration for one invocation.
type Config struct {
	Harvest  HarvestConfig  `mapstructure:"harvest"`
	Function FunctionConfig `mapstructure:"function"`
	Personal PersonalConfig `mapstructure:"personal"`
}

// Load reads and validates the YAML config file at path.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// validate checks all required fields up front.
func (c Config) validate() error {
	missing := func(key string) error {
		return fmt.Errorf("required setting %s is missing", key)
	}

	switch {
	case c.Harvest.APIURL == "":
		return missing("harvest.api_url")
	case c.Harvest.AccountID == "":
		return missing("harvest.account_id")
	case c.Harvest.AccountToken == "":
		return missing("harvest.account_token")
	case c.Harvest.ProjectID == "":
		return missing("harvest.project_id")
	case c.Personal.Name == "":
		return missing("personal.name")
	case c.Personal.PersonnelNumber == "":
		return missing("personal.personnel_number")
	case c.Personal.Institute == "":
		return missing("personal.institute")
	}

	if c.Personal.WorkingHours <= 0 {
		return fmt.Errorf("personal.working_hours must be positive, got %v", c.Personal.WorkingHours)
	}
	if c.Function.MonthlyLeave && c.Personal.MonthlyLeave <= 0 {
		return fmt.Errorf("function.monthly_leave is enabled but personal.monthly_leave is %v",
			c.Personal.MonthlyLeave)
	}
	return nil
}
