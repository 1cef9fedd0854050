// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-repayments/internal/cache"
	"github.com/iwvelando/loan-repayments/pkg/configprocessor"
	"github.com/iwvelando/loan-repayments/pkg/constants"
	"github.com/iwvelando/loan-repayments/pkg/currency"
	"github.com/iwvelando/loan-repayments/pkg/datetime"
	"github.com/iwvelando/loan-repayments/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-repayments.
type Configuration struct {
	Currency  string        `yaml:"currency,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios,omitempty"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
	Cache     cache.Config  `yaml:"cache,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Scenario is one loan to calculate. Amounts are given in US dollars and
// converted into the scenario's currency before calculation.
type Scenario struct {
	Name         string  `yaml:"name"`
	Active       bool    `yaml:"active"`
	HomeValue    float64 `yaml:"homeValue"`
	Deposit      float64 `yaml:"deposit"`
	InterestRate float64 `yaml:"interestRate"` // annual percentage
	LoanTerm     int     `yaml:"loanTerm"`     // years
	Currency     string  `yaml:"currency,omitempty"`
	StartDate    string  `yaml:"startDate,omitempty"` // YYYY-MM
}

// DefaultScenario mirrors the values the calculator form starts with.
func DefaultScenario() Scenario {
	return Scenario{
		Name:         "default",
		Active:       true,
		HomeValue:    constants.DefaultHomeValue,
		Deposit:      constants.DefaultDeposit,
		InterestRate: constants.DefaultInterestRate,
		LoanTerm:     constants.DefaultLoanTerm,
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("currency", constants.DefaultCurrency)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("cache.backend", constants.CacheBackendNone)
	v.SetDefault("cache.ttlSeconds", constants.DefaultCacheTTLSeconds)
	v.SetDefault("cache.maxEntries", constants.DefaultCacheMaxEntries)
	v.SetDefault("cache.redisAddr", "")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if len(configuration.Scenarios) == 0 {
		configuration.Scenarios = []Scenario{DefaultScenario()}
	}
	for i := range configuration.Scenarios {
		if configuration.Scenarios[i].Name == "" {
			configuration.Scenarios[i].Name = fmt.Sprintf("scenario %d", i+1)
		}
	}

	return &configuration, nil
}

// CurrencyFor resolves the currency of a scenario, falling back to the
// configuration-wide default and then to USD.
func (conf *Configuration) CurrencyFor(scenario Scenario) (currency.Currency, error) {
	code := scenario.Currency
	if code == "" {
		code = conf.Currency
	}
	if code == "" {
		code = constants.DefaultCurrency
	}
	return currency.Lookup(code)
}

// Validate reports settings that make the configuration unusable.
func (conf *Configuration) Validate() error {
	if conf.Output.Format != "" {
		if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
			return err
		}
	}
	if err := validation.ValidateLogging(conf.Logging.Level, conf.Logging.Format); err != nil {
		return err
	}
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			continue
		}
		if _, err := conf.CurrencyFor(scenario); err != nil {
			return fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		if scenario.StartDate != "" {
			if err := datetime.ValidateDate(scenario.StartDate); err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
		}
	}
	return nil
}

// ActiveScenarios returns the scenarios marked active, in configuration order.
func (conf *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range conf.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	scenarios := make([]configprocessor.ScenarioInfo, 0, len(conf.Scenarios))
	for _, scenario := range conf.Scenarios {
		scenarios = append(scenarios, configprocessor.ScenarioInfo{
			Name:      scenario.Name,
			Active:    scenario.Active,
			HomeValue: scenario.HomeValue,
			Deposit:   scenario.Deposit,
			Currency:  scenario.Currency,
		})
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(conf.Currency, scenarios)
}
