package config

import (
	"errors"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	if c.Analytics.MinScore < 0 || c.Analytics.MinScore > 1 {
		return errors.New("min_score must be between 0 and 1")
	}

	if c.Analytics.MinSeverity < 1 || c.Analytics.MinSeverity > 5 {
		return errors.New("min_severity must be between 1 and 5")
	}

	if c.Analytics.ForecastTop <= 0 {
		return errors.New("forecast_top must be positive")
	}

	if c.Analytics.ForecastHistoryDays <= 0 {
		return errors.New("forecast_history_days must be positive")
	}

	if c.Analytics.DefaultSeriesDays <= 0 {
		return errors.New("default_series_days must be positive")
	}

	if c.Analytics.AlertLimit <= 0 {
		return errors.New("alert_limit must be positive")
	}

	return nil
}
