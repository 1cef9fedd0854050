// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"json", "console"}
)

// ValidateLogLevel checks the level against the levels the logger understands.
// An empty level selects the default.
func ValidateLogLevel(level string) error {
	if level == "" || contains(logLevels, level) {
		return nil
	}
	return fmt.Errorf("invalid log level: %s, expected one of %s", level, strings.Join(logLevels, ", "))
}

// ValidateLogFormat checks the encoder format. An empty format selects the default.
func ValidateLogFormat(format string) error {
	if format == "" || contains(logFormats, format) {
		return nil
	}
	return fmt.Errorf("invalid log format: %s, expected one of %s", format, strings.Join(logFormats, ", "))
}

// ValidateLogging validates a complete logging section.
func ValidateLogging(level, format string) error {
	if err := ValidateLogLevel(level); err != nil {
		return err
	}
	return ValidateLogFormat(format)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
