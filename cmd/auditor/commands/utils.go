/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Akaylee Auditor commands. Provides common
configuration loading, logger construction, and device runner setup used
across all command implementations.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/akaylee-auditor/pkg/adb"
	"github.com/kleascm/akaylee-auditor/pkg/logging"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("AKAYLEE")
	viper.AutomaticEnv()

	return nil
}

// BuildLogger constructs the structured logger from the active configuration
func BuildLogger() (*logging.Logger, error) {
	config := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    logging.LogFormat(viper.GetString("log_format")),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		MaxSize:   viper.GetInt64("log_max_size"),
		Timestamp: true,
		Caller:    false,
		Colors:    true,
		Compress:  viper.GetBool("log_compress"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	return logging.NewLogger(config)
}

// BuildRunner constructs the device runner from the active configuration
func BuildRunner(logger *logging.Logger) *adb.Runner {
	return adb.NewRunner(viper.GetString("adb_path"), viper.GetString("device"), logger)
}
