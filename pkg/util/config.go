package util

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig reads config.{yaml,json,toml} from dir. A missing file is not an error, env vars and defaults still apply.
func ReadConfig(dir string) error {
	viper.SetConfigName("config")
	viper.AddConfigPath(dir)
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
