package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName string `mapstructure:"APP_NAME"`
	Port    string `mapstructure:"PORT"`

	// MongoDB configuration
	MongoURI     string        `mapstructure:"MONGO_URI"`
	MongoDBName  string        `mapstructure:"MONGO_DBNAME"`
	MongoTimeout time.Duration `mapstructure:"MONGO_TIMEOUT"`

	// Auth configuration
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	// Product image uploads
	UploadDir string `mapstructure:"UPLOAD_DIR"`

	// Application settings
	LogLevel string `mapstructure:"LOG_LEVEL"` // e.g., "debug", "info", "warn", "error"
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)  // Path to look for the config file in
	viper.SetConfigName("app") // Name of config file (without extension)
	viper.SetConfigType("env")

	viper.AutomaticEnv() // Read in environment variables that match

	// Set default values
	viper.SetDefault("APP_NAME", "loja-backend")
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DBNAME", "loja")
	viper.SetDefault("MONGO_TIMEOUT", 15*time.Second)

	viper.SetDefault("JWT_SECRET", "loja_eletrica_secret_key")
	viper.SetDefault("TOKEN_TTL", 7*24*time.Hour)

	viper.SetDefault("UPLOAD_DIR", "uploads/products")

	// If a config file is found, read it in.
	if err = viper.ReadInConfig(); err == nil {
		log.Info().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Info().Msg("No config file found, using environment variables and defaults.")
		err = nil
	} else {
		log.Error().Err(err).Msg("Error reading config file")
		return
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode into struct")
	}

	return
}
