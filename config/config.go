// Package config provides configuration handling
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/veltalldev/photo-gallery/util"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	InvokeAI  InvokeAIConfig  `json:"invokeai" mapstructure:"invokeai"`
	Photos    PhotosConfig    `json:"photos" mapstructure:"photos"`
	Whitelist WhitelistConfig `json:"whitelist" mapstructure:"whitelist"`
	LogLevel  string          `json:"logLevel" mapstructure:"log_level"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// InvokeAIConfig contains the downstream generation queue configuration
type InvokeAIConfig struct {
	BaseURL                  string `json:"baseUrl" mapstructure:"base_url"`
	QueueID                  string `json:"queueId" mapstructure:"queue_id"`
	EstimatedSecondsPerImage int    `json:"estimatedSecondsPerImage" mapstructure:"estimated_seconds_per_image"`
}

// PhotosConfig contains photo and thumbnail storage configuration
type PhotosConfig struct {
	Directory          string `json:"directory" mapstructure:"directory"`
	ThumbnailDirectory string `json:"thumbnailDirectory" mapstructure:"thumbnail_directory"`
	ThumbnailMaxSize   int    `json:"thumbnailMaxSize" mapstructure:"thumbnail_max_size"`
	ThumbnailQuality   int    `json:"thumbnailQuality" mapstructure:"thumbnail_quality"`
}

// WhitelistConfig contains the IP allow-list configuration
type WhitelistConfig struct {
	Addresses   []string `json:"addresses" mapstructure:"addresses"`
	File        string   `json:"file" mapstructure:"file"`
	AlwaysAllow []string `json:"alwaysAllow" mapstructure:"always_allow"`
}

var (
	config     Config
	configOnce sync.Once
)

// GetConfig loads configuration from .config.yaml with environment variable overrides
func GetConfig(configFile *string) Config {
	configOnce.Do(func() {
		var filePath string
		if configFile != nil {
			filePath = *configFile
		} else if os.Getenv("LOCAL") == "true" {
			filePath = ".config.local.yaml"
		} else {
			filePath = ".config.yaml"
		}
		v := viper.New()
		v.SetConfigFile(filePath)

		setDefaults(v)

		// Enable env var overrides (e.g. SERVER_PORT, INVOKEAI_BASE_URL)
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		// Config file is optional, defaults cover everything
		_ = v.ReadInConfig()

		if err := v.Unmarshal(&config); err != nil {
			util.LogWarning("could not unmarshal config", logrus.Fields{"error": err})
		}
	})
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)

	v.SetDefault("invokeai.base_url", "http://localhost:9090")
	v.SetDefault("invokeai.queue_id", "default")
	v.SetDefault("invokeai.estimated_seconds_per_image", 15)

	v.SetDefault("photos.directory", "photos")
	v.SetDefault("photos.thumbnail_directory", "photos/.thumbnails")
	v.SetDefault("photos.thumbnail_max_size", 300)
	v.SetDefault("photos.thumbnail_quality", 80)

	v.SetDefault("whitelist.addresses", []string{})
	v.SetDefault("whitelist.file", "")
	v.SetDefault("whitelist.always_allow", []string{"127.0.0.1", "::1"})

	v.SetDefault("log_level", "info")
}
