package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"relloyd/focustrack/models"
)

var (
	AppHomeDir = ".focustrack"
	// AppCfg is the application configuration.
	AppCfg AppConfig
	// BuildTime is set by the go build command - probably see the Makefile.
	BuildTime string
	// BuildVersion is set by the go build command - probably see the Makefile.
	BuildVersion string
)

func init() {
	// Load app config from the environment.
	err := envconfig.Process("", &AppCfg)
	if err != nil {
		fmt.Println("failed to process app config:", err)
		os.Exit(1)
	}
}

type AppConfig struct {
	LogLevel         string                  `envconfig:"LOG_LEVEL" default:"info"`
	WebConfig        WebConfig               `envconfig:"WEB"`
	TrackerConfig    models.TrackerConfig    `envconfig:"TRACKER"`
	AggregatorConfig models.AggregatorConfig `envconfig:"AGGREGATOR"`
	SyncConfig       models.SyncConfig       `envconfig:"SYNC"`
}

type WebConfig struct {
	WebEnabled bool `envconfig:"ENABLED" default:"true"`
	WebPort    int  `envconfig:"PORT" default:"7600"`
}
