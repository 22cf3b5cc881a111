package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env-default:"prod"`
	Site     SiteRef        `yaml:"site"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Registry RegistryConfig `yaml:"registry"`
	Health   HealthConfig   `yaml:"health"`
	Log      LogConfig      `yaml:"log"`
}

type SiteRef struct {
	Name       string `yaml:"name" env-required:"true"`
	ConfigPath string `yaml:"config_path" env-required:"true"`
}

type AnalysisConfig struct {
	Interval     time.Duration `yaml:"interval" env-default:"5m"`
	SnapshotPath string        `yaml:"snapshot_path"`
	ResolutionM  float64       `yaml:"resolution_m" env-default:"1"`
}

type RegistryConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Path    string `yaml:"path" env-default:"/var/lib/meshscope/registry.db"`
}

type HealthConfig struct {
	Address string `yaml:"address" env-default:":8080"`
}

type LogConfig struct {
	Level  string `yaml:"level" env-default:"info"`
	Format string `yaml:"format" env-default:"json"`
}

func MustLoad(configPath string) *Config {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}
