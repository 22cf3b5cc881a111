package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

// SiteConfig describes the physical site: building geometry, where the
// mesh nodes sit, and known ambient interference sources.
type SiteConfig struct {
	SiteName   string                  `yaml:"site_name"`
	Building   model.Building          `yaml:"building"`
	Placements []model.NodePlacement   `yaml:"placements"`
	Neighbors  []model.NeighborNetwork `yaml:"neighbors,omitempty"`
}

func MustLoadSite(configPath string) *SiteConfig {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("site config file not found: " + configPath)
	}

	var cfg SiteConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("failed to read site config: " + err.Error())
	}

	// Ambient sources may live at either level; the building list is what
	// the coverage mapper consumes.
	if len(cfg.Neighbors) > 0 {
		cfg.Building.Neighbors = append(cfg.Building.Neighbors, cfg.Neighbors...)
	}

	return &cfg
}
