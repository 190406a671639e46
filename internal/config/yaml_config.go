package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig is the optional config.yaml overlay for settings that are
// awkward as env vars. Zero values leave the env-derived setting alone.
type YAMLConfig struct {
	Sharing SharingConfig `yaml:"sharing"`
	Storage StorageConfig `yaml:"storage"`
	Sweeper SweeperConfig `yaml:"sweeper"`
}

// SharingConfig overrides invitation behaviour.
type SharingConfig struct {
	AllowAnonymous *bool  `yaml:"allow_anonymous,omitempty"`
	MaxRecipients  int    `yaml:"max_recipients,omitempty"`
	InviteSubject  string `yaml:"invite_subject,omitempty"`
}

// StorageConfig overrides upload limits.
type StorageConfig struct {
	MaxUploadBytes int64    `yaml:"max_upload_bytes,omitempty"`
	AllowedTypes   []string `yaml:"allowed_types,omitempty"`
}

// SweeperConfig overrides the orphaned image sweeper schedule.
type SweeperConfig struct {
	Interval string `yaml:"interval,omitempty"`
	MinAge   string `yaml:"min_age,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	return ParseYAMLConfig(data)
}

// ParseYAMLConfig decodes a YAML overlay.
func ParseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply overlays the YAML settings onto c.
func (y *YAMLConfig) Apply(c *Config) error {
	if y == nil {
		return nil
	}

	if y.Sharing.AllowAnonymous != nil {
		c.AllowAnonymousShares = *y.Sharing.AllowAnonymous
	}
	if y.Sharing.MaxRecipients > 0 {
		c.MaxShareRecipients = y.Sharing.MaxRecipients
	}
	if y.Sharing.InviteSubject != "" {
		c.InviteSubject = y.Sharing.InviteSubject
	}

	if y.Storage.MaxUploadBytes > 0 {
		c.MaxUploadBytes = y.Storage.MaxUploadBytes
	}
	if len(y.Storage.AllowedTypes) > 0 {
		c.AllowedImageTypes = y.Storage.AllowedTypes
	}

	if y.Sweeper.Interval != "" {
		d, err := time.ParseDuration(y.Sweeper.Interval)
		if err != nil {
			return err
		}
		c.ImageSweepInterval = d
	}
	if y.Sweeper.MinAge != "" {
		d, err := time.ParseDuration(y.Sweeper.MinAge)
		if err != nil {
			return err
		}
		c.ImageSweepMinAge = d
	}

	return nil
}
