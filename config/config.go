package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"PackTools/fvt"
	"PackTools/kcap"
)

// Config holds the tool settings that can be kept in a YAML file instead of
// being passed as flags every time.
type Config struct {
	// Password unlocks encrypted packs and encrypts new ones.
	Password string `yaml:"password"`
	// Separator joins path components inside pack entry names.
	Separator string `yaml:"separator"`
	// RecordFormat is the document form produced by "fvt decode".
	RecordFormat fvt.Format `yaml:"record_format"`
	Verbose      bool       `yaml:"verbose"`
}

// Default returns the settings for the Densha de D packs.
func Default() *Config {
	return &Config{
		Password:     kcap.DefaultPassword,
		Separator:    `\`,
		RecordFormat: fvt.JSON,
	}
}

// Load reads the YAML file at path on top of the defaults. Keys missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.RecordFormat {
	case fvt.JSON, fvt.YAML:
	default:
		return errors.Errorf("record_format must be %q or %q, got %q", fvt.JSON, fvt.YAML, c.RecordFormat)
	}
	if c.Separator != `\` && c.Separator != "/" {
		return errors.Errorf(`separator must be "\" or "/", got %q`, c.Separator)
	}
	return nil
}
