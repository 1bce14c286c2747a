package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ApplyFlags copies every changed flag whose name matches a key onto c.
// Flags the user did not pass leave the file and environment values alone.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	for _, k := range Keys {
		f := fs.Lookup(k.Name)
		if f == nil || !f.Changed {
			continue
		}
		if err := k.Set(c, f.Value.String()); err != nil {
			return fmt.Errorf("config: flag --%s: %w", k.Name, err)
		}
	}
	return nil
}

// Effective resolves the configuration the way every command sees it:
// defaults, then the file at path, then the environment, then changed
// flags. The result is validated.
func Effective(path string, fs *pflag.FlagSet) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if fs != nil {
		if err := cfg.ApplyFlags(fs); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
