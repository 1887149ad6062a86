package asnrank

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const DefaultConfigPath = "asnrank.toml"

type Config struct {
	GeoLite2ASN string   `toml:"geolite2_asn"`
	Networks    []uint32 `toml:"networks"`
}

// LoadConfig reads a TOML config file. A missing file is only an error when
// required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return config, nil
		}
		return nil, errors.Wrapf(err, "could not read config %s", path)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "could not parse config %s", path)
	}

	return config, nil
}

func (c *Config) AllowedNetworks() []ASN {
	ret := make([]ASN, 0, len(c.Networks))
	for _, network := range c.Networks {
		ret = append(ret, ASN(network))
	}
	return ret
}

func (c *Config) Validate() error {
	if c.GeoLite2ASN == "" {
		return errors.New("no GeoLite2 ASN database configured")
	}
	if len(c.Networks) == 0 {
		return errors.New("no networks configured")
	}
	return nil
}
