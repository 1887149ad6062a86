package asnrank

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "asnrank.toml")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
geolite2_asn = "/var/lib/GeoIP/GeoLite2-ASN.mmdb"
networks = [6799, 3329, 1241]
`)

	config, err := LoadConfig(path, true)

	assert.NilError(t, err)
	assert.Equal(t, config.GeoLite2ASN, "/var/lib/GeoIP/GeoLite2-ASN.mmdb")
	assert.DeepEqual(t, config.AllowedNetworks(), []ASN{6799, 3329, 1241})
	assert.NilError(t, config.Validate())
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	config, err := LoadConfig(path, false)
	assert.NilError(t, err)
	assert.ErrorContains(t, config.Validate(), "no GeoLite2 ASN database")

	_, err = LoadConfig(path, true)
	assert.ErrorContains(t, err, "could not read config")
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, `networks = "all"`)

	_, err := LoadConfig(path, true)

	assert.ErrorContains(t, err, "could not parse config")
}

func TestConfig_ValidateNetworks(t *testing.T) {
	config := &Config{GeoLite2ASN: "GeoLite2-ASN.mmdb"}

	assert.ErrorContains(t, config.Validate(), "no networks configured")
}
