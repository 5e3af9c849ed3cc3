package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1650, cfg.Card.Width)
	assert.Equal(t, 5, cfg.Table.MaxContacts)
	assert.Equal(t, "20m", cfg.Bands.BandFor(14.074))
	assert.Len(t, cfg.Columns.Headers, len(cfg.Columns.WidthsPercent))
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsl_config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qsl_cards", cfg.Output.DefaultDirectory)

	// The default config must now exist on disk.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsl_config.json")
	override := `{
		"card": {"width": 1200},
		"table": {"max_contacts": 3},
		"generation": {"hz_threshold": 5000}
	}`
	require.NoError(t, os.WriteFile(path, []byte(override), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1200, cfg.Card.Width)
	assert.Equal(t, 1050, cfg.Card.Height) // default preserved
	assert.Equal(t, 3, cfg.Table.MaxContacts)
	assert.Equal(t, 5000.0, cfg.Generation.HzThreshold)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"zero max contacts", `{"table": {"max_contacts": 0}}`},
		{"widths over one", `{"columns": {"widths_percent": [0.6, 0.6], "headers": ["A", "B"]}}`},
		{"widths headers mismatch", `{"columns": {"widths_percent": [0.5], "headers": ["A", "B"]}}`},
		{"overlapping bands", `{"bands": [{"low": 1.8, "high": 2.0, "label": "160m"}, {"low": 1.9, "high": 4.0, "label": "80m"}]}`},
		{"bad color", `{"colors": {"header_bg": "dark gray"}}`},
		{"zero hz threshold", `{"generation": {"hz_threshold": 0}}`},
		{"inverted row heights", `{"table": {"min_row_height": 40, "max_row_height": 25}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "qsl_config.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.json), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestModeTables(t *testing.T) {
	tables := Default().ModeTables()
	assert.Contains(t, tables.Digital, "FT8")
	assert.Contains(t, tables.Voice, "SSB")
	assert.Equal(t, "FT4", tables.Special["MFSK/FT4"])
}
