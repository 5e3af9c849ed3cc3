// Package config loads and validates the card generator configuration.
// Defaults cover every key; a JSON config file overrides them and a
// missing file is written out with the defaults so users have a starting
// point to edit.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"

	"qslgen/internal/classify"
)

// Config is the fully-resolved configuration consumed by the layout and
// render packages. Validate must pass before any rendering begins.
type Config struct {
	Output       OutputConfig       `mapstructure:"output"`
	Template     TemplateConfig     `mapstructure:"template"`
	Generation   GenerationConfig   `mapstructure:"generation"`
	Card         CardConfig         `mapstructure:"card"`
	Table        TableConfig        `mapstructure:"table"`
	Info         InfoConfig         `mapstructure:"additional_info"`
	Confirmation ConfirmationConfig `mapstructure:"confirmation_text"`
	Fonts        FontConfig         `mapstructure:"fonts"`
	Colors       ColorConfig        `mapstructure:"colors"`
	Columns      ColumnsConfig      `mapstructure:"columns"`
	Modes        ModesConfig        `mapstructure:"modes"`
	Bands        classify.BandPlan  `mapstructure:"bands"`
}

type OutputConfig struct {
	DefaultDirectory string `mapstructure:"default_directory"`
	AutoClean        bool   `mapstructure:"auto_clean"`
	Quality          int    `mapstructure:"quality"`
	HistoryDB        string `mapstructure:"history_db"`
}

type TemplateConfig struct {
	DefaultImage string `mapstructure:"default_image"`
}

type GenerationConfig struct {
	BatchByCall bool    `mapstructure:"batch_by_call"`
	HzThreshold float64 `mapstructure:"hz_threshold"`
}

type CardConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type TableConfig struct {
	X             int     `mapstructure:"x"`
	YPercent      float64 `mapstructure:"y_percent"`
	WidthMargin   int     `mapstructure:"width_margin"`
	HeightPercent float64 `mapstructure:"height_percent"`
	MaxContacts   int     `mapstructure:"max_contacts"`
	HeaderHeight  int     `mapstructure:"header_height"`
	MinRowHeight  int     `mapstructure:"min_row_height"`
	MaxRowHeight  int     `mapstructure:"max_row_height"`
}

type InfoConfig struct {
	X                   int      `mapstructure:"x"`
	YOffset             int      `mapstructure:"y_offset"`
	WidthMargin         int      `mapstructure:"width_margin"`
	HeightPercent       float64  `mapstructure:"height_percent"`
	HeaderHeight        int      `mapstructure:"header_height"`
	RowHeight           int      `mapstructure:"row_height"`
	DateBandWidth       int      `mapstructure:"date_band_width"`
	PotaWidth           int      `mapstructure:"pota_width"`
	CommentMargin       int      `mapstructure:"comment_margin"`
	ShowGrid            bool     `mapstructure:"show_grid"`
	DefaultMessages     []string `mapstructure:"default_messages"`
	FixedDefaultMessage bool     `mapstructure:"fixed_default_message"`
}

type ConfirmationConfig struct {
	ShowBorder bool   `mapstructure:"show_border"`
	TextColor  string `mapstructure:"text_color"`
	XOffset    int    `mapstructure:"x_offset"`
	YOffset    int    `mapstructure:"y_offset"`
}

type FontConfig struct {
	Primary string         `mapstructure:"primary"`
	Bold    string         `mapstructure:"bold"`
	Sizes   map[string]int `mapstructure:"sizes"`
}

// ColorConfig is the palette keyed by semantic role. All values are hex.
type ColorConfig struct {
	HeaderBg       string `mapstructure:"header_bg"`
	HeaderText     string `mapstructure:"header_text"`
	RowBg          string `mapstructure:"row_bg"`
	RowBgAlt       string `mapstructure:"row_bg_alt"`
	Text           string `mapstructure:"text"`
	DigitalMode    string `mapstructure:"digital_mode"`
	VoiceMode      string `mapstructure:"voice_mode"`
	PotaRef        string `mapstructure:"pota_ref"`
	Comment        string `mapstructure:"comment"`
	SectionBg      string `mapstructure:"section_bg"`
	DefaultMessage string `mapstructure:"default_message"`
	GridLines      string `mapstructure:"grid_lines"`
}

type ColumnsConfig struct {
	WidthsPercent []float64 `mapstructure:"widths_percent"`
	Headers       []string  `mapstructure:"headers"`
}

type ModesConfig struct {
	Digital         []string          `mapstructure:"digital"`
	DigitalMain     []string          `mapstructure:"digital_main"`
	Voice           []string          `mapstructure:"voice"`
	SpecialHandling map[string]string `mapstructure:"special_handling"`
}

// ModeTables converts the mode configuration into classifier tables.
func (c *Config) ModeTables() classify.Tables {
	return classify.Tables{
		Digital:     c.Modes.Digital,
		DigitalMain: c.Modes.DigitalMain,
		Voice:       c.Modes.Voice,
		Special:     c.Modes.SpecialHandling,
	}
}

// Load reads the config file at path, merged over the defaults.
// When the file does not exist it is created with the default values
// so users have a place to start editing.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")

		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := v.SafeWriteConfigAs(path); err != nil {
				return nil, fmt.Errorf("write default config: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration, already validated.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Decoding pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.default_directory", "qsl_cards")
	v.SetDefault("output.auto_clean", false)
	v.SetDefault("output.quality", 95)
	v.SetDefault("output.history_db", "qsl_history.db")

	v.SetDefault("template.default_image", "QSLTemplate.png")

	v.SetDefault("generation.batch_by_call", true)
	v.SetDefault("generation.hz_threshold", 1000)

	v.SetDefault("card.width", 1650)
	v.SetDefault("card.height", 1050)

	v.SetDefault("table.x", 50)
	v.SetDefault("table.y_percent", 0.45)
	v.SetDefault("table.width_margin", 470)
	v.SetDefault("table.height_percent", 0.30)
	v.SetDefault("table.max_contacts", 5)
	v.SetDefault("table.header_height", 30)
	v.SetDefault("table.min_row_height", 25)
	v.SetDefault("table.max_row_height", 40)

	v.SetDefault("additional_info.x", 50)
	v.SetDefault("additional_info.y_offset", 10)
	v.SetDefault("additional_info.width_margin", 100)
	v.SetDefault("additional_info.height_percent", 0.20)
	v.SetDefault("additional_info.header_height", 30)
	v.SetDefault("additional_info.row_height", 20)
	v.SetDefault("additional_info.date_band_width", 140)
	v.SetDefault("additional_info.pota_width", 105)
	v.SetDefault("additional_info.comment_margin", 20)
	v.SetDefault("additional_info.show_grid", false)
	v.SetDefault("additional_info.default_messages", []string{
		"Thanks for the contact! 73",
		"Great to work you, hope to catch you again soon. 73",
		"QSL and best 73, see you down the log!",
	})
	v.SetDefault("additional_info.fixed_default_message", false)

	v.SetDefault("confirmation_text.show_border", false)
	v.SetDefault("confirmation_text.text_color", "#000000")
	v.SetDefault("confirmation_text.x_offset", 10)
	v.SetDefault("confirmation_text.y_offset", 35)

	v.SetDefault("fonts.primary", "/usr/share/fonts/truetype/ubuntu/Ubuntu-R.ttf")
	v.SetDefault("fonts.bold", "/usr/share/fonts/truetype/ubuntu/Ubuntu-B.ttf")
	v.SetDefault("fonts.sizes", map[string]int{
		"xlarge": 32,
		"large":  24,
		"medium": 18,
		"small":  14,
		"tiny":   12,
		"bold":   20,
	})

	v.SetDefault("colors.header_bg", "#4a4a4a")
	v.SetDefault("colors.header_text", "#ffffff")
	v.SetDefault("colors.row_bg", "#ffffff")
	v.SetDefault("colors.row_bg_alt", "#f0f0f0")
	v.SetDefault("colors.text", "#000000")
	v.SetDefault("colors.digital_mode", "#cc6600")
	v.SetDefault("colors.voice_mode", "#004488")
	v.SetDefault("colors.pota_ref", "#0066cc")
	v.SetDefault("colors.comment", "#006600")
	v.SetDefault("colors.section_bg", "#f8f8f8")
	v.SetDefault("colors.default_message", "#999999")
	v.SetDefault("colors.grid_lines", "#808080")

	v.SetDefault("modes.digital", []string{
		"FT8", "FT4", "PSK31", "PSK63", "RTTY", "JT4", "JT9", "JT65",
		"MSK144", "Q65", "FSK441", "WSPR", "JS8", "VARA",
	})
	v.SetDefault("modes.digital_main", []string{"MFSK", "PSK", "RTTY", "DATA", "DIGITAL"})
	v.SetDefault("modes.voice", []string{"SSB", "USB", "LSB", "AM", "FM", "PHONE"})
	v.SetDefault("modes.special_handling", map[string]string{
		"FT8":      "FT8",
		"MFSK/FT4": "FT4",
	})

	v.SetDefault("columns.widths_percent", []float64{0.14, 0.09, 0.11, 0.12, 0.07, 0.07, 0.09, 0.31})
	v.SetDefault("columns.headers", []string{
		"Date", "Time UTC", "Freq(MHz)", "Mode/Sub", "RST S", "RST R", "Band", "Notes",
	})

	v.SetDefault("bands", []map[string]any{
		{"low": 1.8, "high": 2.0, "label": "160m"},
		{"low": 3.5, "high": 4.0, "label": "80m"},
		{"low": 7.0, "high": 7.3, "label": "40m"},
		{"low": 14.0, "high": 14.35, "label": "20m"},
		{"low": 21.0, "high": 21.45, "label": "15m"},
		{"low": 28.0, "high": 29.7, "label": "10m"},
		{"low": 50.0, "high": 54.0, "label": "6m"},
		{"low": 144.0, "high": 148.0, "label": "2m"},
		{"low": 420.0, "high": 450.0, "label": "70cm"},
	})
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate enforces the configuration invariants. Any failure here is
// fatal before rendering starts; the layout engine assumes they hold.
func (c *Config) Validate() error {
	if c.Card.Width <= 0 || c.Card.Height <= 0 {
		return fmt.Errorf("card dimensions must be positive, got %dx%d", c.Card.Width, c.Card.Height)
	}
	if c.Table.MaxContacts < 1 {
		return fmt.Errorf("table.max_contacts must be >= 1, got %d", c.Table.MaxContacts)
	}
	if c.Table.MinRowHeight <= 0 || c.Table.MaxRowHeight < c.Table.MinRowHeight {
		return fmt.Errorf("invalid table row height bounds [%d, %d]", c.Table.MinRowHeight, c.Table.MaxRowHeight)
	}
	if c.Table.YPercent <= 0 || c.Table.YPercent >= 1 || c.Table.HeightPercent <= 0 || c.Table.HeightPercent >= 1 {
		return fmt.Errorf("table percentages must be in (0, 1)")
	}
	if c.Generation.HzThreshold <= 0 {
		return fmt.Errorf("generation.hz_threshold must be positive, got %g", c.Generation.HzThreshold)
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be 1-100, got %d", c.Output.Quality)
	}

	if len(c.Columns.WidthsPercent) == 0 {
		return fmt.Errorf("columns.widths_percent is empty")
	}
	if len(c.Columns.WidthsPercent) != len(c.Columns.Headers) {
		return fmt.Errorf("columns: %d widths but %d headers",
			len(c.Columns.WidthsPercent), len(c.Columns.Headers))
	}
	var sum float64
	for i, w := range c.Columns.WidthsPercent {
		if w <= 0 {
			return fmt.Errorf("columns.widths_percent[%d] must be positive, got %g", i, w)
		}
		sum += w
	}
	if sum > 1.0+1e-9 {
		return fmt.Errorf("columns.widths_percent sums to %g, must be <= 1.0", sum)
	}

	if len(c.Info.DefaultMessages) == 0 {
		return fmt.Errorf("additional_info.default_messages is empty")
	}

	for _, tier := range []string{"xlarge", "large", "medium", "small", "tiny", "bold"} {
		if c.Fonts.Sizes[tier] <= 0 {
			return fmt.Errorf("fonts.sizes.%s missing or non-positive", tier)
		}
	}

	for role, col := range map[string]string{
		"header_bg":       c.Colors.HeaderBg,
		"header_text":     c.Colors.HeaderText,
		"row_bg":          c.Colors.RowBg,
		"row_bg_alt":      c.Colors.RowBgAlt,
		"text":            c.Colors.Text,
		"digital_mode":    c.Colors.DigitalMode,
		"voice_mode":      c.Colors.VoiceMode,
		"pota_ref":        c.Colors.PotaRef,
		"comment":         c.Colors.Comment,
		"section_bg":      c.Colors.SectionBg,
		"default_message": c.Colors.DefaultMessage,
		"grid_lines":      c.Colors.GridLines,
	} {
		if !hexColor.MatchString(col) {
			return fmt.Errorf("colors.%s: %q is not a hex color", role, col)
		}
	}
	if !hexColor.MatchString(c.Confirmation.TextColor) {
		return fmt.Errorf("confirmation_text.text_color: %q is not a hex color", c.Confirmation.TextColor)
	}

	if err := c.Bands.Validate(); err != nil {
		return fmt.Errorf("bands: %w", err)
	}
	return nil
}
