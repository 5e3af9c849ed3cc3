package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTables() Tables {
	return Tables{
		Digital: []string{"FT8", "FT4", "PSK31", "PSK63", "RTTY", "JT4", "JT9", "JT65",
			"MSK144", "Q65", "FSK441", "WSPR", "JS8", "VARA"},
		DigitalMain: []string{"MFSK", "PSK", "RTTY", "DATA", "DIGITAL"},
		Voice:       []string{"SSB", "USB", "LSB", "AM", "FM", "PHONE"},
		Special: map[string]string{
			"FT8":      "FT8",
			"MFSK/FT4": "FT4",
		},
	}
}

func TestClassify(t *testing.T) {
	tables := testTables()

	cases := []struct {
		mode, submode string
		want          ModeClass
	}{
		{"MFSK", "FT4", ModeDigital},
		{"FT8", "", ModeDigital},
		{"DATA", "", ModeDigital},
		{"SSB", "USB", ModeVoice},
		{"SSB", "", ModeVoice},
		{"FM", "", ModeVoice},
		{"CW", "", ModeOther},
		{"", "", ModeOther},
	}

	for _, tc := range cases {
		got := tables.Classify(tc.mode, tc.submode)
		assert.Equal(t, tc.want, got, "%s/%s", tc.mode, tc.submode)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	tables := testTables()
	assert.Equal(t, ModeDigital, tables.Classify("mfsk", "ft4"))
	assert.Equal(t, ModeVoice, tables.Classify("ssb", "usb"))
}

func TestLabel(t *testing.T) {
	tables := testTables()

	cases := []struct {
		mode, submode string
		want          string
	}{
		{"MFSK", "FT4", "FT4"}, // special-handling table wins
		{"FT8", "", "FT8"},
		{"SSB", "USB", "USB"},
		{"PSK", "PSK31", "PSK31"}, // umbrella mode collapses to submode
		{"CW", "", "CW"},
		{"SSB", "", "SSB"},
		{"SOMETHING", "WEIRDSUB", "SOMETHING/"}, // combined form capped at 10 chars
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tables.Label(tc.mode, tc.submode), "%s/%s", tc.mode, tc.submode)
	}
}

func testBandPlan() BandPlan {
	return BandPlan{
		{1.8, 2.0, "160m"}, {3.5, 4.0, "80m"}, {7.0, 7.3, "40m"},
		{14.0, 14.35, "20m"}, {21.0, 21.45, "15m"}, {28.0, 29.7, "10m"},
		{50.0, 54.0, "6m"}, {144.0, 148.0, "2m"}, {420.0, 450.0, "70cm"},
	}
}

func TestBandFor(t *testing.T) {
	plan := testBandPlan()

	cases := []struct {
		freq float64
		want string
	}{
		{14.074, "20m"},
		{7.15, "40m"},
		{29.8, ""},    // outside every configured range
		{29.7, "10m"}, // upper bound inclusive
		{28.0, "10m"},
		{146.52, "2m"},
		{0.475, ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, plan.BandFor(tc.freq), "%.3f MHz", tc.freq)
	}
}

func TestBandPlanValidate(t *testing.T) {
	assert.NoError(t, testBandPlan().Validate())

	overlapping := BandPlan{{1.8, 2.0, "160m"}, {1.9, 4.0, "80m"}}
	assert.Error(t, overlapping.Validate())

	inverted := BandPlan{{2.0, 1.8, "160m"}}
	assert.Error(t, inverted.Validate())

	unlabeled := BandPlan{{1.8, 2.0, ""}}
	assert.Error(t, unlabeled.Validate())
}
