package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qslgen/internal/config"
	"qslgen/internal/contact"
)

func testConfig() *config.Config {
	return config.Default()
}

func resolveTestTable(t *testing.T, contacts []contact.Contact, cfg *config.Config) TableGeometry {
	t.Helper()
	b := Batch{Contacts: contacts, Callsign: contacts[0].Call, Index: 1, Total: 1, GroupTotal: len(contacts)}
	geo, err := ResolveTable(b, cfg, cfg.ModeTables(), cfg.Bands)
	require.NoError(t, err)
	return geo
}

func TestResolveTableRowHeightClamp(t *testing.T) {
	cfg := testConfig()
	// Card height and table percentages chosen so the body height is
	// exactly 90px: 3 rows of 30, inside the [25, 40] bounds.
	cfg.Card.Height = 400
	cfg.Table.YPercent = 0.5
	cfg.Table.HeightPercent = 0.3 // 120px table
	cfg.Table.HeaderHeight = 30   // 90px body

	geo := resolveTestTable(t, makeContacts("A", "B", "C"), cfg)
	assert.Equal(t, 30, geo.RowHeight)

	// A single row would get all 90px but is capped at the max.
	geo = resolveTestTable(t, makeContacts("A"), cfg)
	assert.Equal(t, cfg.Table.MaxRowHeight, geo.RowHeight)

	// Many short rows are floored at the min.
	cfg.Table.MaxContacts = 10
	geo = resolveTestTable(t, makeContacts("A", "B", "C", "D", "E", "F", "G", "H"), cfg)
	assert.Equal(t, cfg.Table.MinRowHeight, geo.RowHeight)
}

func TestResolveTableGeometry(t *testing.T) {
	cfg := testConfig()
	geo := resolveTestTable(t, makeContacts("W1AW", "K2B"), cfg)

	wantY := int(float64(cfg.Card.Height) * cfg.Table.YPercent)
	assert.Equal(t, cfg.Table.X, geo.Rect.X)
	assert.Equal(t, wantY, geo.Rect.Y)
	assert.Equal(t, cfg.Card.Width-cfg.Table.WidthMargin, geo.Rect.W)

	require.Len(t, geo.Rows, 2)
	require.Len(t, geo.Header, len(cfg.Columns.Headers))

	// Rows stack directly under the header.
	assert.Equal(t, geo.HeaderRect.Bottom(), geo.Rows[0].Rect.Y)
	assert.Equal(t, geo.Rows[0].Rect.Bottom(), geo.Rows[1].Rect.Y)

	// Columns tile the table left to right.
	x := geo.Rect.X
	for i, cell := range geo.Rows[0].Cells {
		assert.Equal(t, x, cell.Rect.X, "column %d", i)
		x += cell.Rect.W
	}
}

func TestResolveTableZebraRestartsPerCard(t *testing.T) {
	cfg := testConfig()
	geo := resolveTestTable(t, makeContacts("A", "B", "C"), cfg)

	assert.False(t, geo.Rows[0].Zebra)
	assert.True(t, geo.Rows[1].Zebra)
	assert.False(t, geo.Rows[2].Zebra)
}

func TestResolveTableCellContent(t *testing.T) {
	cfg := testConfig()
	c := makeContact("W1AW")
	c.Mode = "MFSK"
	c.Submode = "FT4"
	c.RSTSent = "-10"
	c.RSTRcvd = "+02"
	c.Comment = "Thanks for the contact from the park today"

	geo := resolveTestTable(t, []contact.Contact{c}, cfg)
	cells := geo.Rows[0].Cells

	assert.Equal(t, "01-Jun-2024", cells[0].Text)
	assert.Equal(t, "1845", cells[1].Text)
	assert.Equal(t, "14.074", cells[2].Text)
	assert.Equal(t, "FT4", cells[3].Text)
	assert.Equal(t, cfg.Colors.DigitalMode, cells[3].Color)
	assert.Equal(t, "-10", cells[4].Text)
	assert.Equal(t, "20m", cells[6].Text, "band derived from frequency")
	assert.NotEmpty(t, cells[7].Text)
}

func TestResolveTableVoiceColor(t *testing.T) {
	cfg := testConfig()
	c := makeContact("W1AW")
	c.Mode = "SSB"
	c.Submode = "USB"

	geo := resolveTestTable(t, []contact.Contact{c}, cfg)
	assert.Equal(t, "USB", geo.Rows[0].Cells[3].Text)
	assert.Equal(t, cfg.Colors.VoiceMode, geo.Rows[0].Cells[3].Color)
}

func TestResolveTableExplicitBandWins(t *testing.T) {
	cfg := testConfig()
	c := makeContact("W1AW")
	c.Band = "40m" // contradicts the 14 MHz frequency on purpose

	geo := resolveTestTable(t, []contact.Contact{c}, cfg)
	assert.Equal(t, "40m", geo.Rows[0].Cells[6].Text)
}

func TestResolveTableCommentTruncatesOnRunes(t *testing.T) {
	cfg := testConfig()
	c := makeContact("W1AW")
	c.Comment = strings.Repeat("ü", 40)

	geo := resolveTestTable(t, []contact.Contact{c}, cfg)
	got := geo.Rows[0].Cells[7].Text
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 26)
}

func TestResolveTableRejectsOversizedBatch(t *testing.T) {
	cfg := testConfig()
	cfg.Table.MaxContacts = 2
	b := Batch{Contacts: makeContacts("A", "B", "C")}

	_, err := ResolveTable(b, cfg, cfg.ModeTables(), cfg.Bands)
	var le *LayoutError
	assert.ErrorAs(t, err, &le)
}
