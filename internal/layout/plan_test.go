package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanIdempotent(t *testing.T) {
	cfg := testConfig()
	contacts := makeContacts("W1AW", "W1AW", "K2B")
	contacts[0].Comment = "great signal"
	contacts[2].POTARef = "US-0001"

	batches, err := Plan(contacts, true, cfg.Table.MaxContacts)
	require.NoError(t, err)

	for _, b := range batches {
		first, err := BuildPlan(b, cfg, cfg.ModeTables(), cfg.Bands, fakeMeasurer{7, 14}, fixedRand{0})
		require.NoError(t, err)
		second, err := BuildPlan(b, cfg, cfg.ModeTables(), cfg.Bands, fakeMeasurer{7, 14}, fixedRand{0})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestConfirmationText(t *testing.T) {
	cases := []struct {
		name  string
		batch Batch
		want  string
	}{
		{
			"single contact",
			Batch{Contacts: makeContacts("W1AW"), Callsign: "W1AW", Index: 1, Total: 1, GroupTotal: 1},
			"QSL - Confirming 1 QSO with W1AW",
		},
		{
			"plural across cards",
			Batch{Contacts: makeContacts("W1AW", "W1AW"), Callsign: "W1AW", Index: 2, Total: 3, GroupTotal: 7},
			"QSL - Confirming 7 QSOs with W1AW (Card 2 of 3)",
		},
		{
			"ungrouped mixed calls",
			Batch{Contacts: makeContacts("A", "B"), Index: 1, Total: 1, GroupTotal: 2},
			"QSL - Confirming 2 QSOs",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, confirmationText(tc.batch))
		})
	}
}

func TestConfirmationPlacement(t *testing.T) {
	cfg := testConfig()
	b := Batch{Contacts: makeContacts("W1AW"), Callsign: "W1AW", Index: 1, Total: 1, GroupTotal: 1}

	conf := resolveConfirmation(b, cfg)
	require.NotNil(t, conf)
	tableY := int(float64(cfg.Card.Height) * cfg.Table.YPercent)
	assert.Equal(t, cfg.Table.X+cfg.Confirmation.XOffset, conf.X)
	assert.Equal(t, tableY-cfg.Confirmation.YOffset, conf.Y)
	assert.Equal(t, "bold", conf.Font)

	// A table near the top of the card leaves no room.
	cfg.Table.YPercent = 0.05
	assert.Nil(t, resolveConfirmation(b, cfg))
}

func TestBuildPlanDimensions(t *testing.T) {
	cfg := testConfig()
	b := Batch{Contacts: makeContacts("W1AW"), Callsign: "W1AW", Index: 1, Total: 1, GroupTotal: 1}

	plan, err := BuildPlan(b, cfg, cfg.ModeTables(), cfg.Bands, fakeMeasurer{7, 14}, fixedRand{0})
	require.NoError(t, err)

	assert.Equal(t, cfg.Card.Width, plan.CardWidth)
	assert.Equal(t, cfg.Card.Height, plan.CardHeight)
	assert.Len(t, plan.Table.Rows, 1)
	assert.NotNil(t, plan.Annotation.DefaultLine)
	assert.NotNil(t, plan.Confirmation)
}
