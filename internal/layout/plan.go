package layout

import (
	"fmt"

	"qslgen/internal/classify"
	"qslgen/internal/config"
)

// BuildPlan assembles the complete render plan for one batch. Given the
// same batch, configuration, measurer and random source, the result is
// identical on every invocation.
func BuildPlan(b Batch, cfg *config.Config, tables classify.Tables, bands classify.BandPlan, m Measurer, rng Rand) (RenderPlan, error) {
	table, err := ResolveTable(b, cfg, tables, bands)
	if err != nil {
		return RenderPlan{}, err
	}

	annotation, err := ResolveAnnotation(b, cfg, tables, bands, m, rng)
	if err != nil {
		return RenderPlan{}, err
	}

	return RenderPlan{
		CardWidth:    cfg.Card.Width,
		CardHeight:   cfg.Card.Height,
		Table:        table,
		Annotation:   annotation,
		Confirmation: resolveConfirmation(b, cfg),
	}, nil
}

// resolveConfirmation anchors the confirmation text above the table.
// Cards whose table starts too high have no room for it.
func resolveConfirmation(b Batch, cfg *config.Config) *Confirmation {
	tableY := int(float64(cfg.Card.Height) * cfg.Table.YPercent)
	if tableY <= 100 {
		return nil
	}

	y := tableY - cfg.Confirmation.YOffset
	if y < 50 {
		y = 50
	}

	return &Confirmation{
		X:          cfg.Table.X + cfg.Confirmation.XOffset,
		Y:          y,
		Text:       confirmationText(b),
		Color:      cfg.Confirmation.TextColor,
		Font:       "bold",
		ShowBorder: cfg.Confirmation.ShowBorder,
	}
}

func confirmationText(b Batch) string {
	n := b.GroupTotal
	if n == 0 {
		n = len(b.Contacts)
	}

	text := fmt.Sprintf("QSL - Confirming %d QSO", n)
	if n > 1 {
		text += "s"
	}
	if b.Callsign != "" {
		text += " with " + b.Callsign
	}
	if b.Total > 1 {
		text += fmt.Sprintf(" (Card %d of %d)", b.Index, b.Total)
	}
	return text
}
