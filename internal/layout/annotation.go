package layout

import (
	"fmt"

	"qslgen/internal/classify"
	"qslgen/internal/config"
)

// Measurer reports rendered text dimensions for a font size tier. The
// render package provides the real implementation; tests inject fakes.
type Measurer interface {
	MeasureString(font, s string) (w, h float64)
}

// Rand supplies the default-message choice. A *math/rand.Rand satisfies
// it; tests pin a deterministic picker.
type Rand interface {
	Intn(n int) int
}

// ResolveAnnotation computes the additional-info block for one batch:
// one line per contact, matching the table rows 1:1. When no contact in
// the batch carries a comment or park reference, the block collapses to
// a single default message instead.
func ResolveAnnotation(b Batch, cfg *config.Config, tables classify.Tables, bands classify.BandPlan, m Measurer, rng Rand) (AnnotationGeometry, error) {
	if len(b.Contacts) == 0 {
		return AnnotationGeometry{}, layoutErrorf("empty batch")
	}

	tableY := int(float64(cfg.Card.Height) * cfg.Table.YPercent)
	tableH := int(float64(cfg.Card.Height) * cfg.Table.HeightPercent)

	section := Rect{
		X: cfg.Info.X,
		Y: tableY + tableH + cfg.Info.YOffset - 25,
		W: cfg.Card.Width - cfg.Info.WidthMargin,
		H: int(float64(cfg.Card.Height) * cfg.Info.HeightPercent),
	}
	if section.W <= 0 {
		return AnnotationGeometry{}, layoutErrorf("annotation width %d not positive", section.W)
	}

	headerRect := Rect{X: section.X, Y: section.Y, W: section.W, H: cfg.Info.HeaderHeight}

	geo := AnnotationGeometry{
		Rect:       section,
		HeaderRect: headerRect,
		HeaderBg:   cfg.Colors.HeaderBg,
		Header: Cell{
			Rect:  Rect{X: section.X + 10, Y: section.Y, W: section.W - 20, H: headerRect.H},
			Text:  "Additional Information",
			Color: cfg.Colors.HeaderText,
			Font:  "bold",
		},
		Background: cfg.Colors.SectionBg,
		ShowGrid:   cfg.Info.ShowGrid,
		GridColor:  cfg.Colors.GridLines,
	}

	if batchIsBare(b) {
		msg := pickDefaultMessage(cfg, rng)
		geo.DefaultLine = &Cell{
			Rect: Rect{
				X: section.X + 10,
				Y: headerRect.Bottom() + 10,
				W: section.W - 20,
				H: cfg.Info.RowHeight,
			},
			Text:  msg,
			Color: cfg.Colors.DefaultMessage,
			Font:  "small",
		}
		return geo, nil
	}

	y := headerRect.Bottom() + 10
	for _, c := range b.Contacts {
		dateBandX := section.X + 10
		potaX := dateBandX + cfg.Info.DateBandWidth
		commentX := potaX + cfg.Info.PotaWidth

		maxCommentW := float64(section.Right() - commentX - cfg.Info.CommentMargin)
		if maxCommentW < 0 {
			maxCommentW = 0
		}

		dateBand := fmt.Sprintf("%s on %s:", c.DateDisplay(), bandLabel(c, bands))
		pota := ""
		if c.POTARef != "" {
			pota = "POTA: " + c.POTARef
		}
		comment := truncateToWidth(m, "tiny", c.Comment, maxCommentW)

		commentColor := cfg.Colors.Comment
		if tables.Classify(c.Mode, c.Submode) == classify.ModeDigital {
			commentColor = cfg.Colors.DigitalMode
		}

		lineH := float64(cfg.Info.RowHeight)
		for _, z := range []struct {
			font, text string
		}{{"small", dateBand}, {"small", pota}, {"tiny", comment}} {
			if z.text == "" {
				continue
			}
			if _, h := m.MeasureString(z.font, z.text); h > lineH {
				lineH = h
			}
		}
		h := int(lineH)

		line := AnnotationLine{
			Rect: Rect{X: section.X, Y: y, W: section.W, H: h},
			Zones: []Cell{
				{Rect: Rect{X: dateBandX, Y: y, W: cfg.Info.DateBandWidth, H: h}, Text: dateBand, Color: cfg.Colors.Text, Font: "small"},
				{Rect: Rect{X: potaX, Y: y, W: cfg.Info.PotaWidth, H: h}, Text: pota, Color: cfg.Colors.PotaRef, Font: "small"},
				{Rect: Rect{X: commentX, Y: y, W: int(maxCommentW), H: h}, Text: comment, Color: commentColor, Font: "tiny"},
			},
		}
		geo.Lines = append(geo.Lines, line)
		y += h
	}

	return geo, nil
}

func batchIsBare(b Batch) bool {
	for _, c := range b.Contacts {
		if c.Comment != "" || c.POTARef != "" {
			return false
		}
	}
	return true
}

func pickDefaultMessage(cfg *config.Config, rng Rand) string {
	msgs := cfg.Info.DefaultMessages
	if cfg.Info.FixedDefaultMessage || len(msgs) == 1 {
		return msgs[0]
	}
	return msgs[rng.Intn(len(msgs))]
}

// truncateToWidth shortens s with a trailing ellipsis marker until its
// measured width fits maxW. The returned string never measures wider
// than maxW.
func truncateToWidth(m Measurer, font, s string, maxW float64) string {
	if s == "" {
		return ""
	}
	if w, _ := m.MeasureString(font, s); w <= maxW {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, _ := m.MeasureString(font, candidate); w <= maxW {
			return candidate
		}
	}
	return ""
}
