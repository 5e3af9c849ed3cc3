package layout

import (
	"qslgen/internal/classify"
	"qslgen/internal/config"
	"qslgen/internal/contact"
)

// ResolveTable computes the contact table geometry for one batch. Row
// height is the available body height split evenly across the batch's
// rows, clamped to the configured bounds so short batches never balloon
// and full cards never become illegible.
func ResolveTable(b Batch, cfg *config.Config, tables classify.Tables, bands classify.BandPlan) (TableGeometry, error) {
	if len(b.Contacts) == 0 {
		return TableGeometry{}, layoutErrorf("empty batch")
	}
	if len(b.Contacts) > cfg.Table.MaxContacts {
		return TableGeometry{}, layoutErrorf("batch of %d exceeds max contacts %d", len(b.Contacts), cfg.Table.MaxContacts)
	}

	tableRect := Rect{
		X: cfg.Table.X,
		Y: int(float64(cfg.Card.Height) * cfg.Table.YPercent),
		W: cfg.Card.Width - cfg.Table.WidthMargin,
		H: int(float64(cfg.Card.Height) * cfg.Table.HeightPercent),
	}
	if tableRect.W <= 0 {
		return TableGeometry{}, layoutErrorf("table width %d not positive", tableRect.W)
	}

	headerRect := Rect{X: tableRect.X, Y: tableRect.Y, W: tableRect.W, H: cfg.Table.HeaderHeight}

	available := tableRect.H - cfg.Table.HeaderHeight
	rowHeight := clamp(available/len(b.Contacts), cfg.Table.MinRowHeight, cfg.Table.MaxRowHeight)
	if rowHeight <= 0 {
		return TableGeometry{}, layoutErrorf("computed row height %d", rowHeight)
	}

	colWidths := make([]int, len(cfg.Columns.WidthsPercent))
	for i, pct := range cfg.Columns.WidthsPercent {
		colWidths[i] = int(float64(tableRect.W) * pct)
	}

	header := make([]Cell, len(cfg.Columns.Headers))
	x := tableRect.X
	for i, title := range cfg.Columns.Headers {
		header[i] = Cell{
			Rect:  Rect{X: x, Y: headerRect.Y, W: colWidths[i], H: headerRect.H},
			Text:  title,
			Color: cfg.Colors.HeaderText,
			Font:  "small",
		}
		x += colWidths[i]
	}

	rows := make([]TableRow, len(b.Contacts))
	for i, c := range b.Contacts {
		rowRect := Rect{
			X: tableRect.X,
			Y: headerRect.Bottom() + i*rowHeight,
			W: tableRect.W,
			H: rowHeight,
		}
		rows[i] = TableRow{
			Rect:  rowRect,
			Zebra: i%2 == 1,
			Cells: rowCells(c, rowRect, colWidths, cfg, tables, bands),
		}
	}

	return TableGeometry{
		Rect:       tableRect,
		HeaderRect: headerRect,
		HeaderBg:   cfg.Colors.HeaderBg,
		Header:     header,
		Rows:       rows,
		RowHeight:  rowHeight,
		RowBg:      cfg.Colors.RowBg,
		RowBgAlt:   cfg.Colors.RowBgAlt,
		GridColor:  cfg.Colors.GridLines,
	}, nil
}

func rowCells(c contact.Contact, row Rect, colWidths []int, cfg *config.Config, tables classify.Tables, bands classify.BandPlan) []Cell {
	texts := []string{
		c.DateDisplay(),
		c.TimeDisplay(),
		c.FreqDisplay(),
		tables.Label(c.Mode, c.Submode),
		truncateChars(c.RSTSent, 4),
		truncateChars(c.RSTRcvd, 4),
		bandLabel(c, bands),
		truncateChars(c.Comment, 26),
	}

	modeColor := cfg.Colors.Text
	switch tables.Classify(c.Mode, c.Submode) {
	case classify.ModeDigital:
		modeColor = cfg.Colors.DigitalMode
	case classify.ModeVoice:
		modeColor = cfg.Colors.VoiceMode
	}

	cells := make([]Cell, 0, len(colWidths))
	x := row.X
	for i, w := range colWidths {
		text := ""
		if i < len(texts) {
			// Budget of one character per 8px of column width.
			budget := w / 8
			if budget < 1 {
				budget = 1
			}
			text = truncateChars(texts[i], budget)
		}
		color := cfg.Colors.Text
		if i == 3 {
			color = modeColor
		}
		cells = append(cells, Cell{
			Rect:  Rect{X: x, Y: row.Y, W: w, H: row.H},
			Text:  text,
			Color: color,
			Font:  "small",
		})
		x += w
	}
	return cells
}

// bandLabel prefers the band recorded on the contact, deriving it from
// the frequency otherwise.
func bandLabel(c contact.Contact, bands classify.BandPlan) string {
	if c.Band != "" {
		return c.Band
	}
	return bands.BandFor(c.FreqMHz)
}

func truncateChars(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
