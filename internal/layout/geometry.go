// Package layout computes the render plan for a QSL card: table
// geometry, the additional-info block and the confirmation text. It is
// purely computational; drawing and I/O live in internal/render.
package layout

import "fmt"

// Rect is an absolute pixel rectangle on the card.
type Rect struct {
	X, Y, W, H int
}

// Right returns the x coordinate just past the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y coordinate just past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Cell is one positioned piece of text with its color and font tier.
type Cell struct {
	Rect  Rect
	Text  string
	Color string // hex, from the palette
	Font  string // font size tier name (small, tiny, bold, ...)
}

// TableRow is one contact row of the table.
type TableRow struct {
	Rect  Rect
	Zebra bool // alternating background, parity restarts per card
	Cells []Cell
}

// TableGeometry is the resolved contact table.
type TableGeometry struct {
	Rect       Rect
	HeaderRect Rect
	HeaderBg   string
	Header     []Cell
	Rows       []TableRow
	RowHeight  int
	RowBg      string
	RowBgAlt   string
	GridColor  string
}

// AnnotationLine is one line of the additional-info block: the
// date/band zone, the park-reference zone and the comment zone.
type AnnotationLine struct {
	Rect  Rect
	Zones []Cell
}

// AnnotationGeometry is the resolved additional-info block. When the
// whole batch carries no comments or park references, Lines is empty
// and DefaultLine holds the single fallback message.
type AnnotationGeometry struct {
	Rect        Rect
	HeaderRect  Rect
	HeaderBg    string
	Header      Cell
	Background  string
	Lines       []AnnotationLine
	DefaultLine *Cell
	ShowGrid    bool
	GridColor   string
}

// Confirmation is the confirmation text anchor near the card top.
type Confirmation struct {
	X, Y       int
	Text       string
	Color      string
	Font       string
	ShowBorder bool
}

// RenderPlan is everything the drawing collaborator needs for one card.
type RenderPlan struct {
	CardWidth    int
	CardHeight   int
	Table        TableGeometry
	Annotation   AnnotationGeometry
	Confirmation *Confirmation // nil when the table sits too high on the card
}

// LayoutError flags geometry that violates the engine's invariants.
// It should not occur for a validated configuration.
type LayoutError struct {
	Msg string
}

func (e *LayoutError) Error() string { return "layout: " + e.Msg }

func layoutErrorf(format string, args ...any) error {
	return &LayoutError{Msg: fmt.Sprintf(format, args...)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
