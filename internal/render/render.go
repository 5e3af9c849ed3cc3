// Package render draws render plans onto card images. It owns all the
// pixel work the layout engine stays away from: font loading, text
// measurement, template compositing and PNG output.
package render

import (
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"qslgen/internal/config"
	"qslgen/internal/layout"
)

var fontTiers = []string{"xlarge", "large", "medium", "small", "tiny", "bold"}

// Renderer draws RenderPlans using the configured fonts and palette.
type Renderer struct {
	cfg   *config.Config
	faces map[string]font.Face
	log   *zap.Logger
}

// New loads the configured font files at their named size tiers. A tier
// whose font file cannot be loaded falls back to the built-in bitmap
// face, matching what users expect when a TTF path is wrong.
func New(cfg *config.Config, log *zap.Logger) (*Renderer, error) {
	faces := make(map[string]font.Face, len(fontTiers))
	fellBack := false

	for _, tier := range fontTiers {
		path := cfg.Fonts.Primary
		if tier == "bold" {
			path = cfg.Fonts.Bold
		}
		face, err := gg.LoadFontFace(path, float64(cfg.Fonts.Sizes[tier]))
		if err != nil {
			faces[tier] = basicfont.Face7x13
			fellBack = true
			continue
		}
		faces[tier] = face
	}

	if fellBack {
		log.Warn("some font files could not be loaded, using default face",
			zap.String("primary", cfg.Fonts.Primary),
			zap.String("bold", cfg.Fonts.Bold))
	}

	return &Renderer{cfg: cfg, faces: faces, log: log}, nil
}

// Measurer returns the text measurer backed by the loaded faces.
func (r *Renderer) Measurer() layout.Measurer {
	return faceMeasurer{faces: r.faces}
}

type faceMeasurer struct {
	faces map[string]font.Face
}

func (m faceMeasurer) MeasureString(tier, s string) (float64, float64) {
	face, ok := m.faces[tier]
	if !ok {
		face = m.faces["small"]
	}
	adv := font.MeasureString(face, s)
	return float64(adv) / 64, float64(face.Metrics().Height) / 64
}

// Render draws one plan onto the template (scaled to card size) or a
// blank white card when no template is available.
func (r *Renderer) Render(plan layout.RenderPlan, templatePath string) (image.Image, error) {
	dc := gg.NewContext(plan.CardWidth, plan.CardHeight)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	if templatePath != "" {
		if err := r.drawTemplate(dc, templatePath, plan.CardWidth, plan.CardHeight); err != nil {
			r.log.Warn("template unusable, rendering blank card",
				zap.String("template", templatePath), zap.Error(err))
		}
	}

	r.drawTable(dc, plan.Table)
	r.drawAnnotation(dc, plan.Annotation)
	if plan.Confirmation != nil {
		r.drawConfirmation(dc, *plan.Confirmation)
	}

	return dc.Image(), nil
}

// Save writes the finished card as PNG.
func (r *Renderer) Save(img image.Image, path string) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) drawTemplate(dc *gg.Context, path string, w, h int) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	img, err := gg.LoadImage(path)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return fmt.Errorf("template has zero size")
	}

	dc.Push()
	dc.Scale(float64(w)/float64(bounds.Dx()), float64(h)/float64(bounds.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
	return nil
}

func (r *Renderer) drawTable(dc *gg.Context, t layout.TableGeometry) {
	// Header bar.
	fillRect(dc, t.HeaderRect, t.HeaderBg)
	strokeRect(dc, t.HeaderRect, "#000000")
	for i, cell := range t.Header {
		r.drawCell(dc, cell)
		if i < len(t.Header)-1 {
			vline(dc, cell.Rect.Right(), t.HeaderRect.Y, t.HeaderRect.Bottom(), "#ffffff")
		}
	}

	for _, row := range t.Rows {
		bg := t.RowBg
		if row.Zebra {
			bg = t.RowBgAlt
		}
		fillRect(dc, row.Rect, bg)
		strokeRect(dc, row.Rect, "#000000")

		for i, cell := range row.Cells {
			r.drawCell(dc, cell)
			if i < len(row.Cells)-1 {
				vline(dc, cell.Rect.Right(), row.Rect.Y, row.Rect.Bottom(), t.GridColor)
			}
		}
	}
}

func (r *Renderer) drawAnnotation(dc *gg.Context, a layout.AnnotationGeometry) {
	fillRect(dc, a.Rect, a.Background)
	strokeRect(dc, a.Rect, "#000000")

	fillRect(dc, a.HeaderRect, a.HeaderBg)
	strokeRect(dc, a.HeaderRect, "#000000")
	r.drawCell(dc, a.Header)

	if a.DefaultLine != nil {
		r.drawCell(dc, *a.DefaultLine)
		return
	}

	for _, line := range a.Lines {
		for i, zone := range line.Zones {
			if zone.Text != "" {
				r.drawCell(dc, zone)
			}
			if a.ShowGrid && i > 0 {
				vline(dc, zone.Rect.X-5, line.Rect.Y, line.Rect.Bottom(), a.GridColor)
			}
		}
		if a.ShowGrid {
			hline(dc, line.Rect.X, line.Rect.Right(), line.Rect.Bottom(), a.GridColor)
		}
	}
}

func (r *Renderer) drawConfirmation(dc *gg.Context, c layout.Confirmation) {
	face := r.face(c.Font)
	dc.SetFontFace(face)

	if c.ShowBorder {
		w, h := dc.MeasureString(c.Text)
		dc.SetHexColor("#ffffff")
		dc.DrawRectangle(float64(c.X)-10, float64(c.Y)-5, w+20, h+10)
		dc.Fill()
		dc.SetHexColor("#000000")
		dc.SetLineWidth(1)
		dc.DrawRectangle(float64(c.X)-10, float64(c.Y)-5, w+20, h+10)
		dc.Stroke()
	}

	dc.SetHexColor(c.Color)
	dc.DrawStringAnchored(c.Text, float64(c.X), float64(c.Y), 0, 1)
}

func (r *Renderer) drawCell(dc *gg.Context, cell layout.Cell) {
	if cell.Text == "" {
		return
	}
	dc.SetFontFace(r.face(cell.Font))
	dc.SetHexColor(cell.Color)
	dc.DrawStringAnchored(cell.Text,
		float64(cell.Rect.X+5),
		float64(cell.Rect.Y)+float64(cell.Rect.H)/2,
		0, 0.35)
}

func (r *Renderer) face(tier string) font.Face {
	if f, ok := r.faces[tier]; ok {
		return f
	}
	return r.faces["small"]
}

func fillRect(dc *gg.Context, rect layout.Rect, color string) {
	dc.SetHexColor(color)
	dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
	dc.Fill()
}

func strokeRect(dc *gg.Context, rect layout.Rect, color string) {
	dc.SetHexColor(color)
	dc.SetLineWidth(1)
	dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
	dc.Stroke()
}

func vline(dc *gg.Context, x, y1, y2 int, color string) {
	dc.SetHexColor(color)
	dc.SetLineWidth(1)
	dc.DrawLine(float64(x), float64(y1), float64(x), float64(y2))
	dc.Stroke()
}

func hline(dc *gg.Context, x1, x2, y int, color string) {
	dc.SetHexColor(color)
	dc.SetLineWidth(1)
	dc.DrawLine(float64(x1), float64(y), float64(x2), float64(y))
	dc.Stroke()
}
