// Package chart draws the year progress image attached to each post.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/types"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	Background = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	Fill       = color.RGBA{0x1D, 0xA1, 0xF2, 0xFF}
	Track      = color.RGBA{0xE8, 0xF4, 0xFD, 0xFF}
	Border     = color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}
	Ink        = color.RGBA{0x33, 0x33, 0x33, 0xFF}
	Faint      = color.RGBA{0x99, 0x99, 0x99, 0xFF}
)

type Config struct {
	Width     int
	Height    int
	Watermark string
}

func DefaultConfig() Config {
	return Config{Width: 1200, Height: 675, Watermark: "ProgressPulse"}
}

type Renderer struct {
	cfg Config
}

var _ interfaces.ChartRenderer = (*Renderer)(nil)

func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Width < 400 {
		cfg.Width = def.Width
	}
	if cfg.Height < 300 {
		cfg.Height = def.Height
	}
	return &Renderer{cfg: cfg}
}

// BarRect is the outer rectangle of the progress bar for this renderer's canvas.
func (r *Renderer) BarRect() image.Rectangle {
	marginX := r.cfg.Width / 15
	top := r.cfg.Height * 45 / 100
	return image.Rect(marginX, top, r.cfg.Width-marginX, top+r.cfg.Height/8)
}

// FillWidth is the filled share of width pixels for rec, proportional to days passed.
func FillWidth(rec types.ProgressRecord, width int) int {
	if rec.TotalDays <= 0 || width <= 0 {
		return 0
	}
	w := int(math.Round(float64(width) * float64(rec.DaysPassed) / float64(rec.TotalDays)))
	return min(max(w, 0), width)
}

// Render draws rec as a PNG.
func (r *Renderer) Render(rec types.ProgressRecord) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	unit := max(1, r.cfg.Height/135)

	title := fmt.Sprintf("%d Year Progress", rec.Year)
	r.centerText(img, title, r.cfg.Height/12, unit+3, Fill)
	percent := fmt.Sprintf("%.1f%% Complete", rec.PercentComplete)
	r.centerText(img, percent, r.cfg.Height/4, unit+2, Ink)

	bar := r.BarRect()
	draw.Draw(img, bar, image.NewUniform(Border), image.Point{}, draw.Src)
	inner := bar.Inset(2)
	draw.Draw(img, inner, image.NewUniform(Track), image.Point{}, draw.Src)
	if w := FillWidth(rec, inner.Dx()); w > 0 {
		filled := image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+w, inner.Max.Y)
		draw.Draw(img, filled, image.NewUniform(Fill), image.Point{}, draw.Src)
	}

	axisY := bar.Max.Y + unit*4
	drawText(img, "0", bar.Min.X, axisY, unit, Faint)
	end := fmt.Sprintf("%d", rec.TotalDays)
	drawText(img, end, bar.Max.X-textWidth(end)*unit, axisY, unit, Faint)

	days := fmt.Sprintf("%d days done / %d days left", rec.DaysPassed, rec.DaysRemaining)
	r.centerText(img, days, bar.Max.Y+r.cfg.Height/7, unit, Ink)
	weeks := fmt.Sprintf("%d weeks left", rec.WeeksRemaining)
	r.centerText(img, weeks, bar.Max.Y+r.cfg.Height/7+lineHeight()*(unit+1), unit, Ink)

	if r.cfg.Watermark != "" {
		small := max(1, unit-2)
		x := r.cfg.Width - textWidth(r.cfg.Watermark)*small - unit*6
		y := r.cfg.Height - lineHeight()*small - unit*4
		drawText(img, r.cfg.Watermark, x, y, small, Faint)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) centerText(img draw.Image, s string, y, scale int, c color.Color) {
	x := (r.cfg.Width - textWidth(s)*scale) / 2
	drawText(img, s, x, y, scale, c)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func lineHeight() int {
	return basicfont.Face7x13.Metrics().Height.Ceil()
}

// drawText renders s with the bitmap face at 1x and scales it up onto dst.
func drawText(dst draw.Image, s string, x, y, scale int, c color.Color) {
	face := basicfont.Face7x13
	w, h := textWidth(s), lineHeight()
	if w == 0 {
		return
	}
	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	target := image.Rect(x, y, x+w*scale, y+h*scale)
	xdraw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}
