package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"
	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// MaxPNGSide bounds the pixel size of rendered previews.
const MaxPNGSide = 8192

var (
	pngBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	pngFill       = color.RGBA{0xf4, 0xef, 0xe6, 0xff}
	pngStroke     = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// PNGOption configures PNG rendering via [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	margin float64
	stroke float64
}

// WithScale sets the number of pixels per pattern unit (default 4).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGMargin sets the gap between panels (default [DefaultMargin]).
func WithPNGMargin(m float64) PNGOption { return func(r *pngRenderer) { r.margin = m } }

// WithOutline sets the outline width in pixels. Zero disables the outline.
func WithOutline(px float64) PNGOption { return func(r *pngRenderer) { r.stroke = px } }

// RenderPNG rasterizes the pattern in pure Go. Unlike [ToPDF] it needs no
// external tools. Panels are filled; outlines are drawn by filling the
// difference between the panel and a slightly inset copy of it.
func RenderPNG(s *pattern.Spec, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 4, margin: DefaultMargin, stroke: 1.5}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", r.scale)
	}

	l, err := Arrange(s, r.margin)
	if err != nil {
		return nil, err
	}
	w := int(math.Ceil(l.Width * r.scale))
	h := int(math.Ceil(l.Height * r.scale))
	if w > MaxPNGSide || h > MaxPNGSide {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png would be %dx%d pixels, limit is %d", w, h, MaxPNGSide)
	}
	w, h = max(w, 1), max(h, 1)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(pngBackground), image.Point{}, draw.Src)

	toPixels := curve.Scale(r.scale, r.scale)
	for _, p := range l.Panels {
		outline := p.Outline.Transform(toPixels)
		if r.stroke > 0 {
			fill(img, outline, pngStroke)
			outline = inset(outline, r.stroke)
		}
		fill(img, outline, pngFill)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// fill rasterizes path with the nonzero rule and composites it over dst.
func fill(dst *image.RGBA, path curve.BezPath, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for el := range path.Elements() {
		switch el.Kind {
		case curve.MoveToKind:
			z.MoveTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.LineToKind:
			z.LineTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.QuadToKind:
			z.QuadTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y))
		case curve.ClosePathKind:
			z.ClosePath()
		}
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// inset scales path about the center of its bounding box so that the box
// shrinks by d on each side.
func inset(path curve.BezPath, d float64) curve.BezPath {
	box := path.BoundingBox()
	if box.Width() <= 2*d || box.Height() <= 2*d {
		return path
	}
	c := box.Center()
	aff := curve.Translate(curve.Vec(-c.X, -c.Y)).
		ThenScale((box.Width()-2*d)/box.Width(), (box.Height()-2*d)/box.Height()).
		ThenTranslate(curve.Vec(c.X, c.Y))
	return path.Transform(aff)
}
