package validate

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zuclubit/momoto-sub008/material"
)

// HeatmapOptions sizes the rendered image. The grid itself follows the
// validator's incidence angles (x) and wavelengths (y).
type HeatmapOptions struct {
	Width  int
	Height int
	// Label is drawn in the top-left corner when non-empty.
	Label string
	// Component selects "R", "T" or "A"; empty means R.
	Component string
}

func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{Width: 460, Height: 410, Component: "R"}
}

// RenderHeatmap draws one response component over incidence angle and
// wavelength at azimuth 0.
func (v *Validator) RenderHeatmap(b material.BSDF, opts HeatmapOptions) (*image.RGBA, error) {
	if b == nil {
		return nil, fmt.Errorf("render heatmap: nil material")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render heatmap: invalid size %dx%d", opts.Width, opts.Height)
	}
	pick, err := componentPicker(opts.Component)
	if err != nil {
		return nil, err
	}

	wavelengths := v.cfg.wavelengths()
	n := v.cfg.IncidenceAngles
	ctxs := make([]material.Context, 0, n*len(wavelengths))
	for y := range wavelengths {
		for x := 0; x < n; x++ {
			theta := float64(x) * (math.Pi / 2) / float64(n-1)
			ctxs = append(ctxs, material.NewContextAngles(theta, 0, theta, math.Pi, wavelengths[y]))
		}
	}
	responses := material.EvaluateMany(b, ctxs)

	cells := image.NewRGBA(image.Rect(0, 0, n, len(wavelengths)))
	for i, r := range responses {
		cells.Set(i%n, i/n, rampColor(pick(r)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), cells, cells.Bounds(), draw.Src, nil)

	if opts.Label != "" {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.White,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(4, 4+basicfont.Face7x13.Ascent),
		}
		d.DrawString(opts.Label)
	}
	return dst, nil
}

func componentPicker(name string) (func(material.Response) float64, error) {
	switch name {
	case "", "R":
		return func(r material.Response) float64 { return r.R }, nil
	case "T":
		return func(r material.Response) float64 { return r.T }, nil
	case "A":
		return func(r material.Response) float64 { return r.A }, nil
	}
	return nil, fmt.Errorf("render heatmap: unknown component %q", name)
}

// rampColor maps [0,1] onto a blue-to-red ramp; out-of-range values are magenta.
func rampColor(v float64) color.RGBA {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return color.RGBA{R: 255, B: 255, A: 255}
	}
	return color.RGBA{
		R: uint8(math.Round(255 * v)),
		G: uint8(math.Round(255 * (1 - math.Abs(2*v-1)))),
		B: uint8(math.Round(255 * (1 - v))),
		A: 255,
	}
}
