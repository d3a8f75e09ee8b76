package imageops

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

const watermarkMargin = 10.0

// watermark draws text in the bottom-right corner. The baseline sits on
// the margin, so the glyphs stay inside the image.
func watermark(img image.Image, opts WatermarkOptions) (image.Image, error) {
	dc := gg.NewContextForImage(img)

	if opts.FontPath != "" {
		size := opts.FontSize
		if size <= 0 {
			size = float64(dc.Width()) * 0.05
		}
		if err := dc.LoadFontFace(opts.FontPath, size); err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
	}

	opacity := opts.Opacity
	if opacity == 0 {
		opacity = 0xff
	}
	dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: opacity})

	x := float64(dc.Width()) - watermarkMargin
	y := float64(dc.Height()) - watermarkMargin
	dc.DrawStringAnchored(opts.Text, x, y, 1, 0)

	return dc.Image(), nil
}
