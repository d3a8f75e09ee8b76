package imageops

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// ColorSpace is a target pixel layout for recolor.
type ColorSpace string

const (
	ColorRGB   ColorSpace = "rgb"
	ColorRGBA  ColorSpace = "rgba"
	ColorLuma  ColorSpace = "luma"
	ColorLumaA ColorSpace = "lumaa"
)

// ParseColorSpace accepts a color space name case-insensitively.
func ParseColorSpace(s string) (ColorSpace, error) {
	switch cs := ColorSpace(strings.ToLower(s)); cs {
	case ColorRGB, ColorRGBA, ColorLuma, ColorLumaA:
		return cs, nil
	}
	return "", fmt.Errorf("unknown color space %q (want rgb, rgba, luma or lumaa)", s)
}

func recolor(img image.Image, opts RecolorOptions) image.Image {
	cs, _ := ParseColorSpace(string(opts.ColorSpace))
	wide := opts.BitDepth == 16

	switch cs {
	case ColorLuma:
		if wide {
			return convertInto(image.NewGray16(img.Bounds()), img)
		}
		return convertInto(image.NewGray(img.Bounds()), img)
	case ColorLumaA:
		if wide {
			return lumaAlpha64(toNRGBA64(img))
		}
		return lumaAlpha(toNRGBA(img))
	case ColorRGB:
		if wide {
			dst := toNRGBA64(img)
			for i := 6; i < len(dst.Pix); i += 8 {
				dst.Pix[i], dst.Pix[i+1] = 0xff, 0xff
			}
			return dst
		}
		dst := toNRGBA(img)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 0xff
		}
		return dst
	default:
		if wide {
			return toNRGBA64(img)
		}
		return toNRGBA(img)
	}
}

func convertInto(dst draw.Image, src image.Image) image.Image {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func toNRGBA(img image.Image) *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	convertInto(dst, img)
	return dst
}

func toNRGBA64(img image.Image) *image.NRGBA64 {
	dst := image.NewNRGBA64(img.Bounds())
	convertInto(dst, img)
	return dst
}

// lumaAlpha replaces each pixel's color with its luma, keeping alpha.
func lumaAlpha(img *image.NRGBA) *image.NRGBA {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		y := color.GrayModel.Convert(color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], 0xff}).(color.Gray).Y
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = y, y, y
	}
	return img
}

func lumaAlpha64(img *image.NRGBA64) *image.NRGBA64 {
	for i := 0; i+7 < len(img.Pix); i += 8 {
		c := color.NRGBA64{
			R: uint16(img.Pix[i])<<8 | uint16(img.Pix[i+1]),
			G: uint16(img.Pix[i+2])<<8 | uint16(img.Pix[i+3]),
			B: uint16(img.Pix[i+4])<<8 | uint16(img.Pix[i+5]),
			A: 0xffff,
		}
		y := color.Gray16Model.Convert(c).(color.Gray16).Y
		hi, lo := uint8(y>>8), uint8(y)
		img.Pix[i], img.Pix[i+1] = hi, lo
		img.Pix[i+2], img.Pix[i+3] = hi, lo
		img.Pix[i+4], img.Pix[i+5] = hi, lo
	}
	return img
}

func is16Bit(img image.Image) bool {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}

// describeModel names a color model and its bit depth.
func describeModel(m color.Model) (name string, depth int, alpha bool) {
	switch m {
	case color.GrayModel:
		return "luma", 8, false
	case color.Gray16Model:
		return "luma", 16, false
	case color.RGBAModel, color.NRGBAModel:
		return "rgba", 8, true
	case color.RGBA64Model, color.NRGBA64Model:
		return "rgba", 16, true
	case color.YCbCrModel:
		return "ycbcr", 8, false
	case color.CMYKModel:
		return "cmyk", 8, false
	case color.AlphaModel:
		return "alpha", 8, true
	case color.Alpha16Model:
		return "alpha", 16, true
	}
	if _, ok := m.(color.Palette); ok {
		return "paletted", 8, true
	}
	return "unknown", 8, false
}
