package imageops

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Kind names an image operation.
type Kind string

const (
	KindConvert        Kind = "convert"
	KindResize         Kind = "resize"
	KindRecolor        Kind = "recolor"
	KindTransparentize Kind = "transparentize"
	KindWatermark      Kind = "watermark"
)

// ErrInvalidOperation is wrapped by every Validate failure.
var ErrInvalidOperation = errors.New("invalid operation")

// ResizeOptions configures KindResize.
type ResizeOptions struct {
	Width          int
	Height         int
	Scale          float64 // Used when > 0, overrides Width and Height
	Filter         string
	PreserveAspect bool // Fit inside Width x Height instead of stretching
}

// RecolorOptions configures KindRecolor.
type RecolorOptions struct {
	ColorSpace ColorSpace
	BitDepth   int
}

// WatermarkOptions configures KindWatermark.
type WatermarkOptions struct {
	Text     string
	FontPath string  // Optional TrueType font, built-in face when empty
	FontSize float64 // Points, only used with FontPath
	Opacity  uint8
}

// Operation is the transform applied to every image of a run.
type Operation struct {
	Kind      Kind
	Resize    ResizeOptions
	Recolor   RecolorOptions
	Watermark WatermarkOptions
}

// OperationError is returned by Apply.
type OperationError struct {
	Kind Kind
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"triangle":   imaging.Linear,
	"linear":     imaging.Linear,
	"gaussian":   imaging.Gaussian,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// FilterNames lists the accepted resize filter names.
func FilterNames() []string {
	return []string{"nearest", "triangle", "gaussian", "catmullrom", "lanczos"}
}

// Validate checks the operation's parameters before any image is touched.
func (op Operation) Validate() error {
	switch op.Kind {
	case KindConvert, KindTransparentize:
		return nil
	case KindResize:
		r := op.Resize
		if _, ok := filters[strings.ToLower(r.Filter)]; !ok {
			return fmt.Errorf("%w: unknown filter %q (want one of %s)", ErrInvalidOperation, r.Filter, strings.Join(FilterNames(), ", "))
		}
		if r.Scale < 0 || r.Width < 0 || r.Height < 0 {
			return fmt.Errorf("%w: dimensions must not be negative", ErrInvalidOperation)
		}
		if r.Scale == 0 && r.Width == 0 && r.Height == 0 {
			return fmt.Errorf("%w: resize needs a width, a height or a scale", ErrInvalidOperation)
		}
		return nil
	case KindRecolor:
		if _, err := ParseColorSpace(string(op.Recolor.ColorSpace)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
		}
		if op.Recolor.BitDepth != 8 && op.Recolor.BitDepth != 16 {
			return fmt.Errorf("%w: bit depth must be 8 or 16, got %d", ErrInvalidOperation, op.Recolor.BitDepth)
		}
		return nil
	case KindWatermark:
		if strings.TrimSpace(op.Watermark.Text) == "" {
			return fmt.Errorf("%w: watermark text is empty", ErrInvalidOperation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
	}
}

// Apply runs the operation on img and returns the new image. The input is
// never modified.
func Apply(img image.Image, op Operation) (image.Image, error) {
	if img == nil {
		return nil, &OperationError{Kind: op.Kind, Err: errors.New("no image data")}
	}
	if err := op.Validate(); err != nil {
		return nil, &OperationError{Kind: op.Kind, Err: err}
	}

	var (
		out image.Image
		err error
	)
	switch op.Kind {
	case KindConvert:
		// Pixels pass through; the target format is applied on save.
		out = img
	case KindResize:
		out, err = resize(img, op.Resize)
	case KindRecolor:
		out = recolor(img, op.Recolor)
	case KindTransparentize:
		out = transparentize(img)
	case KindWatermark:
		out, err = watermark(img, op.Watermark)
	}
	if err != nil {
		return nil, &OperationError{Kind: op.Kind, Err: err}
	}
	return out, nil
}

func resize(img image.Image, opts ResizeOptions) (image.Image, error) {
	filter := filters[strings.ToLower(opts.Filter)]
	b := img.Bounds()

	width, height := opts.Width, opts.Height
	if opts.Scale > 0 {
		width = int(math.Round(float64(b.Dx()) * opts.Scale))
		height = int(math.Round(float64(b.Dy()) * opts.Scale))
		if width == 0 || height == 0 {
			return nil, fmt.Errorf("scale %.3f reduces %dx%d to nothing", opts.Scale, b.Dx(), b.Dy())
		}
		return imaging.Resize(img, width, height, filter), nil
	}

	// A zero side lets imaging derive it from the aspect ratio.
	if opts.PreserveAspect && width > 0 && height > 0 {
		return imaging.Fit(img, width, height, filter), nil
	}
	return imaging.Resize(img, width, height, filter), nil
}

// transparentize makes pure white pixels fully transparent.
func transparentize(img image.Image) image.Image {
	if is16Bit(img) {
		dst := toNRGBA64(img)
		for i := 0; i+7 < len(dst.Pix); i += 8 {
			p := dst.Pix[i : i+8 : i+8]
			if p[0] == 0xff && p[1] == 0xff && p[2] == 0xff && p[3] == 0xff && p[4] == 0xff && p[5] == 0xff {
				p[6], p[7] = 0, 0
			}
		}
		return dst
	}

	dst := imaging.Clone(img)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		p := dst.Pix[i : i+4 : i+4]
		if p[0] == 0xff && p[1] == 0xff && p[2] == 0xff {
			p[3] = 0
		}
	}
	return dst
}
