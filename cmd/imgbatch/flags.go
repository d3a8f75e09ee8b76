package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aristath/imgbatch/internal/config"
	"github.com/aristath/imgbatch/internal/imageops"
)

// operationCommands are the subcommands that run the batch pipeline.
var operationCommands = map[string]string{
	"convert":        "Convert images to another format",
	"resize":         "Resize images",
	"recolor":        "Change the color type and bit depth of images",
	"transparentize": "Make pure white pixels transparent",
	"watermark":      "Stamp a text watermark in the bottom-right corner",
}

// commonFlags are shared by every operation command.
type commonFlags struct {
	images      []string
	output      string
	configPath  string
	writeConfig string
}

func newOperationFlagSet(name string, out io.Writer) (*pflag.FlagSet, *commonFlags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false

	c := &commonFlags{}
	fs.StringSliceVarP(&c.images, "images", "i", nil, "Images to process (positional arguments work too)")
	fs.StringVarP(&c.output, "output", "o", ".", "Output directory, or output file for a single image")
	fs.StringP("name", "n", "", "Output file name expression, e.g. photo or photo.png")
	fs.StringP("format", "f", "", "Output format: "+strings.Join(imageops.EncodableFormats(), ", "))
	fs.BoolP("overwrite", "x", false, "Overwrite existing files without asking")
	fs.BoolP("abort-on-error", "a", false, "Stop before writing anything if an image cannot be read")
	fs.Bool("strict", false, "Exit with an error if any image fails")
	fs.IntP("workers", "j", 0, "Images processed in parallel (0: one per CPU)")
	fs.Int("quality", imageops.DefaultJPEGQuality, "JPEG quality, 1-100")
	fs.Bool("plain", false, "Log progress lines instead of the live view")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-file", "", "Write JSON logs to this file")
	fs.String("history", "", "Record the run in this SQLite database")
	fs.Int("breaker-threshold", 5, "Stop saving to a directory after this many consecutive failures (0: never)")
	fs.StringVar(&c.configPath, "config", "", "Project config file (default .imgbatch/config.json)")
	fs.StringVar(&c.writeConfig, "write-config", "", "Save the effective configuration to this file and continue")

	switch name {
	case "resize":
		fs.IntP("width", "W", 0, "New width in pixels")
		fs.IntP("height", "H", 0, "New height in pixels")
		fs.Float64P("scale", "s", 0, "Scale factor, overrides width and height")
		fs.String("filter", "lanczos", "Sampling filter: "+strings.Join(imageops.FilterNames(), ", "))
		fs.BoolP("preserve-aspect", "p", false, "Fit inside width x height instead of stretching")
	case "recolor":
		fs.StringP("color-type", "c", "", "Target color type: rgb, rgba, luma, lumaa, optionally with depth (e.g. rgba16)")
		fs.Int("depth", 8, "Bit depth per channel: 8 or 16")
	case "watermark":
		fs.StringP("text", "t", "", "Watermark text")
		fs.String("font", "", "TrueType font file (built-in face when empty)")
		fs.Float64("font-size", 24, "Font size in points, used with --font")
		fs.Uint8("opacity", 160, "Text opacity, 0-255")
	}
	return fs, c
}

// inputs merges -i values with positional arguments.
func (c *commonFlags) inputs(fs *pflag.FlagSet) []string {
	return append(append([]string(nil), c.images...), fs.Args()...)
}

// buildOperation turns the parsed flags of an operation command into an
// imageops.Operation. cfg supplies layered defaults such as the filter.
func buildOperation(name string, fs *pflag.FlagSet, cfg *config.Config) (imageops.Operation, error) {
	op := imageops.Operation{Kind: imageops.Kind(name)}

	switch name {
	case "convert", "transparentize":

	case "resize":
		w, _ := fs.GetInt("width")
		h, _ := fs.GetInt("height")
		scale, _ := fs.GetFloat64("scale")
		preserve, _ := fs.GetBool("preserve-aspect")
		op.Resize = imageops.ResizeOptions{
			Width:          w,
			Height:         h,
			Scale:          scale,
			Filter:         cfg.Filter,
			PreserveAspect: preserve,
		}

	case "recolor":
		raw, _ := fs.GetString("color-type")
		depth, _ := fs.GetInt("depth")
		cs, d, err := parseColorType(raw, depth, fs.Changed("depth"))
		if err != nil {
			return op, err
		}
		op.Recolor = imageops.RecolorOptions{ColorSpace: cs, BitDepth: d}

	case "watermark":
		text, _ := fs.GetString("text")
		font, _ := fs.GetString("font")
		size, _ := fs.GetFloat64("font-size")
		opacity, _ := fs.GetUint8("opacity")
		op.Watermark = imageops.WatermarkOptions{Text: text, FontPath: font, FontSize: size, Opacity: opacity}

	default:
		return op, fmt.Errorf("unknown command %q", name)
	}

	return op, op.Validate()
}

// parseColorType accepts "rgba" or "rgba16". An explicit --depth must
// agree with a depth suffix.
func parseColorType(raw string, depth int, depthSet bool) (imageops.ColorSpace, int, error) {
	if raw == "" {
		return "", 0, fmt.Errorf("--color-type is required")
	}
	name := strings.TrimRight(raw, "0123456789")
	if suffix := raw[len(name):]; suffix != "" {
		d, err := strconv.Atoi(suffix)
		if err != nil {
			return "", 0, fmt.Errorf("bad color type %q", raw)
		}
		if depthSet && d != depth {
			return "", 0, fmt.Errorf("color type %q conflicts with --depth %d", raw, depth)
		}
		depth = d
	}
	cs, err := imageops.ParseColorSpace(name)
	if err != nil {
		return "", 0, err
	}
	return cs, depth, nil
}
