package imageops

import (
	"image"
	"os"
)

// Info is the header-level description of an image file.
type Info struct {
	Path       string
	Size       int64
	Width      int
	Height     int
	Format     string
	ColorModel string
	BitDepth   int
	HasAlpha   bool
}

// Describe reads only the image header of path.
func Describe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, &DecodeError{Path: path, Reason: classifyDecode(err), Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return Info{}, &DecodeError{Path: path, Reason: ReasonIO, Err: err}
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, &DecodeError{Path: path, Reason: classifyDecode(err), Err: err}
	}

	model, depth, alpha := describeModel(cfg.ColorModel)
	return Info{
		Path:       path,
		Size:       stat.Size(),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Format:     format,
		ColorModel: model,
		BitDepth:   depth,
		HasAlpha:   alpha,
	}, nil
}
