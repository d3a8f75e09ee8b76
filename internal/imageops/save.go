package imageops

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when SaveOptions leaves JPEGQuality at zero.
const DefaultJPEGQuality = 95

// SaveOptions tune the encoder.
type SaveOptions struct {
	JPEGQuality int
}

// SaveError is returned by Save.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Save encodes img to path in the format named by the path's extension.
// A partially written file is removed on failure.
func Save(img image.Image, path string, opts SaveOptions) error {
	if img == nil {
		return &SaveError{Path: path, Err: errors.New("no image data")}
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if !format.CanEncode() {
		return &SaveError{Path: path, Err: fmt.Errorf("%w: %s", ErrEncodeUnsupported, format.Name)}
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	f, err := os.Create(path)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}

	if err := imaging.Encode(f, img, format.encoder, imaging.JPEGQuality(quality)); err != nil {
		f.Close()
		os.Remove(path)
		return &SaveError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return &SaveError{Path: path, Err: err}
	}
	return nil
}
