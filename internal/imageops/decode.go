package imageops

import (
	"errors"
	"fmt"
	"image"
	"io/fs"

	"github.com/disintegration/imaging"
)

// DecodeReason classifies why an image could not be decoded.
type DecodeReason int

const (
	ReasonIO DecodeReason = iota
	ReasonNotFound
	ReasonPermission
	ReasonUnsupported
	ReasonCorrupt
)

func (r DecodeReason) String() string {
	switch r {
	case ReasonNotFound:
		return "file not found"
	case ReasonPermission:
		return "permission denied"
	case ReasonUnsupported:
		return "unsupported format"
	case ReasonCorrupt:
		return "corrupt image data"
	default:
		return "read error"
	}
}

// DecodeError is returned by Decode.
type DecodeError struct {
	Path   string
	Reason DecodeReason
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Reason == ReasonIO || e.Reason == ReasonCorrupt {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads and decodes the image at path, applying EXIF orientation.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: classifyDecode(err), Err: err}
	}
	return img, nil
}

func classifyDecode(err error) DecodeReason {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	case errors.Is(err, image.ErrFormat):
		return ReasonUnsupported
	case errors.As(err, &pathErr):
		// Opened but could not be read, e.g. a directory.
		return ReasonIO
	default:
		return ReasonCorrupt
	}
}
