package imageops

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the WebP decoder with image.Decode
)

var (
	// ErrUnknownFormat is returned for names that match no supported format.
	ErrUnknownFormat = errors.New("unknown image format")
	// ErrEncodeUnsupported is returned for formats that can be read but not written.
	ErrEncodeUnsupported = errors.New("format cannot be encoded")
)

// Format describes an image file format known to the tool.
type Format struct {
	Name      string // Canonical name, e.g. "jpeg"
	Extension string // Preferred file extension without the dot
	encoder   imaging.Format
	canEncode bool
}

// CanEncode reports whether images can be written in this format.
func (f Format) CanEncode() bool {
	return f.canEncode
}

func (f Format) String() string {
	return f.Name
}

var formats = map[string]Format{
	"jpg":  {Name: "jpeg", Extension: "jpg", encoder: imaging.JPEG, canEncode: true},
	"jpeg": {Name: "jpeg", Extension: "jpg", encoder: imaging.JPEG, canEncode: true},
	"png":  {Name: "png", Extension: "png", encoder: imaging.PNG, canEncode: true},
	"gif":  {Name: "gif", Extension: "gif", encoder: imaging.GIF, canEncode: true},
	"tif":  {Name: "tiff", Extension: "tiff", encoder: imaging.TIFF, canEncode: true},
	"tiff": {Name: "tiff", Extension: "tiff", encoder: imaging.TIFF, canEncode: true},
	"bmp":  {Name: "bmp", Extension: "bmp", encoder: imaging.BMP, canEncode: true},
	"webp": {Name: "webp", Extension: "webp"},
}

// LookupFormat resolves a format name or extension, with or without a
// leading dot, case-insensitively.
func LookupFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "."))
	f, ok := formats[key]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// FormatFromPath resolves the format from a file name's extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Format{}, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, filepath.Base(path))
	}
	return LookupFormat(ext)
}

// EncodableFormats lists the canonical names of writable formats.
func EncodableFormats() []string {
	return []string{"bmp", "gif", "jpeg", "png", "tiff"}
}
