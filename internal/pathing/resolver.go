// Package pathing computes output paths for a batch and guards against
// overwriting existing files.
package pathing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aristath/imgbatch/internal/imageops"
)

var (
	ErrDestinationMissing = errors.New("destination directory does not exist")
	ErrDestinationNotDir  = errors.New("destination is a file, please choose a directory")
	ErrInvalidNameExpr    = errors.New("invalid naming expression")
	ErrUnknownFormat      = errors.New("unknown output format")
	ErrNoExtension        = errors.New("file has no extension and no output format was given")
)

// CollisionError reports two inputs that resolve to the same output path.
type CollisionError struct {
	Path   string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s and %s would both be written to %s", e.First, e.Second, e.Path)
}

// ValidateDestination checks that dir exists and is a directory.
func ValidateDestination(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDestinationMissing, dir)
		}
		return fmt.Errorf("stat destination %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDestinationNotDir, dir)
	}
	return nil
}

// ValidateNaming checks the naming expression and target format without
// touching the filesystem.
func ValidateNaming(nameExpr, format string) error {
	_, _, err := naming(nameExpr, format)
	return err
}

// naming returns the stem used for every output and the forced extension
// (without dot). Either may be empty.
func naming(nameExpr, format string) (stem, ext string, err error) {
	if format != "" {
		f, err := imageops.LookupFormat(format)
		if err != nil {
			return "", "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		}
		if !f.CanEncode() {
			return "", "", fmt.Errorf("%w: %s can be read but not written", ErrUnknownFormat, f.Name)
		}
		ext = f.Extension
	}

	if nameExpr == "" {
		return "", ext, nil
	}
	if strings.ContainsAny(nameExpr, `/\`) || strings.ContainsRune(nameExpr, filepath.Separator) {
		return "", "", fmt.Errorf("%w: %q must not contain a path separator", ErrInvalidNameExpr, nameExpr)
	}

	stem = nameExpr
	// A known image extension on the expression selects the format
	// unless one was given explicitly.
	if e := filepath.Ext(nameExpr); e != "" {
		if f, lookupErr := imageops.LookupFormat(e); lookupErr == nil {
			stem = strings.TrimSuffix(nameExpr, e)
			if ext == "" {
				if !f.CanEncode() {
					return "", "", fmt.Errorf("%w: %s can be read but not written", ErrUnknownFormat, f.Name)
				}
				ext = f.Extension
			}
		}
	}
	if stem == "" || stem == "." || stem == ".." {
		return "", "", fmt.Errorf("%w: %q has no file name", ErrInvalidNameExpr, nameExpr)
	}
	return stem, ext, nil
}

// Resolve maps each input path to its output path inside destDir. The
// result has the same length and order as paths.
//
// Extension precedence: format, then the naming expression's extension,
// then each input's own extension. With a naming expression every output
// is named <stem>_<index>.
func Resolve(paths []string, destDir, nameExpr, format string) ([]string, error) {
	if err := ValidateDestination(destDir); err != nil {
		return nil, err
	}
	stem, ext, err := naming(nameExpr, format)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(paths))
	seen := make(map[string]string, len(paths))

	for i, src := range paths {
		base := filepath.Base(src)
		srcExt := filepath.Ext(base)

		name := strings.TrimSuffix(base, srcExt)
		if stem != "" {
			name = fmt.Sprintf("%s_%d", stem, i)
		}

		fileExt := ext
		if fileExt == "" {
			if srcExt == "" {
				return nil, fmt.Errorf("%w: %s", ErrNoExtension, src)
			}
			fileExt = strings.TrimPrefix(srcExt, ".")
		}

		dst := filepath.Join(destDir, name+"."+fileExt)
		if prev, dup := seen[dst]; dup {
			return nil, &CollisionError{Path: dst, First: prev, Second: src}
		}
		seen[dst] = src
		out[i] = dst
	}
	return out, nil
}

// ResolveFile returns the output path for a single input. When output
// names an existing directory, or is empty, the name is resolved as for a
// batch of one. Otherwise output is used as the file path itself.
func ResolveFile(input, output, format string) (string, error) {
	if output == "" {
		output = "."
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		paths, err := Resolve([]string{input}, output, "", format)
		if err != nil {
			return "", err
		}
		return paths[0], nil
	}

	if err := ValidateDestination(filepath.Dir(output)); err != nil {
		return "", err
	}
	if format != "" {
		_, ext, err := naming("", format)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + ext, nil
	}
	if filepath.Ext(output) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoExtension, output)
	}
	return output, nil
}
