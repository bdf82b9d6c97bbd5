// Package codec converts between encoded image files and the flat raster
// model consumed by the gradient pipeline.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sobel-bench/internal/models"
)

var ErrDecode = errors.New("decode failed")

// DecodeError wraps any failure to turn input bytes into a usable raster.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// Decoder produces a raster with 1 channel for grayscale sources and 3
// channels (RGB) for everything else.
type Decoder interface {
	Decode(r io.Reader) (*models.Image, string, error)
}

// Encoder writes a raster in the named format (png, jpeg, ...).
type Encoder interface {
	Encode(w io.Writer, img *models.Image, format string) error
}

type Codec interface {
	Decoder
	Encoder
	Name() string
}

type constructor func(log Logger) Codec

var backends = map[string]constructor{
	"std": func(log Logger) Codec { return NewStd(log) },
}

// New returns the codec backend registered under name.
func New(name string, log Logger) (Codec, error) {
	if name == "" {
		name = "std"
	}
	ctor, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("codec backend %q not available (built with: %s)", name, strings.Join(Backends(), ", "))
	}
	return ctor(log), nil
}

func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load decodes the file at path. Every failure, including an image without
// pixels, is returned as a *DecodeError.
func Load(c Decoder, path string) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	defer file.Close()

	img, _, err := c.Decode(file)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	if err := checkDecoded(img); err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	return img, nil
}

// Save encodes img to path using the format implied by its extension.
func Save(c Encoder, path string, img *models.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := c.Encode(file, img, FormatFromPath(path)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

// FormatFromPath maps a file extension to a format name; unknown extensions
// map to png.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "png"
	}
}

func checkDecoded(img *models.Image) error {
	if img == nil {
		return errors.New("decoder returned no image")
	}
	if err := img.Validate(); err != nil {
		return err
	}
	if len(img.Pix) == 0 {
		return fmt.Errorf("image %s has no pixels", img)
	}
	return nil
}
