// Package image provides image loading, saving, grayscale conversion and
// cropping for tagged image artifacts.
package image

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"correlation-map/internal/artifact"
)

// Image is a decoded image together with the role it plays in a run.
type Image struct {
	Path   string      // Original file path, empty for derived images
	Pix    image.Image // Decoded pixels
	Format string      // Encoder name used by Save ("png", "jpeg", ...)

	tag artifact.Tag
}

// New wraps pix as an artifact with the given tag. Derived images are saved
// as PNG unless Format is changed.
func New(pix image.Image, tag artifact.Tag) (*Image, error) {
	if err := tag.Check(); err != nil {
		return nil, fmt.Errorf("new image: %w", err)
	}
	if pix == nil {
		return nil, fmt.Errorf("new image %q: nil pixels", tag)
	}
	return &Image{Pix: pix, Format: "png", tag: tag}, nil
}

// Load decodes the image at path and tags it.
func Load(path string, tag artifact.Tag) (*Image, error) {
	if err := tag.Check(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("load %s: %w (want one of %s)", path, ErrUnsupportedFormat, strings.Join(SupportedFormats(), " "))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	pix, name, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	format := formatFromPath(path)
	if format == "" {
		format = name
	}
	return &Image{Path: path, Pix: pix, Format: format, tag: tag}, nil
}

// Derive returns a new image with the same format and the given pixels and tag.
func (im *Image) Derive(pix image.Image, tag artifact.Tag) (*Image, error) {
	out, err := New(pix, tag)
	if err != nil {
		return nil, err
	}
	out.Format = im.Format
	return out, nil
}

// Tag returns the artifact role of the image.
func (im *Image) Tag() artifact.Tag {
	return im.tag
}

// Width returns the image width in pixels.
func (im *Image) Width() int {
	if im.Pix == nil {
		return 0
	}
	return im.Pix.Bounds().Dx()
}

// Height returns the image height in pixels.
func (im *Image) Height() int {
	if im.Pix == nil {
		return 0
	}
	return im.Pix.Bounds().Dy()
}

// FileName is the name Save writes to: the tag with spaces replaced by
// underscores plus the format extension.
func (im *Image) FileName() string {
	return im.tag.Slug() + "." + extensionFor(encoderName(im.Format))
}

// Save encodes the image into dir and returns the written path.
func (im *Image) Save(dir string) (string, error) {
	if im.Pix == nil {
		return "", fmt.Errorf("save %q: no pixels", im.tag)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, im.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, im.Pix, im.Format); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func (im *Image) String() string {
	name := im.Path
	if name == "" {
		name = "<memory>"
	}
	return fmt.Sprintf("%s (%s, %dx%d)", im.tag, name, im.Width(), im.Height())
}

func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	case "png", "gif", "bmp", "webp":
		return ext
	}
	return ""
}
