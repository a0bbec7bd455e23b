package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

type Format int

const (
	FormatPNG Format = iota
	FormatWebP
	FormatTGA
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	case FormatTGA:
		return "tga"
	}
	return "unknown"
}

// FormatFromPath picks the encoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	case ".tga":
		return FormatTGA, nil
	}
	return 0, fmt.Errorf("preview: unsupported image extension %q", filepath.Ext(path))
}

func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatTGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("preview: unknown format %d", f)
	}
	if err != nil {
		return fmt.Errorf("preview: %s encode: %w", f, err)
	}
	return nil
}

func WriteFile(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
