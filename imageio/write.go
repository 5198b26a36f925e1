package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/woozymasta/vtf"
	"github.com/woozymasta/vtf/dds"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 95

// Encode writes img to w in the format named by ext (without the dot).
func Encode(w io.Writer, img image.Image, ext string) error {
	var err error
	switch ext {
	case "png":
		err = png.Encode(w, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tif", "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "dds":
		return dds.WriteDDS(w, img, nil)
	case "edds":
		return dds.WriteEDDS(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, ext, err)
	}

	return nil
}

// WriteImage encodes img to path, picking the format from its extension.
func WriteImage(path string, img image.Image) (err error) {
	ext := Ext(path)
	if !CanEncode(ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %q: %w", ErrIO, path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, img, ext); err != nil {
		return fmt.Errorf("%q: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}

	return nil
}

// WriteFrame encodes one decoded texture frame to path.
func WriteFrame(path string, frame *vtf.DecodedFrame) error {
	return WriteImage(path, frame.NRGBA())
}

// CanEncode reports whether Encode supports ext.
func CanEncode(ext string) bool {
	switch ext {
	case "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "dds", "edds":
		return true
	default:
		return false
	}
}
