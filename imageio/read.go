package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/vtf"
	"github.com/woozymasta/vtf/dds"
	"golang.org/x/image/draw"

	// registered with image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Frames is a decoded input: one or more RGBA8 buffers of Width*Height*4
// bytes each.
type Frames struct {
	Width  int
	Height int
	Data   [][]byte
}

// Builder returns a vtf.Builder holding every frame.
func (f *Frames) Builder() (*vtf.Builder, error) {
	return vtf.NewBuilderFromFrames(f.Width, f.Height, f.Data)
}

// ReadFrames decodes the image file at path. GIF files yield one frame per
// image; every other format yields a single frame.
func ReadFrames(path string) (*Frames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}
	defer func() { _ = f.Close() }()

	frames, err := DecodeFrames(bufio.NewReader(f), Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	return frames, nil
}

// DecodeFrames decodes r as the format named by ext (without the dot).
func DecodeFrames(r io.Reader, ext string) (*Frames, error) {
	switch ext {
	case "gif":
		return decodeGIF(r)
	case "dds":
		img, err := dds.ReadDDS(r)
		if err != nil {
			return nil, err
		}
		return single(img), nil
	case "edds":
		img, err := dds.ReadEDDS(r)
		if err != nil {
			return nil, err
		}
		return single(img), nil
	case "png", "jpg", "jpeg", "bmp", "tif", "tiff", "webp":
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return single(img), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}

// Ext returns the lower-case extension of path without the dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func single(img image.Image) *Frames {
	n := ToNRGBA(img)
	return &Frames{
		Width:  n.Rect.Dx(),
		Height: n.Rect.Dy(),
		Data:   [][]byte{n.Pix},
	}
}

// ToNRGBA returns img as a tightly packed NRGBA image anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*4 {
		return n
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	return out
}

// decodeGIF renders every GIF frame onto the logical screen, honouring the
// disposal method of the previous frame.
func decodeGIF(r io.Reader) (*Frames, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: no frames in GIF", ErrDecode)
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	frames := &Frames{Width: width, Height: height, Data: make([][]byte, 0, len(g.Image))}

	for i, frame := range g.Image {
		var previous []byte
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = append([]byte(nil), canvas.Pix...)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames.Data = append(frames.Data, append([]byte(nil), canvas.Pix...))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, previous)
		}
	}

	return frames, nil
}
