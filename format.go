package vtf

import (
	"fmt"
	"strings"
)

// Format is a VTF pixel format code as stored in the header.
type Format int32

// Pixel formats defined by the VTF file format.
const (
	FormatNone             Format = -1
	FormatRGBA8888         Format = 0
	FormatABGR8888         Format = 1
	FormatRGB888           Format = 2
	FormatBGR888           Format = 3
	FormatRGB565           Format = 4
	FormatI8               Format = 5
	FormatIA88             Format = 6
	FormatP8               Format = 7
	FormatA8               Format = 8
	FormatRGB888BlueScreen Format = 9
	FormatBGR888BlueScreen Format = 10
	FormatARGB8888         Format = 11
	FormatBGRA8888         Format = 12
	FormatDXT1             Format = 13
	FormatDXT3             Format = 14
	FormatDXT5             Format = 15
	FormatBGRX8888         Format = 16
	FormatBGR565           Format = 17
	FormatBGRX5551         Format = 18
	FormatBGRA4444         Format = 19
	FormatDXT1OneBitAlpha  Format = 20
	FormatBGRA5551         Format = 21
	FormatUV88             Format = 22
	FormatUVWQ8888         Format = 23
	FormatRGBA16161616F    Format = 24
	FormatRGBA16161616     Format = 25
	FormatUVLX8888         Format = 26
)

var formatNames = map[Format]string{
	FormatNone:             "NONE",
	FormatRGBA8888:         "RGBA8888",
	FormatABGR8888:         "ABGR8888",
	FormatRGB888:           "RGB888",
	FormatBGR888:           "BGR888",
	FormatRGB565:           "RGB565",
	FormatI8:               "I8",
	FormatIA88:             "IA88",
	FormatP8:               "P8",
	FormatA8:               "A8",
	FormatRGB888BlueScreen: "RGB888_BLUESCREEN",
	FormatBGR888BlueScreen: "BGR888_BLUESCREEN",
	FormatARGB8888:         "ARGB8888",
	FormatBGRA8888:         "BGRA8888",
	FormatDXT1:             "DXT1",
	FormatDXT3:             "DXT3",
	FormatDXT5:             "DXT5",
	FormatBGRX8888:         "BGRX8888",
	FormatBGR565:           "BGR565",
	FormatBGRX5551:         "BGRX5551",
	FormatBGRA4444:         "BGRA4444",
	FormatDXT1OneBitAlpha:  "DXT1_ONEBITALPHA",
	FormatBGRA5551:         "BGRA5551",
	FormatUV88:             "UV88",
	FormatUVWQ8888:         "UVWQ8888",
	FormatRGBA16161616F:    "RGBA16161616F",
	FormatRGBA16161616:     "RGBA16161616",
	FormatUVLX8888:         "UVLX8888",
}

// String returns the canonical upper-case format name.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return fmt.Sprintf("Format(%d)", int32(f))
}

// Valid reports whether f is one of the defined format codes.
func (f Format) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// ParseFormat looks up a format by its name, ignoring case.
func ParseFormat(name string) (Format, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == want {
			return f, nil
		}
	}

	return FormatNone, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

func formatFromCode(code int32) (Format, error) {
	f := Format(code)
	if !f.Valid() {
		return FormatNone, fmt.Errorf("%w: unknown format %d", ErrInvalidData, code)
	}

	return f, nil
}

// BitsPerPixel returns the storage cost of one pixel. Block formats report
// their average rate (4 for DXT1, 8 for DXT3/DXT5).
func (f Format) BitsPerPixel() int {
	switch f {
	case FormatRGBA8888, FormatABGR8888, FormatARGB8888, FormatBGRA8888,
		FormatBGRX8888, FormatUVWQ8888, FormatUVLX8888:
		return 32
	case FormatRGB888, FormatBGR888, FormatRGB888BlueScreen, FormatBGR888BlueScreen:
		return 24
	case FormatRGB565, FormatBGR565, FormatIA88, FormatBGRX5551,
		FormatBGRA4444, FormatBGRA5551, FormatUV88:
		return 16
	case FormatI8, FormatP8, FormatA8:
		return 8
	case FormatDXT1, FormatDXT1OneBitAlpha:
		return 4
	case FormatDXT3, FormatDXT5:
		return 8
	case FormatRGBA16161616F, FormatRGBA16161616:
		return 64
	default:
		return 0
	}
}

// IsCompressed reports whether f is a 4x4 block-compressed format.
func (f Format) IsCompressed() bool {
	switch f {
	case FormatDXT1, FormatDXT1OneBitAlpha, FormatDXT3, FormatDXT5:
		return true
	default:
		return false
	}
}

// BlockSize returns the byte size of one 4x4 block, or 0 for
// uncompressed formats.
func (f Format) BlockSize() int {
	switch f {
	case FormatDXT1, FormatDXT1OneBitAlpha:
		return 8
	case FormatDXT3, FormatDXT5:
		return 16
	default:
		return 0
	}
}

// ImageSize returns the number of bytes one width x height image occupies.
func (f Format) ImageSize(width, height int) int {
	if f.IsCompressed() {
		blocksW := (width + 3) / 4
		blocksH := (height + 3) / 4
		return blocksW * blocksH * f.BlockSize()
	}

	return width * height * f.BitsPerPixel() / 8
}

// HasAlpha reports whether the format carries an alpha channel by itself.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatRGBA8888, FormatABGR8888, FormatARGB8888, FormatBGRA8888,
		FormatDXT3, FormatDXT5, FormatDXT1OneBitAlpha,
		FormatBGRA4444, FormatBGRA5551, FormatA8, FormatIA88:
		return true
	default:
		return false
	}
}
