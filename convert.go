package vtf

import (
	"encoding/binary"
	"fmt"
)

// ConvertToRGBA converts raw pixel data in format to a width*height*4
// RGBA8 buffer.
func ConvertToRGBA(data []byte, format Format, width, height int) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidData, width, height)
	}

	switch format {
	case FormatNone, FormatP8:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	need := format.ImageSize(width, height)
	if len(data) < need {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d", ErrInvalidData, format, width, height, need, len(data))
	}

	pixels := width * height
	out := make([]byte, pixels*4)

	switch format {
	case FormatRGBA8888, FormatUVWQ8888, FormatUVLX8888:
		copy(out, data[:pixels*4])

	case FormatABGR8888:
		reorder4(out, data, pixels, 3, 2, 1, 0)

	case FormatARGB8888:
		reorder4(out, data, pixels, 1, 2, 3, 0)

	case FormatBGRA8888:
		reorder4(out, data, pixels, 2, 1, 0, 3)

	case FormatBGRX8888:
		reorder4(out, data, pixels, 2, 1, 0, 3)
		fillAlpha(out, 255)

	case FormatRGB888:
		for i := 0; i < pixels; i++ {
			s := data[i*3 : i*3+3]
			setPixel(out, i, s[0], s[1], s[2], 255)
		}

	case FormatBGR888, FormatBGR888BlueScreen:
		for i := 0; i < pixels; i++ {
			s := data[i*3 : i*3+3]
			setPixel(out, i, s[2], s[1], s[0], 255)
		}

	case FormatRGB888BlueScreen:
		for i := 0; i < pixels; i++ {
			r, g, b := data[i*3], data[i*3+1], data[i*3+2]
			a := uint8(255)
			if r == 0 && g == 0 && b == 255 {
				a = 0
			}
			setPixel(out, i, r, g, b, a)
		}

	case FormatRGB565:
		for i := 0; i < pixels; i++ {
			p := binary.LittleEndian.Uint16(data[i*2:])
			setPixel(out, i, scale5(p>>11), scale6(p>>5), scale5(p), 255)
		}

	case FormatBGR565:
		for i := 0; i < pixels; i++ {
			p := binary.LittleEndian.Uint16(data[i*2:])
			setPixel(out, i, scale5(p), scale6(p>>5), scale5(p>>11), 255)
		}

	case FormatBGRA4444:
		for i := 0; i < pixels; i++ {
			p := binary.LittleEndian.Uint16(data[i*2:])
			setPixel(out, i, scale4(p>>4), scale4(p>>8), scale4(p>>12), scale4(p))
		}

	case FormatBGRA5551, FormatBGRX5551:
		for i := 0; i < pixels; i++ {
			p := binary.LittleEndian.Uint16(data[i*2:])
			a := uint8(0)
			if format == FormatBGRX5551 || p&0x8000 != 0 {
				a = 255
			}
			setPixel(out, i, scale5(p), scale5(p>>5), scale5(p>>10), a)
		}

	case FormatI8:
		for i := 0; i < pixels; i++ {
			v := data[i]
			setPixel(out, i, v, v, v, 255)
		}

	case FormatIA88:
		for i := 0; i < pixels; i++ {
			v := data[i*2]
			setPixel(out, i, v, v, v, data[i*2+1])
		}

	case FormatA8:
		for i := 0; i < pixels; i++ {
			setPixel(out, i, 255, 255, 255, data[i])
		}

	case FormatUV88:
		for i := 0; i < pixels; i++ {
			setPixel(out, i, data[i*2], data[i*2+1], 128, 255)
		}

	case FormatRGBA16161616:
		for i := 0; i < pixels*4; i++ {
			out[i] = uint8(binary.LittleEndian.Uint16(data[i*2:]) >> 8)
		}

	case FormatRGBA16161616F:
		for i := 0; i < pixels*4; i++ {
			out[i] = unitToByte(halfToFloat(binary.LittleEndian.Uint16(data[i*2:])))
		}

	case FormatDXT1:
		decodeDXT1(data, width, height, out, false)

	case FormatDXT1OneBitAlpha:
		decodeDXT1(data, width, height, out, true)

	case FormatDXT3:
		decodeDXT3(data, width, height, out)

	case FormatDXT5:
		decodeDXT5(data, width, height, out)
	}

	return out, nil
}

// reorder4 copies 4-byte pixels, taking R, G, B, A from the given source
// byte positions.
func reorder4(out, data []byte, pixels, r, g, b, a int) {
	for i := 0; i < pixels; i++ {
		s := data[i*4 : i*4+4]
		setPixel(out, i, s[r], s[g], s[b], s[a])
	}
}

func fillAlpha(out []byte, a uint8) {
	for i := 3; i < len(out); i += 4 {
		out[i] = a
	}
}

func setPixel(out []byte, i int, r, g, b, a uint8) {
	d := out[i*4 : i*4+4]
	d[0], d[1], d[2], d[3] = r, g, b, a
}

func scale4(v uint16) uint8 { return uint8(uint32(v&0x0f) * 17) }

func scale5(v uint16) uint8 { return uint8(uint32(v&0x1f) * 255 / 31) }

func scale6(v uint16) uint8 { return uint8(uint32(v&0x3f) * 255 / 63) }

// unitToByte clamps f to [0,1] and scales it to 0-255, truncating.
// NaN maps to 0.
func unitToByte(f float32) uint8 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}

	return uint8(f * 255)
}
