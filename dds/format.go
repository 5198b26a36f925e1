package dds

import (
	"github.com/woozymasta/bcn"
)

// DXGI format codes recognised in DX10 extended headers.
const (
	dxgiBC1      = 71
	dxgiBC2      = 74
	dxgiBC3      = 77
	dxgiBC4      = 80
	dxgiBC5      = 83
	dxgiB8G8R8A8 = 87
	dxgiR8G8B8A8 = 28
)

// enfusionMagic is "ENF1", stored in the second reserved header word.
const enfusionMagic = 0x31464e45

// pixelFormat maps a DDS pixel format description to a bcn format.
func pixelFormat(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) bcn.Format {
	if dx10 != nil {
		return dxgiFormat(dx10.DXGIFormat)
	}

	pf := header.PixelFormat
	if pf.Flags&bcn.DDSPFFourCC != 0 {
		switch fourCCString(pf.FourCC) {
		case "DXT1":
			return bcn.FormatDXT1
		case "DXT2", "DXT3":
			return bcn.FormatDXT3
		case "DXT4", "DXT5":
			return bcn.FormatDXT5
		case "ATI1", "BC4U", "BC4S":
			return bcn.FormatBC4
		case "ATI2", "BC5U", "BC5S":
			return bcn.FormatBC5
		default:
			return bcn.FormatUnknown
		}
	}

	if pf.Flags&bcn.DDSPFRGB != 0 && pf.Flags&bcn.DDSPFAlphaPixels != 0 && pf.RGBBitCount == 32 {
		switch {
		case pf.RBitMask == 0x000000ff && pf.GBitMask == 0x0000ff00 &&
			pf.BBitMask == 0x00ff0000 && pf.ABitMask == 0xff000000:
			return bcn.FormatRGBA8
		case pf.RBitMask == 0x00ff0000 && pf.GBitMask == 0x0000ff00 &&
			pf.BBitMask == 0x000000ff && pf.ABitMask == 0xff000000:
			return bcn.FormatBGRA8
		}
	}

	return bcn.FormatUnknown
}

func dxgiFormat(code uint32) bcn.Format {
	switch code {
	case dxgiBC1:
		return bcn.FormatDXT1
	case dxgiBC2:
		return bcn.FormatDXT3
	case dxgiBC3:
		return bcn.FormatDXT5
	case dxgiBC4:
		return bcn.FormatBC4
	case dxgiBC5:
		return bcn.FormatBC5
	case dxgiB8G8R8A8:
		return bcn.FormatBGRA8
	case dxgiR8G8B8A8:
		return bcn.FormatRGBA8
	default:
		return bcn.FormatUnknown
	}
}

func fourCCString(value uint32) string {
	return string([]byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)})
}

func fourCC(code string) uint32 {
	return uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24
}

// dataLength returns the byte length of one width x height surface, or -1
// for formats this package does not store.
func dataLength(format bcn.Format, width, height int) int {
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4
	switch format {
	case bcn.FormatDXT1, bcn.FormatBC4:
		return blocksW * blocksH * 8
	case bcn.FormatDXT3, bcn.FormatDXT5, bcn.FormatBC5:
		return blocksW * blocksH * 16
	case bcn.FormatRGBA8, bcn.FormatBGRA8:
		return width * height * 4
	default:
		return -1
	}
}

// newHeader describes a 2D texture with mipMapCount levels. Enfusion files
// carry a marker in the reserved words.
func newHeader(width, height, mipMapCount uint32, format bcn.Format, enfusion bool) (*bcn.DDSHeader, error) {
	flags := uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat)
	caps := uint32(bcn.DDSCapsTexture)
	if mipMapCount > 1 {
		flags |= bcn.DDSFlagMipmapCount
		caps |= bcn.DDSCapsComplex | bcn.DDSCapsMipmap
	}

	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       flags,
		Height:      height,
		Width:       width,
		Depth:       1,
		MipMapCount: mipMapCount,
		Caps:        caps,
	}
	if enfusion {
		hdr.Reserved1[1] = enfusionMagic
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize

	compressed := map[bcn.Format]string{
		bcn.FormatDXT1: "DXT1",
		bcn.FormatDXT3: "DXT3",
		bcn.FormatDXT5: "DXT5",
		bcn.FormatBC4:  "ATI1",
		bcn.FormatBC5:  "ATI2",
	}
	if code, ok := compressed[format]; ok {
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = fourCC(code)
		return hdr, nil
	}

	switch format {
	case bcn.FormatRGBA8:
		hdr.PixelFormat.RBitMask = 0x000000ff
		hdr.PixelFormat.BBitMask = 0x00ff0000
	case bcn.FormatBGRA8:
		hdr.PixelFormat.RBitMask = 0x00ff0000
		hdr.PixelFormat.BBitMask = 0x000000ff
	default:
		return nil, ErrUnsupportedFormat
	}

	hdr.Flags |= bcn.DDSFlagPitch
	hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
	hdr.PixelFormat.RGBBitCount = 32
	hdr.PixelFormat.GBitMask = 0x0000ff00
	hdr.PixelFormat.ABitMask = 0xff000000
	hdr.PitchOrLinearSize = width * 4

	return hdr, nil
}
