package dds

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/woozymasta/bcn"
	"golang.org/x/image/draw"
)

// ReadDDS decodes the largest mip level of a DDS stream.
func ReadDDS(r io.Reader) (*image.NRGBA, error) {
	header, dx10, err := readHeaders(r)
	if err != nil {
		return nil, err
	}

	format, width, height, size, err := surface(header, dx10)
	if err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: level 0: %w", ErrInvalidData, err)
	}

	return decode(data, width, height, format)
}

// ReadDDSFile decodes the largest mip level of a DDS file.
func ReadDDSFile(path string) (*image.NRGBA, error) {
	return readFile(path, ReadDDS)
}

// ReadEDDS decodes the largest mip level of an EDDS stream. Files without a
// valid block table are read as a single LZ4 or raw payload.
func ReadEDDS(r io.Reader) (*image.NRGBA, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	br := bytes.NewReader(raw)
	header, dx10, err := readHeaders(br)
	if err != nil {
		return nil, err
	}

	format, width, height, size, err := surface(header, dx10)
	if err != nil {
		return nil, err
	}

	body := raw[len(raw)-br.Len():]
	data, err := largestBlock(br, mipmapCount(header), size)
	if err != nil {
		legacy, legacyErr := decodeBlock(&block{magic: MagicLZ4, data: body}, size)
		if legacyErr != nil {
			if len(body) != size {
				return nil, err
			}
			legacy = body
		}
		data = legacy
	}

	return decode(data, width, height, format)
}

// ReadEDDSFile decodes the largest mip level of an EDDS file.
func ReadEDDSFile(path string) (*image.NRGBA, error) {
	return readFile(path, ReadEDDS)
}

// ReadConfig returns the dimensions of a DDS or EDDS stream without
// decoding pixels.
func ReadConfig(r io.Reader) (image.Config, error) {
	header, _, err := readHeaders(r)
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		Width:      int(header.Width),
		Height:     int(header.Height),
		ColorModel: color.NRGBAModel,
	}, nil
}

func readFile(path string, read func(io.Reader) (*image.NRGBA, error)) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}
	defer func() { _ = f.Close() }()

	img, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	return img, nil
}

func readHeaders(r io.Reader) (*bcn.DDSHeader, *bcn.DDSHeaderDX10, error) {
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: DX10: %w", ErrInvalidHeader, err)
	}

	return header, dx10, nil
}

// surface resolves the format, dimensions and byte size of level 0.
func surface(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) (bcn.Format, int, int, int, error) {
	width, height := int(header.Width), int(header.Height)
	if width < 1 || height < 1 {
		return bcn.FormatUnknown, 0, 0, 0, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidHeader, width, height)
	}

	format := pixelFormat(header, dx10)
	size := dataLength(format, width, height)
	if size <= 0 {
		return bcn.FormatUnknown, 0, 0, 0, fmt.Errorf("%w: fourCC %q", ErrUnsupportedFormat, fourCCString(header.PixelFormat.FourCC))
	}

	return format, width, height, size, nil
}

func mipmapCount(header *bcn.DDSHeader) int {
	if header.Caps&bcn.DDSCapsMipmap != 0 && header.MipMapCount > 0 {
		return int(header.MipMapCount)
	}

	return 1
}

// largestBlock skips every body but the last one in the table, which holds
// level 0.
func largestBlock(r io.Reader, count, size int) ([]byte, error) {
	table, err := readBlockTable(r, count)
	if err != nil {
		return nil, err
	}

	for _, entry := range table[:len(table)-1] {
		if _, err := io.CopyN(io.Discard, r, int64(entry.size)); err != nil {
			return nil, fmt.Errorf("%w: skip %s body: %w", ErrInvalidBlock, entry.magic, err)
		}
	}

	b, err := readBlockBody(r, table[len(table)-1])
	if err != nil {
		return nil, err
	}

	return decodeBlock(b, size)
}

func decode(data []byte, width, height int, format bcn.Format) (*image.NRGBA, error) {
	var img image.Image
	var err error
	img, err = bcn.DecodeImageWithOptions(data, width, height, format, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return toNRGBA(img), nil
}

// toNRGBA returns img as an NRGBA image anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}

	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	return out
}
