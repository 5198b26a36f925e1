package vtf

import (
	"fmt"
	"image"
	"io"
	"os"
)

// probeSize is the number of bytes Probe reads; it covers every header
// field up to version 7.5.
const probeSize = 80

// minFileSize is the smallest buffer Load accepts.
const minFileSize = 16

// DecodedFrame is one decoded image in RGBA8 layout.
type DecodedFrame struct {
	// Data holds Width*Height*4 bytes, row-major RGBA.
	Data        []byte
	Width       int
	Height      int
	MipmapLevel int
	Frame       int
}

// NRGBA returns a copy of the frame as an image.
func (f *DecodedFrame) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.Data)
	return img
}

// Image is a loaded VTF file. It is immutable after Load and safe for
// concurrent decoding.
type Image struct {
	header Header
	data   []byte
	path   string
}

// Load parses data as a VTF file. The buffer is copied. Files shorter than
// their declared data size are accepted; decoding a region past the end
// fails with ErrInvalidData.
func Load(data []byte) (*Image, error) {
	if len(data) < minFileSize {
		return nil, fmt.Errorf("%w: file too small (%d bytes)", ErrInvalidData, len(data))
	}

	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	owned := make([]byte, len(data))
	copy(owned, data)

	return &Image{header: *header, data: owned}, nil
}

// LoadFile reads and parses a VTF file from disk.
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}

	img, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	img.path = path

	return img, nil
}

// Probe reads only the header of a VTF file.
func Probe(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, probeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}

	return ParseHeader(buf[:n])
}

// Header returns a copy of the parsed header.
func (img *Image) Header() *Header {
	h := img.header
	return &h
}

// Path returns the file path the image was loaded from, if any.
func (img *Image) Path() string { return img.path }

// Width returns the base width.
func (img *Image) Width() int { return int(img.header.Width) }

// Height returns the base height.
func (img *Image) Height() int { return int(img.header.Height) }

// FrameCount returns the number of frames.
func (img *Image) FrameCount() int { return int(img.header.Frames) }

// MipmapCount returns the number of mipmap levels.
func (img *Image) MipmapCount() int { return int(img.header.MipmapCount) }

// Format returns the high-res pixel format.
func (img *Image) Format() Format { return img.header.HighResFormat }

// HasAlpha reports whether the texture carries alpha.
func (img *Image) HasAlpha() bool { return img.header.HasAlpha() }

// IsAnimated reports whether the texture has more than one frame.
func (img *Image) IsAnimated() bool { return img.header.IsAnimated() }

// RawData returns a copy of the file bytes.
func (img *Image) RawData() []byte {
	out := make([]byte, len(img.data))
	copy(out, img.data)
	return out
}

// window returns data[offset:offset+size] or ErrInvalidData.
func (img *Image) window(offset, size int, what string) ([]byte, error) {
	end := offset + size
	if offset < 0 || end > len(img.data) {
		return nil, fmt.Errorf("%w: %s out of bounds: offset %d + size %d > file size %d",
			ErrInvalidData, what, offset, size, len(img.data))
	}

	return img.data[offset:end], nil
}

// DecodeThumbnail decodes the low-resolution preview stored right after
// the header.
func (img *Image) DecodeThumbnail() (*DecodedFrame, error) {
	h := &img.header
	width, height := int(h.LowResWidth), int(h.LowResHeight)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: no thumbnail present", ErrInvalidData)
	}

	raw, err := img.window(int(h.HeaderSize), h.ThumbnailSize(), "thumbnail data")
	if err != nil {
		return nil, err
	}

	rgba, err := ConvertToRGBA(raw, h.LowResFormat, width, height)
	if err != nil {
		return nil, err
	}

	return &DecodedFrame{
		Data:        rgba,
		Width:       width,
		Height:      height,
		MipmapLevel: ThumbnailLevel,
	}, nil
}

// Decode decodes the first depth slice of frame at mipmap level.
func (img *Image) Decode(level, frame int) (*DecodedFrame, error) {
	return img.DecodeSlice(level, frame, 0)
}

// DecodeSlice decodes one depth slice of frame at mipmap level. The
// returned frame carries the level's dimensions.
func (img *Image) DecodeSlice(level, frame, slice int) (*DecodedFrame, error) {
	h := &img.header
	if level < 0 || level >= int(h.MipmapCount) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMipmap, level)
	}
	if frame < 0 || frame >= int(h.Frames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrame, frame)
	}
	if slice < 0 || slice >= int(h.Depth) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlice, slice)
	}

	width, height := h.MipmapSize(level)
	raw, err := img.window(h.SliceOffset(level, frame, slice), h.MipmapDataSize(level), "image data")
	if err != nil {
		return nil, err
	}

	rgba, err := ConvertToRGBA(raw, h.HighResFormat, width, height)
	if err != nil {
		return nil, err
	}

	return &DecodedFrame{
		Data:        rgba,
		Width:       width,
		Height:      height,
		MipmapLevel: level,
		Frame:       frame,
	}, nil
}

// DecodeMain decodes the first frame at full resolution.
func (img *Image) DecodeMain() (*DecodedFrame, error) {
	return img.Decode(0, int(img.header.FirstFrame))
}

// DecodeAllFrames decodes every frame of one mipmap level. It returns the
// first error encountered and no partial result.
func (img *Image) DecodeAllFrames(level int) ([]*DecodedFrame, error) {
	frames := make([]*DecodedFrame, 0, img.header.Frames)
	for frame := 0; frame < int(img.header.Frames); frame++ {
		decoded, err := img.Decode(level, frame)
		if err != nil {
			return nil, err
		}
		frames = append(frames, decoded)
	}

	return frames, nil
}
