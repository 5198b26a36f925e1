package vtf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Signature is the 4-byte VTF magic "VTF\0".
var Signature = [4]byte{'V', 'T', 'F', 0}

// ThumbnailLevel is the mipmap level reported for decoded thumbnails.
const ThumbnailLevel = 255

// Version is the VTF file version.
type Version struct {
	Major uint32
	Minor uint32
}

// Supported reports whether the version is within 7.0-7.5.
func (v Version) Supported() bool {
	return v.Major == 7 && v.Minor <= 5
}

// String returns "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Header is the decoded VTF file header.
type Header struct {
	Version       Version
	HeaderSize    uint32
	Width         uint16
	Height        uint16
	Flags         Flags
	Frames        uint16
	FirstFrame    uint16
	Reflectivity  [3]float32
	BumpmapScale  float32
	HighResFormat Format
	MipmapCount   uint8
	LowResFormat  Format
	LowResWidth   uint8
	LowResHeight  uint8
	// Depth is 1 for files older than 7.2.
	Depth uint16
	// ResourceCount is 0 for files older than 7.3.
	ResourceCount uint32
}

// headerBody mirrors the fixed part of the header following the version.
type headerBody struct {
	HeaderSize    uint32
	Width         uint16
	Height        uint16
	Flags         uint32
	Frames        uint16
	FirstFrame    uint16
	_             [4]byte
	Reflectivity  [3]float32
	_             [4]byte
	BumpmapScale  float32
	HighResFormat int32
	MipmapCount   uint8
	LowResFormat  int32
	LowResWidth   uint8
	LowResHeight  uint8
}

// resourceTail mirrors the 7.3+ extension after depth.
type resourceTail struct {
	_             [3]byte
	ResourceCount uint32
}

// ParseHeader decodes a VTF header from the start of data.
func ParseHeader(data []byte) (*Header, error) {
	return readHeader(bytes.NewReader(data))
}

func readHeader(r io.Reader) (*Header, error) {
	var sig [4]byte
	if err := readField(r, &sig, "signature"); err != nil {
		return nil, err
	}
	if sig != Signature {
		return nil, fmt.Errorf("%w: % x", ErrInvalidSignature, sig[:])
	}

	var version Version
	if err := readField(r, &version, "version"); err != nil {
		return nil, err
	}
	if !version.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}

	var body headerBody
	if err := readField(r, &body, "header"); err != nil {
		return nil, err
	}

	highRes, err := formatFromCode(body.HighResFormat)
	if err != nil {
		return nil, fmt.Errorf("high-res format: %w", err)
	}
	lowRes, err := formatFromCode(body.LowResFormat)
	if err != nil {
		lowRes = FormatDXT1
	}

	h := &Header{
		Version:       version,
		HeaderSize:    body.HeaderSize,
		Width:         body.Width,
		Height:        body.Height,
		Flags:         Flags(body.Flags),
		Frames:        body.Frames,
		FirstFrame:    body.FirstFrame,
		Reflectivity:  body.Reflectivity,
		BumpmapScale:  body.BumpmapScale,
		HighResFormat: highRes,
		MipmapCount:   body.MipmapCount,
		LowResFormat:  lowRes,
		LowResWidth:   body.LowResWidth,
		LowResHeight:  body.LowResHeight,
		Depth:         1,
	}

	if version.Minor >= 2 {
		if err := readField(r, &h.Depth, "depth"); err != nil {
			return nil, err
		}
	}

	if version.Minor >= 3 {
		var tail resourceTail
		if err := readField(r, &tail, "resource count"); err != nil {
			return nil, err
		}
		h.ResourceCount = tail.ResourceCount
	}

	return h, nil
}

func readField(r io.Reader, v any, name string) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated %s", ErrInvalidData, name)
		}
		return fmt.Errorf("%w: reading %s: %w", ErrIO, name, err)
	}

	return nil
}

// writeHeader writes h in the exact order readHeader consumes it, then
// zero-pads the output up to HeaderSize.
func writeHeader(w *bytes.Buffer, h *Header) error {
	start := w.Len()

	body := headerBody{
		HeaderSize:    h.HeaderSize,
		Width:         h.Width,
		Height:        h.Height,
		Flags:         uint32(h.Flags),
		Frames:        h.Frames,
		FirstFrame:    h.FirstFrame,
		Reflectivity:  h.Reflectivity,
		BumpmapScale:  h.BumpmapScale,
		HighResFormat: int32(h.HighResFormat),
		MipmapCount:   h.MipmapCount,
		LowResFormat:  int32(h.LowResFormat),
		LowResWidth:   h.LowResWidth,
		LowResHeight:  h.LowResHeight,
	}

	fields := []any{Signature, h.Version, &body}
	if h.Version.Minor >= 2 {
		fields = append(fields, h.Depth)
	}
	if h.Version.Minor >= 3 {
		fields = append(fields, &resourceTail{ResourceCount: h.ResourceCount})
	}

	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("%w: writing header: %w", ErrIO, err)
		}
	}

	written := w.Len() - start
	if written > int(h.HeaderSize) {
		return fmt.Errorf("%w: header needs %d bytes, header size is %d", ErrInvalidData, written, h.HeaderSize)
	}
	w.Write(make([]byte, int(h.HeaderSize)-written))

	return nil
}

// MipmapSize returns the dimensions of a mipmap level.
func (h *Header) MipmapSize(level int) (int, int) {
	return mipDimension(int(h.Width), level), mipDimension(int(h.Height), level)
}

// MipmapDataSize returns the byte size of one face of a mipmap level.
func (h *Header) MipmapDataSize(level int) int {
	w, ht := h.MipmapSize(level)
	return h.HighResFormat.ImageSize(w, ht)
}

// ThumbnailSize returns the byte size of the low-resolution image.
func (h *Header) ThumbnailSize() int {
	return h.LowResFormat.ImageSize(int(h.LowResWidth), int(h.LowResHeight))
}

// levelSize returns the bytes used by all frames and slices of a level.
func (h *Header) levelSize(level int) int {
	return h.MipmapDataSize(level) * int(h.Frames) * int(h.Depth)
}

// TotalDataSize returns the bytes of image data following the header.
func (h *Header) TotalDataSize() int {
	size := h.ThumbnailSize()
	for level := 0; level < int(h.MipmapCount); level++ {
		size += h.levelSize(level)
	}

	return size
}

// Offset returns the file offset of the first depth slice of frame at
// level. Levels are stored from the smallest (MipmapCount-1) to the
// largest (0).
func (h *Header) Offset(level, frame int) int {
	offset := int(h.HeaderSize) + h.ThumbnailSize()
	for mip := int(h.MipmapCount) - 1; mip > level; mip-- {
		offset += h.levelSize(mip)
	}

	return offset + h.MipmapDataSize(level)*frame*int(h.Depth)
}

// SliceOffset returns the file offset of one depth slice.
func (h *Header) SliceOffset(level, frame, slice int) int {
	return h.Offset(level, frame) + h.MipmapDataSize(level)*slice
}

// HasAlpha reports whether the texture carries alpha, either by flag or
// by its high-res format.
func (h *Header) HasAlpha() bool {
	return h.Flags.Has(FlagOneBitAlpha) ||
		h.Flags.Has(FlagEightBitAlpha) ||
		h.HighResFormat.HasAlpha()
}

// IsAnimated reports whether the texture has more than one frame.
func (h *Header) IsAnimated() bool { return h.Frames > 1 }

// IsVolume reports whether the texture has more than one depth slice.
func (h *Header) IsVolume() bool { return h.Depth > 1 }

// IsEnvMap reports whether the environment map flag is set.
func (h *Header) IsEnvMap() bool { return h.Flags.Has(FlagEnvMap) }

// IsNormalMap reports whether the normal map flag is set.
func (h *Header) IsNormalMap() bool { return h.Flags.Has(FlagNormal) }

// String returns a short multi-line summary of the texture.
func (h *Header) String() string {
	return fmt.Sprintf(
		"Size: %dx%d\nFormat: %s\nMipmaps: %d\nFrames: %d\nVersion: %s\nHas Alpha: %t",
		h.Width, h.Height, h.HighResFormat, h.MipmapCount, h.Frames, h.Version, h.HasAlpha(),
	)
}
