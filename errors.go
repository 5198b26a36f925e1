package vtf

import "errors"

var (
	// ErrIO indicates an underlying read or write failure.
	ErrIO = errors.New("I/O failure")
	// ErrInvalidSignature indicates the data does not start with the VTF magic.
	ErrInvalidSignature = errors.New("invalid VTF signature")
	// ErrUnsupportedVersion indicates a version outside 7.0-7.5.
	ErrUnsupportedVersion = errors.New("unsupported VTF version")
	// ErrInvalidData indicates truncated or inconsistent data.
	ErrInvalidData = errors.New("invalid data")
	// ErrUnsupportedFormat indicates a pixel format without an RGBA conversion.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrInvalidMipmap indicates a mipmap level out of range.
	ErrInvalidMipmap = errors.New("invalid mipmap level")
	// ErrInvalidFrame indicates a frame index out of range.
	ErrInvalidFrame = errors.New("invalid frame index")
	// ErrInvalidSlice indicates a depth slice out of range.
	ErrInvalidSlice = errors.New("invalid depth slice")
	// ErrBuilderConsumed indicates a Builder was already finalized.
	ErrBuilderConsumed = errors.New("builder already consumed")
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
)
