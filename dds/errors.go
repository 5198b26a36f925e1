package dds

import "errors"

var (
	// ErrIO indicates a file could not be opened, created or written.
	ErrIO = errors.New("i/o error")
	// ErrInvalidHeader indicates the DDS magic or header could not be read.
	ErrInvalidHeader = errors.New("invalid DDS header")
	// ErrUnsupportedFormat indicates a pixel format this package cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported DDS format")
	// ErrInvalidData indicates truncated or inconsistent pixel data.
	ErrInvalidData = errors.New("invalid DDS data")
	// ErrEmptyMipmaps indicates missing mipmap data.
	ErrEmptyMipmaps = errors.New("empty mipmaps")
	// ErrMipmapSizeMismatch indicates a mip payload of the wrong length.
	ErrMipmapSizeMismatch = errors.New("mipmap size mismatch")
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrInvalidBlock indicates a malformed EDDS block table or body.
	ErrInvalidBlock = errors.New("invalid EDDS block")
	// ErrLZ4 indicates LZ4 compression or decompression failed.
	ErrLZ4 = errors.New("LZ4 codec failed")
	// ErrEncode indicates pixel encoding failed.
	ErrEncode = errors.New("encode mipmap failed")
	// ErrDecode indicates pixel decoding failed.
	ErrDecode = errors.New("decode image failed")
)
