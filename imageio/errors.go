package imageio

import "errors"

var (
	// ErrIO indicates a file could not be opened, created or written.
	ErrIO = errors.New("i/o error")
	// ErrUnsupportedExtension indicates a file extension with no codec.
	ErrUnsupportedExtension = errors.New("unsupported image extension")
	// ErrDecode indicates the image data could not be decoded.
	ErrDecode = errors.New("decode image failed")
	// ErrEncode indicates the image could not be encoded.
	ErrEncode = errors.New("encode image failed")
)
