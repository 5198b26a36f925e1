package dds

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/woozymasta/bcn"
)

// maxEDDSMipmaps is the deepest chain the Enfusion engine loads.
const maxEDDSMipmaps = 11

// WriteOptions configures DDS and EDDS output.
type WriteOptions struct {
	// Format is the stored pixel format.
	Format bcn.Format
	// MaxMipmaps limits the chain length; 0 keeps every level.
	MaxMipmaps int
	// Compress stores EDDS levels as LZ4 chunk streams where that pays off.
	// Plain DDS ignores it.
	Compress bool
	// EncodeOptions are passed to the BCn encoder.
	EncodeOptions *bcn.EncodeOptions
}

// DefaultWriteOptions returns uncompressed BGRA8 with a full mip chain and
// LZ4 enabled.
func DefaultWriteOptions() *WriteOptions {
	return &WriteOptions{Format: bcn.FormatBGRA8, Compress: true}
}

// WriteDDS encodes img with a mip chain and writes a DDS stream. Nil opts
// uses DefaultWriteOptions.
func WriteDDS(w io.Writer, img image.Image, opts *WriteOptions) error {
	if opts == nil {
		opts = DefaultWriteOptions()
	}

	mips, err := encodeMipmaps(img, opts, 0)
	if err != nil {
		return err
	}

	b := img.Bounds()
	return WriteDDSFromMipmaps(w, opts.Format, b.Dx(), b.Dy(), mips)
}

// WriteEDDS encodes img with a mip chain and writes an EDDS stream. Nil
// opts uses DefaultWriteOptions.
func WriteEDDS(w io.Writer, img image.Image, opts *WriteOptions) error {
	if opts == nil {
		opts = DefaultWriteOptions()
	}

	mips, err := encodeMipmaps(img, opts, maxEDDSMipmaps)
	if err != nil {
		return err
	}

	b := img.Bounds()
	return WriteEDDSFromMipmaps(w, opts.Format, b.Dx(), b.Dy(), mips, opts.Compress)
}

// WriteDDSFile writes img to path as DDS.
func WriteDDSFile(path string, img image.Image, opts *WriteOptions) error {
	return writeFile(path, func(w io.Writer) error { return WriteDDS(w, img, opts) })
}

// WriteEDDSFile writes img to path as EDDS.
func WriteEDDSFile(path string, img image.Image, opts *WriteOptions) error {
	return writeFile(path, func(w io.Writer) error { return WriteEDDS(w, img, opts) })
}

// WriteDDSFromMipmaps writes pre-encoded mip payloads, ordered from largest
// to smallest, as a DDS stream.
func WriteDDSFromMipmaps(w io.Writer, format bcn.Format, width, height int, mipmaps [][]byte) error {
	if err := validateMipmaps(format, width, height, mipmaps); err != nil {
		return err
	}
	if err := writeHeaders(w, format, width, height, mipmaps, false); err != nil {
		return err
	}

	for i, mip := range mipmaps {
		if _, err := w.Write(mip); err != nil {
			return fmt.Errorf("%w: mipmap %d: %w", ErrIO, i, err)
		}
	}

	return nil
}

// WriteEDDSFromMipmaps writes pre-encoded mip payloads, ordered from
// largest to smallest, as an EDDS stream. compress=false stores COPY
// blocks only.
func WriteEDDSFromMipmaps(w io.Writer, format bcn.Format, width, height int, mipmaps [][]byte, compress bool) error {
	if err := validateMipmaps(format, width, height, mipmaps); err != nil {
		return err
	}

	blocks := make([]*block, len(mipmaps))
	for i, mip := range mipmaps {
		b, err := encodeBlock(mip, compress)
		if err != nil {
			return fmt.Errorf("mipmap %d: %w", i, err)
		}
		blocks[i] = b
	}

	if err := writeHeaders(w, format, width, height, mipmaps, true); err != nil {
		return err
	}

	return writeBlocks(w, blocks)
}

func encodeMipmaps(img image.Image, opts *WriteOptions, limit int) ([][]byte, error) {
	if opts.Format == bcn.FormatUnknown {
		return nil, ErrUnsupportedFormat
	}

	mips := bcn.GenerateMipmaps(img, false)
	keep := len(mips)
	if opts.MaxMipmaps > 0 {
		keep = min(keep, opts.MaxMipmaps)
	}
	if limit > 0 {
		keep = min(keep, limit)
	}

	payloads := make([][]byte, 0, keep)
	for i, mip := range mips[:keep] {
		data, _, _, err := bcn.EncodeImageWithOptions(mip, opts.Format, opts.EncodeOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: mipmap %d: %w", ErrEncode, i, err)
		}
		payloads = append(payloads, data)
	}

	return payloads, nil
}

func validateMipmaps(format bcn.Format, width, height int, mipmaps [][]byte) error {
	if len(mipmaps) == 0 {
		return ErrEmptyMipmaps
	}
	if dataLength(format, 1, 1) <= 0 {
		return ErrUnsupportedFormat
	}

	for i, mip := range mipmaps {
		want := dataLength(format, mipDimension(width, i), mipDimension(height, i))
		if len(mip) != want {
			return fmt.Errorf("%w: mipmap %d: expected %d, got %d", ErrMipmapSizeMismatch, i, want, len(mip))
		}
	}

	return nil
}

func writeHeaders(w io.Writer, format bcn.Format, width, height int, mipmaps [][]byte, enfusion bool) error {
	w32, err := u32FromInt(width)
	if err != nil {
		return err
	}
	h32, err := u32FromInt(height)
	if err != nil {
		return err
	}
	mip32, err := u32FromInt(len(mipmaps))
	if err != nil {
		return err
	}

	header, err := newHeader(w32, h32, mip32, format, enfusion)
	if err != nil {
		return err
	}

	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: magic: %w", ErrIO, err)
	}
	if err := bcn.WriteDDSHeader(w, header); err != nil {
		return fmt.Errorf("%w: header: %w", ErrIO, err)
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %q: %w", ErrIO, path, cerr)
		}
	}()

	return write(f)
}
