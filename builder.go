package vtf

import (
	"bytes"
	"fmt"
	"os"
)

// Builder output constants.
const (
	// BuilderHeaderSize is the fixed header size of built files.
	BuilderHeaderSize = 80
	// BuilderFormat is the pixel format of built files.
	BuilderFormat = FormatBGRA8888
	// thumbnailDim is the edge of the single-block DXT1 thumbnail.
	thumbnailDim = 4
)

var builderVersion = Version{Major: 7, Minor: 2}

// Builder assembles a VTF file from one or more RGBA8 frames of equal size.
// A Builder is single-use: after Build or Save it returns
// ErrBuilderConsumed.
type Builder struct {
	width           int
	height          int
	generateMipmaps bool
	normalMap       bool
	clampS          bool
	clampT          bool
	noLOD           bool
	// frames holds RGBA8 data; more than one entry makes an animated texture.
	frames   [][]byte
	consumed bool
}

// NewBuilder creates a static texture builder from one RGBA8 buffer.
func NewBuilder(width, height int, rgba []byte) *Builder {
	return &Builder{
		width:           width,
		height:          height,
		generateMipmaps: true,
		frames:          [][]byte{rgba},
	}
}

// NewBuilderFromFrames creates a builder from RGBA8 frames that must all be
// width*height*4 bytes.
func NewBuilderFromFrames(width, height int, frames [][]byte) (*Builder, error) {
	b := &Builder{
		width:           width,
		height:          height,
		generateMipmaps: true,
		frames:          frames,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	return b, nil
}

// Mipmaps toggles generation of the full mip chain.
func (b *Builder) Mipmaps(generate bool) *Builder {
	b.generateMipmaps = generate
	return b
}

// NormalMap sets the normal map flag.
func (b *Builder) NormalMap(normal bool) *Builder {
	b.normalMap = normal
	return b
}

// Clamp sets both the S and T clamp flags.
func (b *Builder) Clamp(clamp bool) *Builder {
	b.clampS = clamp
	b.clampT = clamp
	return b
}

// NoLOD sets the no-LOD flag.
func (b *Builder) NoLOD(noLOD bool) *Builder {
	b.noLOD = noLOD
	return b
}

// FrameCount returns the number of frames queued.
func (b *Builder) FrameCount() int { return len(b.frames) }

func (b *Builder) validate() error {
	if len(b.frames) == 0 {
		return fmt.Errorf("%w: no frames provided", ErrInvalidData)
	}
	if b.width < 1 || b.height < 1 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidData, b.width, b.height)
	}
	if b.width > maxUint16 || b.height > maxUint16 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrSizeOverflow, b.width, b.height)
	}
	if len(b.frames) > maxUint16 {
		return fmt.Errorf("%w: %d frames", ErrSizeOverflow, len(b.frames))
	}

	expected := b.width * b.height * 4
	for i, frame := range b.frames {
		if len(frame) != expected {
			return fmt.Errorf("%w: frame %d size mismatch: expected %d, got %d", ErrInvalidData, i, expected, len(frame))
		}
	}

	return nil
}

func (b *Builder) flags() Flags {
	flags := FlagEightBitAlpha
	if b.normalMap {
		flags |= FlagNormal
	}
	if b.clampS {
		flags |= FlagClampS
	}
	if b.clampT {
		flags |= FlagClampT
	}
	if b.noLOD {
		flags |= FlagNoLOD
	}

	return flags
}

// header returns the header describing the built file.
func (b *Builder) header() (*Header, error) {
	mipmapCount := 1
	if b.generateMipmaps {
		mipmapCount = CalculateMipmapCount(b.width, b.height)
	}

	w, err := u16FromInt(b.width)
	if err != nil {
		return nil, err
	}
	h, err := u16FromInt(b.height)
	if err != nil {
		return nil, err
	}
	frames, err := u16FromInt(len(b.frames))
	if err != nil {
		return nil, err
	}
	mips, err := u8FromInt(mipmapCount)
	if err != nil {
		return nil, err
	}

	return &Header{
		Version:       builderVersion,
		HeaderSize:    BuilderHeaderSize,
		Width:         w,
		Height:        h,
		Flags:         b.flags(),
		Frames:        frames,
		Reflectivity:  [3]float32{0.5, 0.5, 0.5},
		BumpmapScale:  1.0,
		HighResFormat: BuilderFormat,
		MipmapCount:   mips,
		LowResFormat:  FormatDXT1,
		LowResWidth:   thumbnailDim,
		LowResHeight:  thumbnailDim,
		Depth:         1,
	}, nil
}

// Build finalizes the builder and returns the encoded file. Inputs are
// validated before any output is produced.
func (b *Builder) Build() ([]byte, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	if err := b.validate(); err != nil {
		return nil, err
	}

	header, err := b.header()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(int(header.HeaderSize) + header.TotalDataSize())

	if err := writeHeader(&out, header); err != nil {
		return nil, err
	}

	thumb := solidDXT1Block(averageColor(b.frames))
	out.Write(thumb[:])

	// smallest level first, every frame per level
	for level := int(header.MipmapCount) - 1; level >= 0; level-- {
		mipW, mipH := header.MipmapSize(level)
		for _, frame := range b.frames {
			var pix []byte
			if level == 0 {
				pix = make([]byte, len(frame))
				copy(pix, frame)
			} else {
				pix = resizeRGBA(frame, b.width, b.height, mipW, mipH)
			}
			swapRedBlue(pix)
			out.Write(pix)
		}
	}

	return out.Bytes(), nil
}

// Save builds the file and writes it to path.
func (b *Builder) Save(path string) error {
	data, err := b.Build()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIO, path, err)
	}

	return nil
}

// swapRedBlue converts RGBA8 to BGRA8 in place (and back).
func swapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
