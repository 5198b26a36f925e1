package vtf

import (
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// CalculateMipmapCount returns floor(log2(max(width, height))) + 1, the
// length of a full mip chain down to 1x1.
func CalculateMipmapCount(width, height int) int {
	maxDim := max(width, height)
	if maxDim < 1 {
		return 1
	}

	return bits.Len(uint(maxDim))
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

// resizeRGBA scales an RGBA8 buffer to width x height with a Catmull-Rom
// kernel.
func resizeRGBA(pix []byte, srcW, srcH, width, height int) []byte {
	src := &image.NRGBA{
		Pix:    pix,
		Stride: srcW * 4,
		Rect:   image.Rect(0, 0, srcW, srcH),
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst.Pix
}
