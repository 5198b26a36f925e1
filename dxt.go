package vtf

import "encoding/binary"

type rgba [4]uint8

// decode565 expands an RGB565 value to opaque RGBA8.
func decode565(c uint16) rgba {
	return rgba{scale5(c >> 11), scale6(c >> 5), scale5(c), 255}
}

// lerp returns (c0*(denom-num) + c1*num) / denom per channel, opaque.
func lerp(c0, c1 rgba, num, denom uint32) rgba {
	var out rgba
	for i := 0; i < 3; i++ {
		out[i] = uint8((uint32(c0[i])*(denom-num) + uint32(c1[i])*num) / denom)
	}
	out[3] = 255

	return out
}

// colorPalette builds the 4-entry color ramp of a DXT color block. With
// punchThrough set and c0 <= c1 the ramp has three colors and a
// transparent fourth entry.
func colorPalette(block []byte, punchThrough bool) [4]rgba {
	c0 := binary.LittleEndian.Uint16(block[0:])
	c1 := binary.LittleEndian.Uint16(block[2:])
	color0 := decode565(c0)
	color1 := decode565(c1)

	if c0 > c1 || !punchThrough {
		return [4]rgba{color0, color1, lerp(color0, color1, 1, 3), lerp(color0, color1, 2, 3)}
	}

	return [4]rgba{color0, color1, lerp(color0, color1, 1, 2), {}}
}

// alphaPalette builds the 8-entry DXT5 alpha ramp.
func alphaPalette(a0, a1 uint8) [8]uint8 {
	x, y := uint32(a0), uint32(a1)
	if a0 > a1 {
		return [8]uint8{
			a0, a1,
			uint8((6*x + 1*y) / 7),
			uint8((5*x + 2*y) / 7),
			uint8((4*x + 3*y) / 7),
			uint8((3*x + 4*y) / 7),
			uint8((2*x + 5*y) / 7),
			uint8((1*x + 6*y) / 7),
		}
	}

	return [8]uint8{
		a0, a1,
		uint8((4*x + 1*y) / 5),
		uint8((3*x + 2*y) / 5),
		uint8((2*x + 3*y) / 5),
		uint8((1*x + 4*y) / 5),
		0, 255,
	}
}

// forEachBlock walks the 4x4 blocks of a width x height image and calls fn
// with each block's bytes and a writer that stores in-bounds pixels only.
func forEachBlock(data []byte, width, height, blockSize int, out []byte, fn func(block []byte, put func(p int, c rgba))) {
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4

	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			i := (by*blocksW + bx) * blockSize
			block := data[i : i+blockSize]

			fn(block, func(p int, c rgba) {
				x := bx*4 + p%4
				y := by*4 + p/4
				if x >= width || y >= height {
					return
				}
				o := (y*width + x) * 4
				copy(out[o:o+4], c[:])
			})
		}
	}
}

func decodeDXT1(data []byte, width, height int, out []byte, oneBitAlpha bool) {
	forEachBlock(data, width, height, 8, out, func(block []byte, put func(int, rgba)) {
		colors := colorPalette(block, oneBitAlpha)
		indices := binary.LittleEndian.Uint32(block[4:])
		for p := 0; p < 16; p++ {
			put(p, colors[(indices>>(2*p))&0x03])
		}
	})
}

func decodeDXT3(data []byte, width, height int, out []byte) {
	forEachBlock(data, width, height, 16, out, func(block []byte, put func(int, rgba)) {
		colors := colorPalette(block[8:], false)
		indices := binary.LittleEndian.Uint32(block[12:])
		for p := 0; p < 16; p++ {
			nibble := block[p/2]
			if p%2 == 0 {
				nibble &= 0x0f
			} else {
				nibble >>= 4
			}
			c := colors[(indices>>(2*p))&0x03]
			c[3] = nibble * 17
			put(p, c)
		}
	})
}

func decodeDXT5(data []byte, width, height int, out []byte) {
	forEachBlock(data, width, height, 16, out, func(block []byte, put func(int, rgba)) {
		alphas := alphaPalette(block[0], block[1])

		var alphaBits uint64
		for i := 0; i < 6; i++ {
			alphaBits |= uint64(block[2+i]) << (8 * i)
		}

		colors := colorPalette(block[8:], false)
		indices := binary.LittleEndian.Uint32(block[12:])
		for p := 0; p < 16; p++ {
			c := colors[(indices>>(2*p))&0x03]
			c[3] = alphas[(alphaBits>>(3*p))&0x07]
			put(p, c)
		}
	})
}
