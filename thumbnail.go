package vtf

import "encoding/binary"

// averageColor returns the integer mean RGBA over every pixel of every
// frame, or mid-grey when there are no pixels.
func averageColor(frames [][]byte) rgba {
	var sum [4]uint64
	var count uint64

	for _, frame := range frames {
		for i := 0; i+3 < len(frame); i += 4 {
			sum[0] += uint64(frame[i])
			sum[1] += uint64(frame[i+1])
			sum[2] += uint64(frame[i+2])
			sum[3] += uint64(frame[i+3])
			count++
		}
	}

	if count == 0 {
		return rgba{128, 128, 128, 255}
	}

	return rgba{
		uint8(sum[0] / count),
		uint8(sum[1] / count),
		uint8(sum[2] / count),
		uint8(sum[3] / count),
	}
}

// encode565 truncates an RGB color to RGB565.
func encode565(c rgba) uint16 {
	r := uint16(c[0]>>3) & 0x1f
	g := uint16(c[1]>>2) & 0x3f
	b := uint16(c[2]>>3) & 0x1f
	return r<<11 | g<<5 | b
}

// solidDXT1Block encodes a 4x4 DXT1 block filled with c: both endpoints
// hold the color and every index selects color0.
func solidDXT1Block(c rgba) [8]byte {
	var block [8]byte
	v := encode565(c)
	binary.LittleEndian.PutUint16(block[0:], v)
	binary.LittleEndian.PutUint16(block[2:], v)

	return block
}
