package vtf

import "math"

// halfToFloat decodes an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := h >> 15 & 0x1
	exponent := int(h >> 10 & 0x1f)
	mantissa := float32(h & 0x3ff)

	var f float32
	switch exponent {
	case 0:
		// zero or subnormal
		f = mantissa / 1024 * float32(math.Ldexp(1, -14))
	case 0x1f:
		if mantissa != 0 {
			return float32(math.NaN())
		}
		f = float32(math.Inf(1))
	default:
		f = (1 + mantissa/1024) * float32(math.Ldexp(1, exponent-15))
	}

	if sign != 0 {
		return -f
	}

	return f
}
