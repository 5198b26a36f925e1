// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vtf

package vtf

const maxUint16 = int(^uint16(0))

// u16FromInt converts an int to a uint16.
func u16FromInt(n int) (uint16, error) {
	if n < 0 || n > maxUint16 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint16(n), nil
}

// u8FromInt converts an int to a uint8.
func u8FromInt(n int) (uint8, error) {
	if n < 0 || n > 0xff {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint8(n), nil
}
