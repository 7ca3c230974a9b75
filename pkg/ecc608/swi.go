// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gateway-security.
//
// go-gateway-security is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package ecc608

const (
	swiCharOne  = 0x7f
	swiCharZero = 0x7d
)

// encodeSWI expands every bit of data into one UART character, least
// significant bit first.
func encodeSWI(data []byte) []byte {
	out := make([]byte, 0, 8*len(data))
	for _, b := range data {
		for bit := 0; bit < 8; bit++ {
			if (b>>bit)&1 == 1 {
				out = append(out, swiCharOne)
			} else {
				out = append(out, swiCharZero)
			}
		}
	}
	return out
}

// decodeSWI folds groups of eight UART characters back into bytes. A zero
// bit from the chip arrives as a distorted character, so anything that is
// not (nearly) 0x7f is read as zero.
func decodeSWI(chars []byte) []byte {
	out := make([]byte, len(chars)/8)
	for i := range out {
		var b byte
		for bit := 0; bit < 8; bit++ {
			if chars[8*i+bit]^swiCharOne < 2 {
				b |= 1 << bit
			}
		}
		out[i] = b
	}
	return out
}
