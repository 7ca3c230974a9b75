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

// crc16 computes the packet checksum: polynomial 0x8005, initial value 0,
// data bits fed least significant first. The result is little endian.
func crc16(data []byte) [2]byte {
	const polynomial = 0x8005
	var crc uint16
	for _, b := range data {
		for shift := 0; shift < 8; shift++ {
			dataBit := (b>>shift)&1 == 1
			crcBit := crc>>15 == 1
			crc <<= 1
			if dataBit != crcBit {
				crc ^= polynomial
			}
		}
	}
	return [2]byte{byte(crc), byte(crc >> 8)}
}
