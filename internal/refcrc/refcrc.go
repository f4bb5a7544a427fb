// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package refcrc is the default CRC-32 engine: a thin wrapper over
// hash/crc32's IEEE polynomial, grounded the way other_examples'
// lann-tuya net-frame codec computes its frame CRC (crc32.NewIEEE /
// crc32.ChecksumIEEE over the header+payload before comparing against the
// wire value). CRC-32 is an explicitly pluggable collaborator of the rest of
// this module (see the top-level CRC32 interface); this package exists so
// callers who don't need a different polynomial don't have to write one.
package refcrc

import (
	"hash/crc32"

	"github.com/lorenzoRosin/embeddedFSP/internal/bo"
)

// IEEE computes CRC-32/IEEE (the polynomial used by Ethernet, gzip, zip...),
// continuing from a caller-supplied seed rather than the conventional
// all-ones-in/all-ones-out framing, matching how Encoder/Decoder call it.
type IEEE struct{}

// Checksum returns crc32.Update(seed, crc32.IEEETable, data), nil.
func (IEEE) Checksum(seed uint32, data []byte) (uint32, error) {
	return crc32.Update(seed, crc32.IEEETable, data), nil
}

// checkVector and checkSum are the standard CRC-32/IEEE test vector, seeded
// the way this package's callers seed it (0xFFFFFFFF, not the textbook
// all-ones-in/all-ones-out convention), so SelfCheck exercises exactly the
// call shape the rest of the module makes.
var checkVector = []byte("123456789")

const checkSum = 0xD202D277

// SelfCheck verifies the host's hash/crc32 implementation produces the
// expected checksum for a known test vector, and reports the host's native
// byte order alongside — useful diagnostic context when a link's peer uses a
// different CRC engine and frames start failing verification on one platform
// but not another.
func SelfCheck() (nativeByteOrder string, ok bool, err error) {
	var e IEEE
	got, err := e.Checksum(0xFFFFFFFF, checkVector)
	if err != nil {
		return "", false, err
	}
	name := "big-endian"
	if bo.Native().String() == "LittleEndian" {
		name = "little-endian"
	}
	return name, got == checkSum, nil
}
