/*
NAME
  crc.go

DESCRIPTION
  crc.go provides CRC32/MPEG-2 generation and checking for PSI sections.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"encoding/binary"
	"hash/crc32"
	"math/bits"
)

// CRCLen is the length of the CRC32 trailing every long-form section.
const CRCLen = 4

// crcTable is the MSB-first table for the MPEG-2 polynomial.
var crcTable = crc32MakeTable(bits.Reverse32(crc32.IEEE))

// AddCRC returns a copy of the section s with room for, and the value of, its
// CRC appended.
func AddCRC(s []byte) []byte {
	t := make([]byte, len(s)+CRCLen)
	copy(t, s)
	UpdateCRC(t)
	return t
}

// UpdateCRC calculates the CRC of b, excluding its last four bytes, and writes
// the checksum into those last four bytes.
func UpdateCRC(b []byte) {
	crc := CRC32(b[:len(b)-CRCLen])
	binary.BigEndian.PutUint32(b[len(b)-CRCLen:], crc)
}

// CRC32 returns the CRC32/MPEG-2 of b.
func CRC32(b []byte) uint32 {
	return crc32Update(0xffffffff, crcTable, b)
}

// CheckCRC returns true if the trailing four bytes of b hold the CRC32/MPEG-2
// of the bytes before them. Running the CRC over a whole valid section,
// checksum included, leaves a zero remainder.
func CheckCRC(b []byte) bool {
	if len(b) < CRCLen {
		return false
	}
	return CRC32(b) == 0
}

func crc32MakeTable(poly uint32) *crc32.Table {
	var t crc32.Table
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func crc32Update(crc uint32, tab *crc32.Table, p []byte) uint32 {
	for _, v := range p {
		crc = tab[byte(crc>>24)^v] ^ (crc << 8)
	}
	return crc
}
