// Package uuid generates time-ordered UUID v7 identifiers.
// v7 sorts by creation time, which keeps SQLite primary-key indexes compact.
package uuid

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// UUID is a 128-bit identifier in RFC 4122 layout.
type UUID [16]byte

// NewV7 returns a fresh UUID v7: 48 bits of millisecond timestamp followed
// by 74 bits of randomness, with version and variant bits set per RFC 4122.
func NewV7() UUID {
	var u UUID

	ms := uint64(time.Now().UnixMilli())
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)

	// crypto/rand never fails on supported platforms; a short read would
	// leave zero bytes, which is still a valid (if weaker) identifier.
	_, _ = rand.Read(u[6:])

	u[6] = (u[6] & 0x0f) | 0x70 // version 7
	u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant

	return u
}

// String formats the UUID as xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf[:])
}
