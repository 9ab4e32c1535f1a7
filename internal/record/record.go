// Package record defines the fixed-width record type stored in heap pages.
//
// A record is opaque to the storage layers above it except for its
// 32-bit signed key: callers are free to put whatever they want into
// the payload as long as it fits in PayloadSize bytes.
package record

import (
	"fmt"

	"github.com/tuannm99/heapcache/internal/alias/bx"
)

// PayloadSize bounds the record payload. Chosen small so a page holds
// a convenient SlotCount of them (internal/page.SlotCount).
const PayloadSize = 56

// Width is the on-disk size of one record: a little-endian int32 key
// followed by the fixed payload.
const Width = 4 + PayloadSize

// Record is a fixed-schema row: a unique int32 key plus an opaque
// bounded payload.
type Record struct {
	key     int32
	payload [PayloadSize]byte
}

// New builds a Record from a key and payload. The payload is truncated
// if it exceeds PayloadSize and zero-padded if shorter.
func New(key int32, payload []byte) Record {
	r := Record{key: key}
	n := copy(r.payload[:], payload)
	_ = n
	return r
}

// Key returns the record's primary key.
func (r Record) Key() int32 { return r.key }

// Payload returns the raw payload bytes, including any zero padding.
func (r Record) Payload() []byte {
	out := make([]byte, PayloadSize)
	copy(out, r.payload[:])
	return out
}

// Encode writes the record's fixed-width byte image into dst, which
// must be exactly Width bytes long.
func (r Record) Encode(dst []byte) error {
	if len(dst) != Width {
		return fmt.Errorf("record: Encode: dst must be %d bytes, got %d", Width, len(dst))
	}
	bx.PutU32At(dst, 0, uint32(r.key))
	copy(dst[4:], r.payload[:])
	return nil
}

// Decode reads a record back from its fixed-width byte image. Decoding
// is total: any Width-byte slice decodes to some Record.
func Decode(src []byte) (Record, error) {
	if len(src) != Width {
		return Record{}, fmt.Errorf("record: Decode: src must be %d bytes, got %d", Width, len(src))
	}
	var r Record
	r.key = int32(bx.U32At(src, 0))
	copy(r.payload[:], src[4:])
	return r, nil
}

// Equal compares two records by key and payload content (used by tests
// to assert round-trip equality; unused slot bytes are never compared
// since Decode always produces a well-formed Record).
func (r Record) Equal(other Record) bool {
	return r.key == other.key && r.payload == other.payload
}
