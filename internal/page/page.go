// Package page implements the fixed-size slotted disk page: a used/free
// bitmap followed by SlotCount fixed-width record slots.
package page

import (
	"fmt"

	"github.com/tuannm99/heapcache/internal/record"
)

// SlotCount is the number of record slots per page, fixed for this
// build. Matches the pool-size-2 / SLOT_COUNT-16 scenarios used to
// reason about eviction behavior.
const SlotCount = 16

// bitmapBytes is the number of bytes needed to hold one used/free bit
// per slot.
const bitmapBytes = (SlotCount + 7) / 8

// Size is the exact on-disk byte size of a page: the slot bitmap
// followed by SlotCount fixed-width record images.
const Size = bitmapBytes + SlotCount*record.Width

// Page is a fixed-size slotted container of records, held entirely in
// memory between BufferManager reads/writes.
type Page struct {
	used    [SlotCount]bool
	records [SlotCount]record.Record
}

// New returns an empty page with every slot free.
func New() Page {
	return Page{}
}

func checkSlot(i int) {
	if i < 0 || i >= SlotCount {
		panic(fmt.Sprintf("page: slot index %d out of range [0,%d)", i, SlotCount))
	}
}

// IsSlotUsed reports whether slot i currently holds a record.
func (p Page) IsSlotUsed(i int) bool {
	checkSlot(i)
	return p.used[i]
}

// GetRecord returns the record stored in slot i. Reading an unused
// slot is a programmer error.
func (p Page) GetRecord(i int) record.Record {
	checkSlot(i)
	if !p.used[i] {
		panic(fmt.Sprintf("page: GetRecord: slot %d is unused", i))
	}
	return p.records[i]
}

// InsertRecord stores r in slot i. Inserting into an already-used slot
// is a programmer error.
func (p *Page) InsertRecord(i int, r record.Record) {
	checkSlot(i)
	if p.used[i] {
		panic(fmt.Sprintf("page: InsertRecord: slot %d already used", i))
	}
	p.used[i] = true
	p.records[i] = r
}

// DeleteRecord frees slot i. Deleting an already-free slot is a
// programmer error, symmetric with InsertRecord/GetRecord.
func (p *Page) DeleteRecord(i int) {
	checkSlot(i)
	if !p.used[i] {
		panic(fmt.Sprintf("page: DeleteRecord: slot %d already free", i))
	}
	p.used[i] = false
	p.records[i] = record.Record{}
}

// FreeSlotCount returns how many slots currently hold no record.
func (p Page) FreeSlotCount() int {
	n := 0
	for i := range p.used {
		if !p.used[i] {
			n++
		}
	}
	return n
}

// FirstFreeSlot returns the lowest-indexed free slot, or -1 if the page
// is full.
func (p Page) FirstFreeSlot() int {
	for i := range p.used {
		if !p.used[i] {
			return i
		}
	}
	return -1
}

// ToBytes encodes the page to its self-describing on-disk image: one
// bit per slot (used/free) followed by each slot's fixed-width record
// bytes (unused slots are written as zero bytes; they are ignored on
// decode).
func (p Page) ToBytes() []byte {
	buf := make([]byte, Size)
	for i := 0; i < SlotCount; i++ {
		if p.used[i] {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	for i := 0; i < SlotCount; i++ {
		if !p.used[i] {
			continue
		}
		off := bitmapBytes + i*record.Width
		_ = p.records[i].Encode(buf[off : off+record.Width])
	}
	return buf
}

// FromBytes decodes a page from its on-disk image. Decoding is total:
// any Size-byte slice decodes to a well-formed Page.
func FromBytes(buf []byte) (Page, error) {
	if len(buf) != Size {
		return Page{}, fmt.Errorf("page: FromBytes: buf must be %d bytes, got %d", Size, len(buf))
	}
	var p Page
	for i := 0; i < SlotCount; i++ {
		if buf[i/8]&(1<<uint(i%8)) == 0 {
			continue
		}
		off := bitmapBytes + i*record.Width
		r, err := record.Decode(buf[off : off+record.Width])
		if err != nil {
			return Page{}, fmt.Errorf("page: FromBytes: slot %d: %w", i, err)
		}
		p.used[i] = true
		p.records[i] = r
	}
	return p, nil
}
