package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/rstms/fatx"
)

// EntrySize is the fixed on-disk size of a FATX directory record (spec §3).
const EntrySize = 64

const (
	maxNameLen        = 42
	nameLenTombstone  = 0xE5
	nameLenTerminator = 0xFF
	rawNameFillByte   = 0xFF
	nameFieldSize     = 42
)

// Entry is the decoded form of a 64-byte FATX directory record (spec §3).
// Fields are laid out with explicit little-endian offsets in encode/decode
// rather than relying on any language's struct packing, per spec §9.
type Entry struct {
	NameLength   byte
	Attribute    fatx.DirectoryAttr
	RawName      [nameFieldSize]byte
	FirstCluster uint32
	FileSize     uint32
	ModTime      uint16
	ModDate      uint16
	CreateTime   uint16
	CreateDate   uint16
	AccessTime   uint16
	AccessDate   uint16
}

// IsLive reports whether the entry is a live, lookup-eligible record
// (spec §3: name_length in 0x01..0x2A).
func (e Entry) IsLive() bool {
	return e.NameLength >= 1 && e.NameLength <= maxNameLen
}

// IsTombstone reports a deleted-but-retained entry (spec §3, §4.5 Remove).
func (e Entry) IsTombstone() bool {
	return e.NameLength == nameLenTombstone
}

// IsTerminator reports the end-of-directory sentinel (spec §3).
func (e Entry) IsTerminator() bool {
	return e.NameLength == nameLenTerminator
}

// IsDirectory reports the directory attribute bit (spec §3).
func (e Entry) IsDirectory() bool {
	return e.Attribute&fatx.AttrDirectory != 0
}

// Name returns the decoded name for a live entry. It is meaningless for
// tombstoned, terminator, or unknown entries.
func (e Entry) Name() string {
	n := int(e.NameLength)
	if n < 0 || n > nameFieldSize {
		return ""
	}
	return string(e.RawName[:n])
}

func decodeEntry(b []byte) Entry {
	var e Entry
	e.NameLength = b[0]
	e.Attribute = fatx.DirectoryAttr(b[1])
	copy(e.RawName[:], b[2:44])
	e.FirstCluster = binary.LittleEndian.Uint32(b[44:48])
	e.FileSize = binary.LittleEndian.Uint32(b[48:52])
	e.ModTime = binary.LittleEndian.Uint16(b[52:54])
	e.ModDate = binary.LittleEndian.Uint16(b[54:56])
	e.CreateTime = binary.LittleEndian.Uint16(b[56:58])
	e.CreateDate = binary.LittleEndian.Uint16(b[58:60])
	e.AccessTime = binary.LittleEndian.Uint16(b[60:62])
	e.AccessDate = binary.LittleEndian.Uint16(b[62:64])
	return e
}

func (e Entry) encode() []byte {
	b := make([]byte, EntrySize)
	b[0] = e.NameLength
	b[1] = byte(e.Attribute)
	copy(b[2:44], e.RawName[:])
	binary.LittleEndian.PutUint32(b[44:48], e.FirstCluster)
	binary.LittleEndian.PutUint32(b[48:52], e.FileSize)
	binary.LittleEndian.PutUint16(b[52:54], e.ModTime)
	binary.LittleEndian.PutUint16(b[54:56], e.ModDate)
	binary.LittleEndian.PutUint16(b[56:58], e.CreateTime)
	binary.LittleEndian.PutUint16(b[58:60], e.CreateDate)
	binary.LittleEndian.PutUint16(b[60:62], e.AccessTime)
	binary.LittleEndian.PutUint16(b[62:64], e.AccessDate)
	return b
}

func newTerminatorEntry() Entry {
	var e Entry
	e.NameLength = nameLenTerminator
	for i := range e.RawName {
		e.RawName[i] = rawNameFillByte
	}
	return e
}

func newEntry(name string, attr fatx.DirectoryAttr, firstCluster, fileSize uint32) (Entry, error) {
	if len(name) < 1 || len(name) > maxNameLen {
		return Entry{}, fmt.Errorf("fatx: invalid name length %d for %q", len(name), name)
	}
	var e Entry
	e.NameLength = byte(len(name))
	e.Attribute = attr
	for i := range e.RawName {
		e.RawName[i] = rawNameFillByte
	}
	copy(e.RawName[:], name)
	e.FirstCluster = firstCluster
	e.FileSize = fileSize
	return e, nil
}
