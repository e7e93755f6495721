package volume

import (
	"bytes"
	"strings"

	"github.com/rstms/fatx"
)

// Directory holds the decoded entry list of one directory's cluster chain
// (spec §4.4). It generalizes the teacher's DirectoryCluster from FAT's
// LFN-chained 32-byte records down to FATX's flat 64-byte records: no
// long-name chaining is needed because FATX packs the whole name inline.
type Directory struct {
	dev          fatx.BlockDevice
	geo          Geometry
	fat          *FAT
	firstCluster uint32
	entries      []Entry
}

func decodeEntries(raw []byte) []Entry {
	var entries []Entry
	for off := 0; off+EntrySize <= len(raw); off += EntrySize {
		e := decodeEntry(raw[off : off+EntrySize])
		if e.IsTerminator() {
			break
		}
		entries = append(entries, e)
	}
	return entries
}

func encodeEntries(entries []Entry) []byte {
	buf := make([]byte, 0, (len(entries)+1)*EntrySize)
	for _, e := range entries {
		buf = append(buf, e.encode()...)
	}
	buf = append(buf, newTerminatorEntry().encode()...)
	return buf
}

func loadDirectory(dev fatx.BlockDevice, geo Geometry, fat *FAT, firstCluster uint32) (*Directory, error) {
	raw, err := readChain(dev, geo, fat, firstCluster)
	if err != nil {
		return nil, err
	}
	return &Directory{
		dev:          dev,
		geo:          geo,
		fat:          fat,
		firstCluster: firstCluster,
		entries:      decodeEntries(raw),
	}, nil
}

// Lookup performs a case-insensitive match over live entries only
// (spec §4.4). Zero matches is NotFound, more than one is Ambiguous.
func (d *Directory) Lookup(name string) (Entry, int, error) {
	upper := strings.ToUpper(name)
	idx := -1
	count := 0
	var found Entry
	for i, e := range d.entries {
		if !e.IsLive() {
			continue
		}
		if strings.ToUpper(e.Name()) == upper {
			count++
			idx = i
			found = e
		}
	}
	switch {
	case count == 0:
		return Entry{}, -1, fatx.ErrNotFound
	case count > 1:
		return Entry{}, -1, fatx.ErrAmbiguous
	default:
		return found, idx, nil
	}
}

// Insert appends entry to the in-memory list. The caller is responsible
// for calling Save (spec §4.4).
func (d *Directory) Insert(e Entry) {
	d.entries = append(d.entries, e)
}

// Tombstone marks the single matching live entry deleted in place,
// preserving its position (spec §4.4, §4.5 Remove).
func (d *Directory) Tombstone(name string) error {
	_, idx, err := d.Lookup(name)
	if err != nil {
		return err
	}
	d.entries[idx].NameLength = nameLenTombstone
	return nil
}

// SetAttr mutates the attribute bits of the single matching live entry.
// The caller is responsible for calling Save.
func (d *Directory) SetAttr(name string, attr fatx.DirectoryAttr, state bool) error {
	_, idx, err := d.Lookup(name)
	if err != nil {
		return err
	}
	if state {
		d.entries[idx].Attribute |= attr
	} else {
		d.entries[idx].Attribute &^= attr
	}
	return nil
}

// Prune drops every non-live entry. No file operation of the driver and
// nothing in the host package calls it (spec §4.4).
func (d *Directory) Prune() {
	live := d.entries[:0]
	for _, e := range d.entries {
		if e.IsLive() {
			live = append(live, e)
		}
	}
	d.entries = live
}

// List returns every live entry in the directory (spec §6 list()).
func (d *Directory) List() []Entry {
	var out []Entry
	for _, e := range d.entries {
		if e.IsLive() {
			out = append(out, e)
		}
	}
	return out
}

// Save writes the directory back to its cluster chain (spec §4.4). It
// first blanks the full current chain extent with 0xFF so a shortened
// entry list leaves no stale bytes after the new terminator, then writes
// the encoded entries. If the encoded form no longer fits the existing
// chain, the chain is grown by allocating and linking additional clusters
// rather than failing with DirectoryFull — a documented extension over the
// source (spec §4.4, §9 "Directory growth").
func (d *Directory) Save() error {
	chain, err := d.fat.Chain(d.firstCluster)
	if err != nil {
		return err
	}

	encoded := encodeEntries(d.entries)
	need := ceilDiv(len(encoded), int(d.geo.ClusterSize))
	if need > len(chain) {
		chain, err = d.grow(chain, need-len(chain))
		if err != nil {
			return err
		}
	}

	blank := bytes.Repeat([]byte{rawNameFillByte}, int(d.geo.ClusterSize))
	for _, c := range chain {
		if err := writeCluster(d.dev, d.geo, c, blank); err != nil {
			return err
		}
	}

	off := 0
	for _, c := range chain {
		if off >= len(encoded) {
			break
		}
		end := off + int(d.geo.ClusterSize)
		if end > len(encoded) {
			end = len(encoded)
		}
		if err := writeCluster(d.dev, d.geo, c, encoded[off:end]); err != nil {
			return err
		}
		off = end
	}
	return nil
}

// grow extends chain by extra clusters, linking them to its last cluster,
// and returns the full, re-walked chain.
func (d *Directory) grow(chain []uint32, extra int) ([]uint32, error) {
	newFirst, err := d.fat.Allocate(extra)
	if err != nil {
		return nil, err
	}
	d.fat.link(chain[len(chain)-1], newFirst)
	return d.fat.Chain(d.firstCluster)
}
