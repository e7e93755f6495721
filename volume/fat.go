package volume

import (
	"encoding/binary"

	"github.com/rstms/fatx"
	"github.com/rstms/fatx/internal/errs"
)

// FAT is the in-memory File Allocation Table: cluster index i holds either
// 0 (free), a next-cluster pointer, or an end-of-chain sentinel (spec §3,
// §4.2). Entries are always widened to uint32 in memory regardless of the
// on-disk width, following the teacher's mitchellh-go-fs FAT's approach of
// keeping one in-memory representation and packing per-width only on
// Flush.
type FAT struct {
	geo     Geometry
	entries []uint32
}

func loadFAT(dev fatx.BlockDevice, geo Geometry) (*FAT, error) {
	width := fatWidthBytes(geo.FATWidth)
	buf := make([]byte, int64(geo.TotalClusters)*width)
	if _, err := dev.ReadAt(buf, geo.FATOffset); err != nil {
		return nil, errs.Fatal(&fatx.DeviceError{Op: "read fat", Err: err})
	}

	entries := make([]uint32, geo.TotalClusters)
	for i := range entries {
		if geo.FATWidth == 32 {
			entries[i] = binary.LittleEndian.Uint32(buf[int64(i)*4:])
		} else {
			entries[i] = uint32(binary.LittleEndian.Uint16(buf[int64(i)*2:]))
		}
	}

	return &FAT{geo: geo, entries: entries}, nil
}

// Flush writes the entire FAT back to its on-disk region, packing each
// entry to the mount's FAT width (spec §4.2).
func (f *FAT) Flush(dev fatx.BlockDevice) error {
	width := fatWidthBytes(f.geo.FATWidth)
	buf := make([]byte, int64(len(f.entries))*width)
	for i, v := range f.entries {
		if f.geo.FATWidth == 32 {
			binary.LittleEndian.PutUint32(buf[int64(i)*4:], v)
		} else {
			binary.LittleEndian.PutUint16(buf[int64(i)*2:], uint16(v))
		}
	}
	if _, err := dev.WriteAt(buf, f.geo.FATOffset); err != nil {
		return errs.Fatal(&fatx.DeviceError{Op: "write fat", Err: err})
	}
	return nil
}

func (f *FAT) endSentinel() uint32 {
	if f.geo.FATWidth == 32 {
		return 0xFFFFFFFF
	}
	return 0xFFFF
}

// IsEnd reports whether v terminates a chain (spec §3, GLOSSARY).
func (f *FAT) IsEnd(v uint32) bool {
	if f.geo.FATWidth == 32 {
		return v >= 0xFFFFFFF0
	}
	return v >= 0xFFF0
}

// Next returns the raw FAT entry for cluster c.
func (f *FAT) Next(c uint32) (uint32, error) {
	if c == 0 || c >= uint32(len(f.entries)) {
		return 0, fatx.ErrCorruptChain
	}
	return f.entries[c], nil
}

// Chain walks the cluster chain starting at start, detecting cycles and
// out-of-range links as CorruptChain (spec §4.2).
func (f *FAT) Chain(start uint32) ([]uint32, error) {
	var chain []uint32
	if start == 0 {
		return chain, nil
	}

	visited := make(map[uint32]bool, 16)
	c := start
	for {
		if c == 0 || c >= uint32(len(f.entries)) || visited[c] {
			return nil, fatx.ErrCorruptChain
		}
		visited[c] = true
		chain = append(chain, c)
		if f.IsEnd(f.entries[c]) {
			return chain, nil
		}
		c = f.entries[c]
	}
}

// Allocate performs a first-fit search for a contiguous run of n free
// clusters starting at index 2 (spec §4.2). On success it links the run
// in place and returns its first cluster.
func (f *FAT) Allocate(n int) (uint32, error) {
	if n < 1 {
		n = 1
	}

	run := 0
	var start uint32
	for c := uint32(2); c < uint32(len(f.entries)); c++ {
		if f.entries[c] != 0 {
			run = 0
			continue
		}
		if run == 0 {
			start = c
		}
		run++
		if run == n {
			for i := 0; i < n-1; i++ {
				f.entries[start+uint32(i)] = start + uint32(i) + 1
			}
			f.entries[start+uint32(n-1)] = f.endSentinel()
			return start, nil
		}
	}
	return 0, fatx.ErrOutOfSpace
}

// FreeChain walks the chain starting at start and zeroes every visited
// entry (spec §4.2). A start of 0 or an already-terminal value is a no-op;
// a cycle is bounded by the total cluster count rather than surfaced as an
// error, since freeing is expected to tolerate a FAT a prior operation has
// already partially repaired.
func (f *FAT) FreeChain(start uint32) error {
	c := start
	for i := 0; i < len(f.entries) && c != 0 && c < uint32(len(f.entries)); i++ {
		next := f.entries[c]
		f.entries[c] = 0
		if f.IsEnd(next) {
			break
		}
		c = next
	}
	return nil
}

// link sets the raw FAT entry for cluster c to next, used by Directory.grow
// to extend a directory's cluster chain.
func (f *FAT) link(c, next uint32) {
	f.entries[c] = next
}
