// Package volume implements the FATX on-disk driver: partition mounting,
// the File Allocation Table, cluster I/O, the directory engine, and the
// file operations built on top of them (spec §4).
package volume

import (
	"fmt"
)

const (
	headerSize  = 16
	headerMagic = "FATX"
	sectorBytes = 512

	// fatOffset is the partition-relative byte offset of the FAT region.
	fatOffset = 0x1000

	// allocAlign is the alignment the data region is rounded up to.
	allocAlign = 0x1000

	// maxFAT16Clusters is the FATX16/FATX32 boundary (spec §3).
	maxFAT16Clusters = 65525
)

// PartitionRange is one entry of the fixed Xbox HDD partition table
// (spec §4.1).
type PartitionRange struct {
	Offset int64
	Size   int64
}

// PartitionTable is the well-known (offset, size) layout of an Xbox hard
// disk. Indices match spec §4.1 exactly.
var PartitionTable = []PartitionRange{
	{Offset: 0x00080000, Size: 0x2EE00000},
	{Offset: 0x2EE80000, Size: 0x2EE00000},
	{Offset: 0x5DC80000, Size: 0x2EE00000},
	{Offset: 0x8CA80000, Size: 0x1F400000},
	{Offset: 0xABE80000, Size: 0x132000000},
}

// Geometry is the immutable layout derived at mount time (spec §3).
// FATOffset and DataOffset are stored as device-absolute byte offsets (the
// partition offset is folded in once here, so every other component in
// this package addresses the device directly without re-adding it).
type Geometry struct {
	PartitionOffset int64
	PartitionSize   int64
	ClusterSize     uint32
	TotalClusters   uint32
	FATWidth        int
	FATOffset       int64
	DataOffset      int64
}

func fatWidthBytes(width int) int64 {
	if width == 32 {
		return 4
	}
	return 2
}

func roundUp(v, mult int64) int64 {
	if v%mult == 0 {
		return v
	}
	return (v/mult + 1) * mult
}

func deriveGeometry(partitionOffset, partitionSize int64, sectorsPerCluster uint32) (Geometry, error) {
	clusterSize := sectorsPerCluster * sectorBytes
	if clusterSize == 0 {
		return Geometry{}, fmt.Errorf("fatx: zero cluster size")
	}
	totalClusters := uint32(partitionSize / int64(clusterSize))

	width := 16
	if totalClusters > maxFAT16Clusters {
		width = 32
	}

	dataOffsetRel := roundUp(fatOffset+int64(totalClusters)*fatWidthBytes(width), allocAlign)

	return Geometry{
		PartitionOffset: partitionOffset,
		PartitionSize:   partitionSize,
		ClusterSize:     clusterSize,
		TotalClusters:   totalClusters,
		FATWidth:        width,
		FATOffset:       partitionOffset + fatOffset,
		DataOffset:      partitionOffset + dataOffsetRel,
	}, nil
}

// ClusterOffset returns the device-absolute byte offset of cluster c
// (spec §3; c == 0 is not a data cluster and has no defined offset).
func (g Geometry) ClusterOffset(c uint32) int64 {
	return g.DataOffset + int64(c-1)*int64(g.ClusterSize)
}
