package volume

import (
	"testing"

	"github.com/rstms/fatx"
	"github.com/rstms/fatx/device"
	"github.com/stretchr/testify/require"
)

func testGeometry16(t *testing.T) Geometry {
	t.Helper()
	geo, err := deriveGeometry(0, 0x1000000, 32)
	require.Nil(t, err)
	require.Equal(t, uint32(16384), geo.ClusterSize)
	require.Equal(t, uint32(1024), geo.TotalClusters)
	require.Equal(t, 16, geo.FATWidth)
	require.Equal(t, int64(0x2000), geo.DataOffset)
	return geo
}

func TestDeriveGeometryFAT16(t *testing.T) {
	testGeometry16(t)
}

func TestDeriveGeometryFAT32(t *testing.T) {
	// total_clusters > 65525 forces FATX32.
	geo, err := deriveGeometry(0, 0x400000000, 128)
	require.Nil(t, err)
	require.Equal(t, 32, geo.FATWidth)
}

func TestFATRoundTrip(t *testing.T) {
	geo := testGeometry16(t)
	dev, err := device.FormatFATX(geo.PartitionSize, 32)
	require.Nil(t, err)

	fat, err := loadFAT(dev, geo)
	require.Nil(t, err)

	first, err := fat.Allocate(3)
	require.Nil(t, err)
	require.Equal(t, uint32(2), first)

	require.Nil(t, fat.Flush(dev))

	reloaded, err := loadFAT(dev, geo)
	require.Nil(t, err)
	require.Equal(t, fat.entries, reloaded.entries)
}

func TestFATAllocateContiguousDisjoint(t *testing.T) {
	geo := testGeometry16(t)
	dev, err := device.FormatFATX(geo.PartitionSize, 32)
	require.Nil(t, err)
	fat, err := loadFAT(dev, geo)
	require.Nil(t, err)

	first1, err := fat.Allocate(3)
	require.Nil(t, err)
	first2, err := fat.Allocate(2)
	require.Nil(t, err)

	chain1, err := fat.Chain(first1)
	require.Nil(t, err)
	chain2, err := fat.Chain(first2)
	require.Nil(t, err)

	seen := make(map[uint32]bool)
	for _, c := range chain1 {
		seen[c] = true
	}
	for _, c := range chain2 {
		require.False(t, seen[c], "cluster %d reused across allocations", c)
	}
}

func TestFATFreeChainZeroesEntries(t *testing.T) {
	geo := testGeometry16(t)
	dev, err := device.FormatFATX(geo.PartitionSize, 32)
	require.Nil(t, err)
	fat, err := loadFAT(dev, geo)
	require.Nil(t, err)

	first, err := fat.Allocate(3)
	require.Nil(t, err)
	chain, err := fat.Chain(first)
	require.Nil(t, err)

	require.Nil(t, fat.FreeChain(first))
	for _, c := range chain {
		require.Equal(t, uint32(0), fat.entries[c])
	}
}

func TestFATChainDetectsCycle(t *testing.T) {
	geo := testGeometry16(t)
	dev, err := device.FormatFATX(geo.PartitionSize, 32)
	require.Nil(t, err)
	fat, err := loadFAT(dev, geo)
	require.Nil(t, err)

	// Hand-craft a cycle: 2 -> 3 -> 2.
	fat.entries[2] = 3
	fat.entries[3] = 2

	_, err = fat.Chain(2)
	require.ErrorIs(t, err, fatx.ErrCorruptChain)
}

func TestFATOutOfSpace(t *testing.T) {
	// 6 total clusters: 0 and 1 reserved, 2..5 free (4 free clusters) —
	// a 5-cluster allocation must fail (spec §8 scenario S6).
	geo, err := deriveGeometry(0, 6*16384, 32)
	require.Nil(t, err)
	dev, err := device.FormatFATX(geo.PartitionSize, 32)
	require.Nil(t, err)
	fat, err := loadFAT(dev, geo)
	require.Nil(t, err)

	before := append([]uint32(nil), fat.entries...)

	_, err = fat.Allocate(5)
	require.ErrorIs(t, err, fatx.ErrOutOfSpace)
	require.Equal(t, before, fat.entries)
}
