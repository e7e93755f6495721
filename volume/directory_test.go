package volume

import (
	"testing"

	"github.com/rstms/fatx"
	"github.com/rstms/fatx/device"
	"github.com/stretchr/testify/require"
)

func mountedDriver(t *testing.T, partitionSize int64, sectorsPerCluster uint32) *Driver {
	t.Helper()
	dev, err := device.FormatFATX(partitionSize, sectorsPerCluster)
	require.Nil(t, err)
	d := Open(dev)
	require.Nil(t, d.MountDefault())
	return d
}

func TestDirectoryLookupCaseInsensitive(t *testing.T) {
	d := mountedDriver(t, 0x1000000, 32)
	require.Nil(t, d.WriteFile("README.TXT", []byte("hi")))

	for _, variant := range []string{"readme.txt", "ReadMe.Txt", "README.TXT"} {
		e, idx, err := d.curDir.Lookup(variant)
		require.Nil(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Equal(t, "README.TXT", e.Name())
	}
}

func TestDirectoryLookupNotFoundAndAmbiguous(t *testing.T) {
	d := mountedDriver(t, 0x1000000, 32)
	_, _, err := d.curDir.Lookup("missing")
	require.ErrorIs(t, err, fatx.ErrNotFound)

	// Hand-craft an ambiguous pair differing only by case, which Lookup
	// must still treat as a single logical name.
	e1, err := newEntry("DUP.TXT", 0, 2, 0)
	require.Nil(t, err)
	e2, err := newEntry("dup.txt", 0, 3, 0)
	require.Nil(t, err)
	d.curDir.Insert(e1)
	d.curDir.Insert(e2)
	_, _, err = d.curDir.Lookup("Dup.txt")
	require.ErrorIs(t, err, fatx.ErrAmbiguous)
}

func TestDirectoryTombstonePreservesPosition(t *testing.T) {
	d := mountedDriver(t, 0x1000000, 32)
	require.Nil(t, d.WriteFile("a.txt", []byte("a")))
	require.Nil(t, d.WriteFile("b.txt", []byte("b")))

	before := len(d.curDir.entries)
	require.Nil(t, d.Remove("a.txt"))
	require.Equal(t, before, len(d.curDir.entries))
	require.True(t, d.curDir.entries[0].IsTombstone())

	_, _, err := d.curDir.Lookup("a.txt")
	require.ErrorIs(t, err, fatx.ErrNotFound)
}

func TestDirectorySaveWritesTerminator(t *testing.T) {
	d := mountedDriver(t, 0x1000000, 32)
	require.Nil(t, d.WriteFile("one.txt", []byte("1")))
	require.Nil(t, d.WriteFile("two.txt", []byte("2")))

	raw, err := readChain(d.dev, d.geo, d.fat, d.curCluster)
	require.Nil(t, err)

	n := len(d.curDir.entries)
	termOffset := n * EntrySize
	require.Equal(t, byte(nameLenTerminator), raw[termOffset])
}

func TestDirectoryPruneDropsNonLive(t *testing.T) {
	d := mountedDriver(t, 0x1000000, 32)
	require.Nil(t, d.WriteFile("a.txt", []byte("a")))
	require.Nil(t, d.Remove("a.txt"))

	require.Equal(t, 1, len(d.curDir.entries))
	d.curDir.Prune()
	require.Equal(t, 0, len(d.curDir.entries))
}
