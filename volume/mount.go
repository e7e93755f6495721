package volume

import (
	"github.com/rstms/fatx"
)

// Driver owns one mounted FATX volume: the backing device, its FAT, and the
// current-directory state (cur_dir / cur_cluster / dir_stack of spec §3,
// §9 "shared current-directory global state"). It is a single owner object
// whose methods mutate that state by exclusive reference; concurrent
// access from multiple handles is not supported (spec §5).
type Driver struct {
	dev    fatx.BlockDevice
	header Header
	geo    Geometry
	fat    *FAT

	curCluster uint32
	curDir     *Directory
	dirStack   []uint32
}

// Open returns a Driver bound to dev. The driver is not usable until one of
// MountDefault, MountIndex, or MountRange succeeds.
func Open(dev fatx.BlockDevice) *Driver {
	return &Driver{dev: dev}
}

// MountDefault mounts the whole device as a single partition (spec §4.1).
func (d *Driver) MountDefault() error {
	size, err := d.dev.Size()
	if err != nil {
		return &fatx.DeviceError{Op: "size", Err: err}
	}
	return d.MountRange(0, size)
}

// MountIndex mounts the partition at index i of the fixed Xbox partition
// table (spec §4.1).
func (d *Driver) MountIndex(i int) error {
	if i < 0 || i >= len(PartitionTable) {
		return fatx.ErrInvalidPartitionIndex
	}
	p := PartitionTable[i]
	return d.MountRange(p.Offset, p.Size)
}

// MountRange mounts the partition at an explicit (offset, size) (spec
// §4.1). A failed mount leaves any prior mount's state untouched: all new
// state is built from local values and only swapped into the Driver once
// every step below has succeeded.
func (d *Driver) MountRange(offset, size int64) error {
	header, err := decodeHeader(d.dev, offset)
	if err != nil {
		return err
	}
	geo, err := deriveGeometry(offset, size, header.SectorsPerCluster)
	if err != nil {
		return err
	}
	fat, err := loadFAT(d.dev, geo)
	if err != nil {
		return err
	}
	rootDir, err := loadDirectory(d.dev, geo, fat, header.RootDirFirstCluster)
	if err != nil {
		return err
	}

	d.header = header
	d.geo = geo
	d.fat = fat
	d.curCluster = header.RootDirFirstCluster
	d.curDir = rootDir
	d.dirStack = nil
	return nil
}

// Geometry returns the mounted volume's derived geometry.
func (d *Driver) Geometry() Geometry {
	return d.geo
}

func (d *Driver) resetRoot() error {
	dir, err := loadDirectory(d.dev, d.geo, d.fat, d.header.RootDirFirstCluster)
	if err != nil {
		return err
	}
	d.curCluster = d.header.RootDirFirstCluster
	d.curDir = dir
	d.dirStack = nil
	return nil
}
