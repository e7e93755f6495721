package volume

import (
	"github.com/rstms/fatx"
	"github.com/rstms/fatx/internal/errs"
)

func readCluster(dev fatx.BlockDevice, geo Geometry, c uint32) ([]byte, error) {
	buf := make([]byte, geo.ClusterSize)
	if _, err := dev.ReadAt(buf, geo.ClusterOffset(c)); err != nil {
		return nil, errs.Fatal(&fatx.DeviceError{Op: "read cluster", Err: err})
	}
	return buf, nil
}

// writeCluster writes min(len(data), cluster_size) bytes at the cluster's
// offset (spec §4.3): a short write leaves the remainder of the cluster
// untouched, it does not zero-fill.
func writeCluster(dev fatx.BlockDevice, geo Geometry, c uint32, data []byte) error {
	n := len(data)
	if uint32(n) > geo.ClusterSize {
		n = int(geo.ClusterSize)
	}
	if _, err := dev.WriteAt(data[:n], geo.ClusterOffset(c)); err != nil {
		return errs.Fatal(&fatx.DeviceError{Op: "write cluster", Err: err})
	}
	return nil
}

// readChain reads every cluster of the chain starting at start and
// concatenates them, producing a cluster-aligned length (spec §4.3).
// Callers truncate to a file's recorded size.
func readChain(dev fatx.BlockDevice, geo Geometry, fat *FAT, start uint32) ([]byte, error) {
	chain, err := fat.Chain(start)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(chain)*int(geo.ClusterSize))
	for _, c := range chain {
		cd, err := readCluster(dev, geo, c)
		if err != nil {
			return nil, err
		}
		buf = append(buf, cd...)
	}
	return buf, nil
}

// writeChain walks the existing chain from start and writes successive
// cluster-sized slices of data into it. Unlike the source this driver
// mirrors (spec §4.3, §9), it refuses to silently truncate data past the
// end of an under-length chain and returns ShortChain instead.
func writeChain(dev fatx.BlockDevice, geo Geometry, fat *FAT, start uint32, data []byte) error {
	chain, err := fat.Chain(start)
	if err != nil {
		return err
	}
	need := ceilDiv(len(data), int(geo.ClusterSize))
	if need > len(chain) {
		return fatx.ErrShortChain
	}

	off := 0
	for _, c := range chain {
		if off >= len(data) {
			break
		}
		end := off + int(geo.ClusterSize)
		if end > len(data) {
			end = len(data)
		}
		if err := writeCluster(dev, geo, c, data[off:end]); err != nil {
			return err
		}
		off = end
	}
	return nil
}

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}
