package device

import (
	"bytes"
	"encoding/binary"
)

// FormatFATX formats a fresh MemDevice of partitionSize bytes with a FATX
// header, an empty FAT (root cluster marked end-of-chain), and a blank
// root directory cluster (spec §3, §8 "freshly formatted FATX image").
// It is the test-only equivalent of mounting a console-written disk.
func FormatFATX(partitionSize int64, sectorsPerCluster uint32) (*MemDevice, error) {
	dev := NewMemDevice(partitionSize)

	header := make([]byte, 16)
	copy(header[0:4], []byte("FATX"))
	binary.LittleEndian.PutUint32(header[8:12], sectorsPerCluster)
	binary.LittleEndian.PutUint32(header[12:16], 1) // root dir first cluster
	if _, err := dev.WriteAt(header, 0); err != nil {
		return nil, err
	}

	clusterSize := int64(sectorsPerCluster) * 512
	totalClusters := partitionSize / clusterSize

	width := int64(2)
	if totalClusters > 65525 {
		width = 4
	}
	fatBytes := make([]byte, totalClusters*width)
	if width == 2 {
		binary.LittleEndian.PutUint16(fatBytes[1*2:], 0xFFFF)
	} else {
		binary.LittleEndian.PutUint32(fatBytes[1*4:], 0xFFFFFFFF)
	}
	if _, err := dev.WriteAt(fatBytes, 0x1000); err != nil {
		return nil, err
	}

	dataOffsetRel := int64(0x1000) + totalClusters*width
	if dataOffsetRel%0x1000 != 0 {
		dataOffsetRel = (dataOffsetRel/0x1000 + 1) * 0x1000
	}
	blank := bytes.Repeat([]byte{0xFF}, int(clusterSize))
	if _, err := dev.WriteAt(blank, dataOffsetRel); err != nil {
		return nil, err
	}

	return dev, nil
}
