package volume

import (
	"encoding/binary"

	"github.com/rstms/fatx"
	"github.com/rstms/fatx/internal/errs"
)

// Header is the 16-byte FATX partition header (spec §3).
type Header struct {
	VolumeID            uint32
	SectorsPerCluster   uint32
	RootDirFirstCluster uint32
}

func decodeHeader(dev fatx.BlockDevice, partitionOffset int64) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := dev.ReadAt(buf, partitionOffset); err != nil {
		return Header{}, errs.Fatal(&fatx.DeviceError{Op: "read header", Err: err})
	}
	if string(buf[0:4]) != headerMagic {
		return Header{}, fatx.ErrInvalidSignature
	}
	return Header{
		VolumeID:            binary.LittleEndian.Uint32(buf[4:8]),
		SectorsPerCluster:   binary.LittleEndian.Uint32(buf[8:12]),
		RootDirFirstCluster: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}
