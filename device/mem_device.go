package device

import (
	"fmt"
	"io"

	"github.com/rstms/fatx"
)

// MemDevice is an in-memory fatx.BlockDevice, used by tests in place of a
// disk image file.
type MemDevice struct {
	buf []byte
}

var _ fatx.BlockDevice = (*MemDevice)(nil)

// NewMemDevice returns a zero-filled MemDevice of the given size.
func NewMemDevice(size int64) *MemDevice {
	return &MemDevice{buf: make([]byte, size)}
}

func (m *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.buf)) {
		return 0, fmt.Errorf("fatx: read at %d out of range (size %d)", off, len(m.buf))
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if off < 0 || end > int64(len(m.buf)) {
		return 0, fmt.Errorf("fatx: write at %d..%d out of range (size %d)", off, end, len(m.buf))
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *MemDevice) Size() (int64, error) {
	return int64(len(m.buf)), nil
}
