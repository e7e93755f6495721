// Package device provides BlockDevice adapters over an *os.File (for real
// disk images) and over memory (for tests), analogues of the teacher's
// ffs.FileDisk.
package device

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/rstms/fatx"
)

// FileDevice implements fatx.BlockDevice over an *os.File.
type FileDevice struct {
	file *os.File
	id   uuid.UUID
}

var _ fatx.BlockDevice = (*FileDevice)(nil)

// OpenFile opens path for read-write access as a FileDevice.
func OpenFile(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	d := &FileDevice{file: f, id: uuid.New()}
	log.Printf("fatx: opened device %s (session %s)\n", path, d.id)
	return d, nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	return d.file.ReadAt(p, off)
}

func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) {
	return d.file.WriteAt(p, off)
}

func (d *FileDevice) Size() (int64, error) {
	info, err := d.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close releases the underlying file handle.
func (d *FileDevice) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
