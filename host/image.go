// Package host provides host-filesystem convenience operations layered on
// top of a mounted fatx/volume.Driver — the split spec §6 asks for so the
// driver core never touches host paths directly. It is the analogue of
// the teacher's image package (image/image.go), adapted from wrapping a
// multi-format fat.FileSystem to wrapping a single fatx/volume.Driver.
package host

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rstms/fatx"
	"github.com/rstms/fatx/device"
	"github.com/rstms/fatx/internal/errs"
	"github.com/rstms/fatx/volume"
)

// FileRecord describes one entry discovered while walking an image,
// analogue of the teacher's image.FileRecord.
type FileRecord struct {
	Name     string
	Dir      bool
	Hidden   bool
	System   bool
	ReadOnly bool
}

// Image is an open FATX disk image together with its mounted driver.
type Image struct {
	Filename string
	file     *device.FileDevice
	driver   *volume.Driver
}

// OpenImage opens an existing image file and mounts its default partition.
func OpenImage(filename string) (*Image, error) {
	dev, err := device.OpenFile(filename)
	if err != nil {
		return nil, errs.Fatal(err)
	}
	driver := volume.Open(dev)
	if err := driver.MountDefault(); err != nil {
		return nil, errs.Fatal(err)
	}
	return &Image{Filename: filename, file: dev, driver: driver}, nil
}

// Close releases the underlying device.
func (i *Image) Close() error {
	if i.file == nil {
		return nil
	}
	err := i.file.Close()
	i.file = nil
	if err != nil {
		return errs.Fatal(err)
	}
	return nil
}

// cdAbs changes to the directory named by an absolute-from-root host path
// (which may be empty, meaning root itself).
func (i *Image) cdAbs(dir string) error {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return i.driver.ChangeDirectory("/")
	}
	return i.driver.ChangeDirectory("/" + dir)
}

// AddFile reads srcPathname from the host and writes it into the image at
// dstPathname.
func (i *Image) AddFile(dstPathname, srcPathname string) error {
	data, err := os.ReadFile(srcPathname)
	if err != nil {
		return errs.Fatal(err)
	}
	dstDir, dstName := filepath.Split(dstPathname)
	if err := i.cdAbs(dstDir); err != nil {
		return errs.Fatal(err)
	}
	if err := i.driver.WriteFile(dstName, data); err != nil {
		return errs.Fatal(err)
	}
	return nil
}

// ExtractFile reads srcPathname from the image and writes it to
// dstPathname on the host.
func (i *Image) ExtractFile(srcPathname, dstPathname string) error {
	srcDir, srcName := filepath.Split(srcPathname)
	if err := i.cdAbs(srcDir); err != nil {
		return errs.Fatal(err)
	}
	data, err := i.driver.ReadFile(srcName)
	if err != nil {
		return errs.Fatal(err)
	}
	if err := os.WriteFile(dstPathname, data, 0600); err != nil {
		return errs.Fatal(err)
	}
	return nil
}

// Mkdir creates a directory in the image at pathname, creating it
// idempotently if it already exists as a directory (spec §4.5).
func (i *Image) Mkdir(pathname string) error {
	dir, name := filepath.Split(pathname)
	if err := i.cdAbs(dir); err != nil {
		return errs.Fatal(err)
	}
	if err := i.driver.MakeDirectory(name); err != nil {
		return errs.Fatal(err)
	}
	return nil
}

// IsDir reports whether pathname names a directory in the image.
func (i *Image) IsDir(pathname string) (bool, error) {
	if strings.Trim(pathname, "/") == "" {
		return true, nil
	}
	dir, name := filepath.Split(pathname)
	if err := i.cdAbs(dir); err != nil {
		return false, errs.Fatal(err)
	}
	entry, err := i.driver.Stat(name)
	if err != nil {
		if errors.Is(err, fatx.ErrNotFound) {
			return false, nil
		}
		return false, errs.Fatal(err)
	}
	return entry.IsDirectory(), nil
}

// SetAttr sets or clears an attribute bit on the entry at pathname.
func (i *Image) SetAttr(pathname string, attr fatx.DirectoryAttr, state bool) error {
	dir, name := filepath.Split(pathname)
	if err := i.cdAbs(dir); err != nil {
		return errs.Fatal(err)
	}
	if err := i.driver.SetAttr(name, attr, state); err != nil {
		return errs.Fatal(err)
	}
	return nil
}

// Import writes every file and directory under hostDir into the image,
// rooted at "/", analogue of the teacher's image.Image.Import.
func (i *Image) Import(hostDir string) error {
	return filepath.WalkDir(hostDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.Fatal(err)
		}
		if path == hostDir {
			return nil
		}
		rel, err := filepath.Rel(hostDir, path)
		if err != nil {
			return errs.Fatal(err)
		}
		log.Printf("fatx: import %s\n", rel)
		if d.IsDir() {
			return i.Mkdir("/" + rel)
		}
		return i.AddFile("/"+rel, path)
	})
}

// ScanFiles walks the whole image from root and returns a flat record
// list, analogue of the teacher's image.Image.ScanFiles / walk.
func (i *Image) ScanFiles() ([]FileRecord, error) {
	if err := i.driver.ChangeDirectory("/"); err != nil {
		return nil, errs.Fatal(err)
	}
	return walk("/", i.driver)
}

func walk(path string, d *volume.Driver) ([]FileRecord, error) {
	var records []FileRecord
	for _, e := range d.List() {
		name := e.Name()
		full := filepath.Join(path, name)
		record := FileRecord{
			Name:     full,
			Dir:      e.Attribute&fatx.AttrDirectory != 0,
			Hidden:   e.Attribute&fatx.AttrHidden != 0,
			System:   e.Attribute&fatx.AttrSystem != 0,
			ReadOnly: e.Attribute&fatx.AttrReadOnly != 0,
		}
		records = append(records, record)

		if record.Dir {
			if err := d.ChangeDirectory(name); err != nil {
				return nil, errs.Fatal(err)
			}
			sub, err := walk(full, d)
			if err != nil {
				return nil, err
			}
			records = append(records, sub...)
			if err := d.ChangeDirectory(".."); err != nil {
				return nil, errs.Fatal(err)
			}
		}
	}
	return records, nil
}
