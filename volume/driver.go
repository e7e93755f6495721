package volume

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/rstms/fatx"
)

// ChangeDirectory walks a slash-delimited path from the current directory
// (spec §4.4 "Current-directory state transitions"). A leading "/" resets
// to root first; "." is a no-op; ".." pops the directory stack, resetting
// to root if it is already empty.
func (d *Driver) ChangeDirectory(path string) error {
	if strings.HasPrefix(path, "/") {
		if err := d.resetRoot(); err != nil {
			return err
		}
		path = strings.TrimPrefix(path, "/")
	}

	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "":
			continue
		case ".":
			continue
		case "..":
			if len(d.dirStack) == 0 {
				if err := d.resetRoot(); err != nil {
					return err
				}
				continue
			}
			parent := d.dirStack[len(d.dirStack)-1]
			dir, err := loadDirectory(d.dev, d.geo, d.fat, parent)
			if err != nil {
				return err
			}
			d.dirStack = d.dirStack[:len(d.dirStack)-1]
			d.curCluster = parent
			d.curDir = dir
		default:
			entry, _, err := d.curDir.Lookup(seg)
			if err != nil {
				return err
			}
			if !entry.IsDirectory() {
				return fmt.Errorf("fatx: %s: %w", seg, fatx.ErrNotFound)
			}
			dir, err := loadDirectory(d.dev, d.geo, d.fat, entry.FirstCluster)
			if err != nil {
				return err
			}
			d.dirStack = append(d.dirStack, d.curCluster)
			d.curCluster = entry.FirstCluster
			d.curDir = dir
		}
	}
	return nil
}

// FileExists reports whether name resolves to a live entry in the current
// directory. Per spec §7, only NotFound is swallowed to false; any other
// lookup error (e.g. Ambiguous) propagates.
func (d *Driver) FileExists(name string) (bool, error) {
	_, _, err := d.curDir.Lookup(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fatx.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Stat returns the entry for name in the current directory (spec §6).
func (d *Driver) Stat(name string) (Entry, error) {
	e, _, err := d.curDir.Lookup(name)
	return e, err
}

// List returns every live entry of the current directory (spec §6).
func (d *Driver) List() []Entry {
	return d.curDir.List()
}

// ReadFile returns the full contents of a file in the current directory
// (spec §4.5).
func (d *Driver) ReadFile(name string) ([]byte, error) {
	e, _, err := d.curDir.Lookup(name)
	if err != nil {
		return nil, err
	}
	if e.IsDirectory() {
		return nil, fmt.Errorf("fatx: %s is a directory", name)
	}
	if e.FileSize == 0 {
		return []byte{}, nil
	}
	raw, err := readChain(d.dev, d.geo, d.fat, e.FirstCluster)
	if err != nil {
		return nil, err
	}
	if uint32(len(raw)) < e.FileSize {
		return nil, fatx.ErrCorruptChain
	}
	return raw[:e.FileSize], nil
}

// WriteFile creates a new file in the current directory (spec §4.5). It
// fails AlreadyExists if name is already present; there is no overwrite or
// append path.
func (d *Driver) WriteFile(name string, data []byte) error {
	if _, _, err := d.curDir.Lookup(name); err == nil {
		return fatx.ErrAlreadyExists
	}

	nClusters := ceilDiv(len(data), int(d.geo.ClusterSize))
	if nClusters < 1 {
		nClusters = 1
	}
	first, err := d.fat.Allocate(nClusters)
	if err != nil {
		return err
	}
	if err := writeChain(d.dev, d.geo, d.fat, first, data); err != nil {
		return err
	}

	entry, err := newEntry(name, 0, first, uint32(len(data)))
	if err != nil {
		return err
	}
	d.curDir.Insert(entry)

	if err := d.curDir.Save(); err != nil {
		return err
	}
	return d.fat.Flush(d.dev)
}

// Remove tombstones name and frees its cluster chain (spec §4.5).
func (d *Driver) Remove(name string) error {
	e, _, err := d.curDir.Lookup(name)
	if err != nil {
		return err
	}
	if err := d.curDir.Tombstone(name); err != nil {
		return err
	}
	if err := d.fat.FreeChain(e.FirstCluster); err != nil {
		return err
	}
	if err := d.curDir.Save(); err != nil {
		return err
	}
	return d.fat.Flush(d.dev)
}

// MakeDirectory creates a subdirectory in the current directory (spec
// §4.5). It is idempotent if name already names a directory, and fails
// AlreadyExists if it names a file.
func (d *Driver) MakeDirectory(name string) error {
	e, _, err := d.curDir.Lookup(name)
	if err == nil {
		if e.IsDirectory() {
			return nil
		}
		return fatx.ErrAlreadyExists
	}
	if !errors.Is(err, fatx.ErrNotFound) {
		return err
	}

	first, err := d.fat.Allocate(1)
	if err != nil {
		return err
	}
	blank := bytes.Repeat([]byte{rawNameFillByte}, int(d.geo.ClusterSize))
	if err := writeCluster(d.dev, d.geo, first, blank); err != nil {
		return err
	}

	entry, err := newEntry(name, fatx.AttrDirectory, first, 0)
	if err != nil {
		return err
	}
	d.curDir.Insert(entry)

	if err := d.curDir.Save(); err != nil {
		return err
	}
	return d.fat.Flush(d.dev)
}

// SetAttr sets or clears an attribute bit on name in the current directory.
func (d *Driver) SetAttr(name string, attr fatx.DirectoryAttr, state bool) error {
	if err := d.curDir.SetAttr(name, attr, state); err != nil {
		return err
	}
	return d.curDir.Save()
}

// Flush saves the current directory and writes the FAT back to disk
// (spec §6).
func (d *Driver) Flush() error {
	if err := d.curDir.Save(); err != nil {
		return err
	}
	return d.fat.Flush(d.dev)
}
