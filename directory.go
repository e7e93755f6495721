package fatx

// DirectoryAttr is the attribute byte of a FATX directory entry (spec §3).
// FATX carries no long-name variant, so unlike the wider FAT family there
// is no AttrLongName combination and no AttrVolumeId bit.
type DirectoryAttr uint8

const (
	AttrReadOnly  DirectoryAttr = 0x01
	AttrHidden    DirectoryAttr = 0x02
	AttrSystem    DirectoryAttr = 0x04
	AttrDirectory DirectoryAttr = 0x10
	AttrArchive   DirectoryAttr = 0x20
)
