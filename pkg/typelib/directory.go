package typelib

// dirEntryOffset maps a 1-based directory index to its byte offset.
func dirEntryOffset(h *Header, index uint16) uint32 {
	return advance(h.Directory, uint64(index-1)*DirEntrySize)
}

// DirEntryAt returns the directory entry with the given 1-based index.
// It is meant for buffers that already passed Validate; on anything else
// it still never reads out of bounds but the result may be meaningless.
func DirEntryAt(data []byte, index uint16) (DirEntry, error) {
	h, ok := decodeHeader(data)
	if !ok {
		return DirEntry{}, tooShort(0, "header")
	}
	if index == 0 || index > h.NEntries {
		return DirEntry{}, fail(KindInvalidDirectory, 0, "directory index %d out of range [1, %d]", index, h.NEntries)
	}
	return parseDirEntry(data, dirEntryOffset(&h, index))
}

// Entry is a directory entry with its strings resolved.
type Entry struct {
	Index     uint16
	Name      string
	BlobType  BlobType
	Local     bool
	Offset    uint32 // blob offset, local entries only
	Namespace string // defining namespace, imported entries only
}
