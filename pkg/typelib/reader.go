package typelib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/sys/unix"
)

// MaxFileSize caps what the loader will read. Offsets are 32 bits wide, so
// nothing larger can be a well-formed typelib.
const MaxFileSize = 1<<32 - 1

// ErrFileTooLarge is returned by the loader for inputs over its size cap.
var ErrFileTooLarge = errors.New("typelib: file too large")

// File is a validated typelib. Data is read-only; when the file was mapped
// it stays valid until Close.
type File struct {
	Data   []byte
	Header Header

	mmapped bool
}

// Open maps a typelib read-only and validates it. If mmap is unavailable
// it falls back to ReadAt-based loading. Paths ending in .xz are
// decompressed into memory first. The returned file must be closed to
// release any mapping.
func Open(path string) (*File, error) {
	return OpenLimit(path, MaxFileSize)
}

// OpenLimit is Open with a caller-chosen size cap. For .xz inputs the cap
// applies to the decompressed size.
func OpenLimit(path string, limit int64) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if strings.HasSuffix(path, ".xz") {
		data, err := readXZ(f, limit)
		if err != nil {
			return nil, fmt.Errorf("typelib: decompress %s: %w", path, err)
		}
		return load(data, false)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > limit || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, path, size64)
	}
	size := int(size64)
	if size < HeaderSize {
		return nil, tooShort(0, "header")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		tl, loadErr := load(data, true)
		if loadErr != nil {
			_ = unix.Munmap(data)
			return nil, loadErr
		}
		return tl, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, fmt.Errorf("typelib: read %s: %w", path, err)
	}
	return load(data, false)
}

// OpenReaderAt loads and validates a typelib from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 {
		return nil, tooShort(0, "header")
	}
	if size > MaxFileSize || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return load(data, false)
}

// Load validates data and wraps it. The slice is retained, not copied.
func Load(data []byte) (*File, error) {
	return load(data, false)
}

func load(data []byte, mmapped bool) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	h, _ := decodeHeader(data)
	return &File{Data: data, Header: h, mmapped: mmapped}, nil
}

// Close releases the mapping, if any.
func (f *File) Close() error {
	if f == nil || !f.mmapped || f.Data == nil {
		return nil
	}
	err := unix.Munmap(f.Data)
	f.Data = nil
	f.mmapped = false
	return err
}

// Namespace returns the name of the namespace the typelib describes.
func (f *File) Namespace() string {
	name, _ := NameAt(f.Data, f.Header.Namespace)
	return name
}

// DirEntry returns the raw entry at a 1-based index.
func (f *File) DirEntry(index uint16) (DirEntry, error) {
	return DirEntryAt(f.Data, index)
}

// Entry returns the entry at a 1-based index with its strings resolved.
func (f *File) Entry(index uint16) (Entry, error) {
	raw, err := f.DirEntry(index)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Index:    index,
		BlobType: raw.BlobType,
		Local:    raw.Local(),
	}
	e.Name, _ = NameAt(f.Data, raw.Name)
	if e.Local {
		e.Offset = raw.Offset
	} else {
		e.Namespace, _ = NameAt(f.Data, raw.Offset)
	}
	return e, nil
}

// Entries returns every directory entry in index order.
func (f *File) Entries() []Entry {
	out := make([]Entry, 0, f.Header.NEntries)
	for i := uint32(1); i <= uint32(f.Header.NEntries); i++ {
		e, err := f.Entry(uint16(i))
		if err != nil {
			break
		}
		out = append(out, e)
	}
	return out
}

// Lookup finds an entry by name.
func (f *File) Lookup(name string) (Entry, bool) {
	for _, e := range f.Entries() {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// KindCounts counts local entries by blob type.
func (f *File) KindCounts() map[BlobType]int {
	counts := make(map[BlobType]int)
	for _, e := range f.Entries() {
		if e.Local {
			counts[e.BlobType]++
		}
	}
	return counts
}

func readXZ(r io.Reader, limit int64) ([]byte, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(xr, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w: more than %d bytes decompressed", ErrFileTooLarge, limit)
	}
	return buf.Bytes(), nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
