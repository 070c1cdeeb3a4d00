// Package typelibtest builds typelib buffers for tests, both well-formed
// and deliberately broken ones.
package typelibtest

import (
	"encoding/binary"

	"github.com/samcharles93/typelib/pkg/typelib"
)

// Builder lays out a typelib in memory. Records are appended on 4-byte
// boundaries in call order, so members written back to back after their
// parent record end up contiguous, as the format requires. The header and
// directory are written by Finish.
type Builder struct {
	buf     []byte
	names   map[string]uint32
	entries []typelib.DirEntry
	tweaks  []func(*typelib.Header)
	nAnnot  uint32
}

// New starts a typelib for namespace. The namespace string directly
// follows the header.
func New(namespace string) *Builder {
	b := &Builder{
		buf:   make([]byte, typelib.HeaderSize),
		names: make(map[string]uint32),
	}
	b.Name(namespace)
	return b
}

// Len is the current size of the buffer.
func (b *Builder) Len() uint32 { return uint32(len(b.buf)) }

func (b *Builder) align() {
	for len(b.buf)%typelib.Alignment != 0 {
		b.buf = append(b.buf, 0)
	}
}

// Name writes s as a zero-terminated string and returns its offset.
// Repeated names share storage.
func (b *Builder) Name(s string) uint32 {
	if off, ok := b.names[s]; ok {
		return off
	}
	off := b.Raw([]byte(s + "\x00"))
	b.names[s] = off
	return off
}

// Raw appends p at the next aligned offset.
func (b *Builder) Raw(p []byte) uint32 {
	b.align()
	off := b.Len()
	b.buf = append(b.buf, p...)
	return off
}

// Record appends one of the typelib record structs in its on-disk layout.
func (b *Builder) Record(v any) uint32 {
	b.align()
	off := b.Len()
	out, err := binary.Append(b.buf, binary.LittleEndian, v)
	if err != nil {
		panic(err)
	}
	b.buf = out
	return off
}

// Indices appends a list of 16-bit directory indices padded to an even
// count, the layout used for object interfaces and interface
// prerequisites.
func (b *Builder) Indices(idx ...uint16) uint32 {
	b.align()
	off := b.Len()
	for _, i := range idx {
		b.buf = binary.LittleEndian.AppendUint16(b.buf, i)
	}
	if len(idx)%2 != 0 {
		b.buf = append(b.buf, 0, 0)
	}
	return off
}

// PutU16 overwrites two bytes at off.
func (b *Builder) PutU16(off uint32, v uint16) {
	binary.LittleEndian.PutUint16(b.buf[off:], v)
}

// PutU32 overwrites four bytes at off.
func (b *Builder) PutU32(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(b.buf[off:], v)
}

// Local adds a local directory entry and returns its 1-based index. The
// blob offset is filled in later with Bind.
func (b *Builder) Local(name string, kind typelib.BlobType) uint16 {
	b.entries = append(b.entries, typelib.DirEntry{
		BlobType: kind,
		Flags:    1,
		Name:     b.Name(name),
	})
	return uint16(len(b.entries))
}

// Import adds an entry defined by another namespace.
func (b *Builder) Import(name, namespace string, kind typelib.BlobType) uint16 {
	b.entries = append(b.entries, typelib.DirEntry{
		BlobType: kind,
		Name:     b.Name(name),
		Offset:   b.Name(namespace),
	})
	return uint16(len(b.entries))
}

// Bind points a local entry at its blob.
func (b *Builder) Bind(index uint16, off uint32) {
	b.entries[index-1].Offset = off
}

// Entry gives direct access to a directory entry before Finish.
func (b *Builder) Entry(index uint16) *typelib.DirEntry {
	return &b.entries[index-1]
}

// Annotations reserves an annotation table of n records.
func (b *Builder) Annotations(n uint32) {
	b.nAnnot = n
}

// Tweak registers a header edit applied by Finish after the computed
// fields are set.
func (b *Builder) Tweak(fn func(*typelib.Header)) {
	b.tweaks = append(b.tweaks, fn)
}

// Finish writes the directory, the optional annotation table and the
// header, and returns the buffer.
func (b *Builder) Finish() []byte {
	h := typelib.DefaultHeader()
	h.Namespace = typelib.HeaderSize

	var nLocal uint16
	for _, e := range b.entries {
		if e.Local() {
			nLocal++
		}
	}
	b.align()
	h.Directory = b.Len()
	if len(b.entries) > 0 {
		h.Directory = b.Record(b.entries)
	}
	h.NEntries = uint16(len(b.entries))
	h.NLocalEntries = nLocal

	if b.nAnnot > 0 {
		h.NAnnotations = b.nAnnot
		h.Annotations = b.Raw(make([]byte, b.nAnnot*typelib.AnnotationSize))
	}

	b.align()
	h.Size = b.Len()
	for _, fn := range b.tweaks {
		fn(&h)
	}
	typelib.EncodeHeader(b.buf, h)
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// Signature appends a signature followed by its arguments.
func (b *Builder) Signature(ret typelib.SimpleType, args ...typelib.Arg) uint32 {
	off := b.Record(typelib.Signature{ReturnType: ret, NArguments: uint16(len(args))})
	for _, a := range args {
		b.Record(a)
	}
	return off
}

// Function appends a function record. Names and the signature must have
// been written already when the function is a member of another blob.
func (b *Builder) Function(name, symbol uint32, flags uint16, sig uint32) uint32 {
	return b.Record(typelib.Function{
		BlobType:  typelib.BlobFunction,
		Flags:     flags,
		Name:      name,
		Symbol:    symbol,
		Signature: sig,
	})
}

// Registered fills the common head of struct, boxed, enum, flags, object,
// interface and union blobs. Empty type names leave the offsets zero.
func (b *Builder) Registered(kind typelib.BlobType, flags uint16, name, gtypeName, gtypeInit string) typelib.RegisteredType {
	r := typelib.RegisteredType{BlobType: kind, Flags: flags, Name: b.Name(name)}
	if gtypeName != "" {
		r.GTypeName = b.Name(gtypeName)
	}
	if gtypeInit != "" {
		r.GTypeInit = b.Name(gtypeInit)
	}
	return r
}
