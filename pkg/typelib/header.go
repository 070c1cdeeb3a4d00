package typelib

// Header is the fixed record at the start of every typelib. The per-kind
// blob sizes are a self-check written by the compiler: a reader refuses
// files whose record layout differs from its own.
type Header struct {
	Magic         [16]byte
	Major         uint8
	Minor         uint8
	Reserved      uint16
	NEntries      uint16
	NLocalEntries uint16
	Directory     uint32
	NAnnotations  uint32
	Annotations   uint32
	Size          uint32
	Namespace     uint32

	EntryBlobSize       uint16
	FunctionBlobSize    uint16
	CallbackBlobSize    uint16
	SignalBlobSize      uint16
	VFuncBlobSize       uint16
	ArgBlobSize         uint16
	PropertyBlobSize    uint16
	FieldBlobSize       uint16
	ValueBlobSize       uint16
	AnnotationBlobSize  uint16
	ConstantBlobSize    uint16
	ErrorDomainBlobSize uint16
	SignatureBlobSize   uint16
	EnumBlobSize        uint16
	StructBlobSize      uint16
	ObjectBlobSize      uint16
	InterfaceBlobSize   uint16
	UnionBlobSize       uint16

	Padding [4]byte
}

// blobSizes pairs every declared size with the constant it must equal.
func (h *Header) blobSizes() []struct {
	name string
	got  uint16
	want uint16
} {
	return []struct {
		name string
		got  uint16
		want uint16
	}{
		{"entry", h.EntryBlobSize, DirEntrySize},
		{"function", h.FunctionBlobSize, FunctionSize},
		{"callback", h.CallbackBlobSize, CallbackSize},
		{"signal", h.SignalBlobSize, SignalSize},
		{"vfunc", h.VFuncBlobSize, VFuncSize},
		{"arg", h.ArgBlobSize, ArgSize},
		{"property", h.PropertyBlobSize, PropertySize},
		{"field", h.FieldBlobSize, FieldSize},
		{"value", h.ValueBlobSize, ValueSize},
		{"annotation", h.AnnotationBlobSize, AnnotationSize},
		{"constant", h.ConstantBlobSize, ConstantSize},
		{"error domain", h.ErrorDomainBlobSize, ErrorDomainSize},
		{"signature", h.SignatureBlobSize, SignatureSize},
		{"enum", h.EnumBlobSize, EnumSize},
		{"struct", h.StructBlobSize, StructSize},
		{"object", h.ObjectBlobSize, ObjectSize},
		{"interface", h.InterfaceBlobSize, InterfaceSize},
		{"union", h.UnionBlobSize, UnionSize},
	}
}

// Compatible reports whether the header carries the supported version.
func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor && h.Minor == CurrentMinor
}

// decodeHeader reads the header without checking any of its fields.
func decodeHeader(b []byte) (Header, bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	var h Header
	copy(h.Magic[:], b[0:16])
	h.Major = b[16]
	h.Minor = b[17]
	h.Reserved = le.Uint16(b[18:20])
	h.NEntries = le.Uint16(b[20:22])
	h.NLocalEntries = le.Uint16(b[22:24])
	h.Directory = le.Uint32(b[24:28])
	h.NAnnotations = le.Uint32(b[28:32])
	h.Annotations = le.Uint32(b[32:36])
	h.Size = le.Uint32(b[36:40])
	h.Namespace = le.Uint32(b[40:44])

	sizes := []*uint16{
		&h.EntryBlobSize, &h.FunctionBlobSize, &h.CallbackBlobSize,
		&h.SignalBlobSize, &h.VFuncBlobSize, &h.ArgBlobSize,
		&h.PropertyBlobSize, &h.FieldBlobSize, &h.ValueBlobSize,
		&h.AnnotationBlobSize, &h.ConstantBlobSize, &h.ErrorDomainBlobSize,
		&h.SignatureBlobSize, &h.EnumBlobSize, &h.StructBlobSize,
		&h.ObjectBlobSize, &h.InterfaceBlobSize, &h.UnionBlobSize,
	}
	for i, p := range sizes {
		at := 44 + 2*i
		*p = le.Uint16(b[at : at+2])
	}
	copy(h.Padding[:], b[80:84])
	return h, true
}

// ReadHeader decodes the header at the start of data without validating
// anything beyond its length.
func ReadHeader(data []byte) (Header, error) {
	h, ok := decodeHeader(data)
	if !ok {
		return Header{}, tooShort(0, "header")
	}
	return h, nil
}

// EncodeHeader writes h into b in the on-disk layout. It is the inverse of
// the decoder used by Validate and exists for tools that produce typelibs.
func EncodeHeader(b []byte, h Header) bool {
	if len(b) < HeaderSize {
		return false
	}
	copy(b[0:16], h.Magic[:])
	b[16] = h.Major
	b[17] = h.Minor
	le.PutUint16(b[18:20], h.Reserved)
	le.PutUint16(b[20:22], h.NEntries)
	le.PutUint16(b[22:24], h.NLocalEntries)
	le.PutUint32(b[24:28], h.Directory)
	le.PutUint32(b[28:32], h.NAnnotations)
	le.PutUint32(b[32:36], h.Annotations)
	le.PutUint32(b[36:40], h.Size)
	le.PutUint32(b[40:44], h.Namespace)
	for i, s := range h.blobSizes() {
		at := 44 + 2*i
		le.PutUint16(b[at:at+2], s.got)
	}
	copy(b[80:84], h.Padding[:])
	return true
}

// DefaultHeader returns a header with the magic, version and every blob
// size already filled in.
func DefaultHeader() Header {
	h := Header{Major: CurrentMajor, Minor: CurrentMinor}
	copy(h.Magic[:], Magic)
	h.EntryBlobSize = DirEntrySize
	h.FunctionBlobSize = FunctionSize
	h.CallbackBlobSize = CallbackSize
	h.SignalBlobSize = SignalSize
	h.VFuncBlobSize = VFuncSize
	h.ArgBlobSize = ArgSize
	h.PropertyBlobSize = PropertySize
	h.FieldBlobSize = FieldSize
	h.ValueBlobSize = ValueSize
	h.AnnotationBlobSize = AnnotationSize
	h.ConstantBlobSize = ConstantSize
	h.ErrorDomainBlobSize = ErrorDomainSize
	h.SignatureBlobSize = SignatureSize
	h.EnumBlobSize = EnumSize
	h.StructBlobSize = StructSize
	h.ObjectBlobSize = ObjectSize
	h.InterfaceBlobSize = InterfaceSize
	h.UnionBlobSize = UnionSize
	return h
}
