package typelib

import "bytes"

// Validate checks the whole buffer and returns nil when every structure it
// covers is consistent. On failure it returns a *Error describing the first
// violation found; nothing past that point is examined. Validate never
// modifies data and is safe to call concurrently.
func Validate(data []byte) error {
	hdr, err := validateHeader(data)
	if err != nil {
		return err
	}
	v := &validator{data: data, hdr: hdr}
	if err := v.validateDirectory(); err != nil {
		return err
	}
	return v.validateAnnotations()
}

func validateHeader(data []byte) (Header, error) {
	h, ok := decodeHeader(data)
	if !ok {
		return Header{}, tooShort(0, "header")
	}

	invalid := func(format string, args ...any) (Header, error) {
		return Header{}, fail(KindInvalidHeader, 0, format, args...)
	}

	if !bytes.Equal(h.Magic[:], []byte(Magic)) {
		return invalid("magic string not found")
	}
	if !h.Compatible() {
		return invalid("version mismatch: got %d.%d want %d.%d", h.Major, h.Minor, CurrentMajor, CurrentMinor)
	}
	if h.NEntries < h.NLocalEntries {
		return invalid("inconsistent entry counts: %d entries, %d local", h.NEntries, h.NLocalEntries)
	}
	if uint64(h.Size) != uint64(len(data)) {
		return invalid("size mismatch: header says %d, buffer is %d", h.Size, len(data))
	}
	for _, s := range h.blobSizes() {
		if s.got != s.want {
			return invalid("blob size mismatch for %s: got %d want %d", s.name, s.got, s.want)
		}
	}
	if !isAligned(h.Directory) {
		return invalid("misaligned directory at %d", h.Directory)
	}
	if !isAligned(h.Annotations) {
		return invalid("misaligned annotations at %d", h.Annotations)
	}
	if h.Annotations == 0 && h.NAnnotations > 0 {
		return invalid("%d annotations without an annotation table", h.NAnnotations)
	}
	if !isName(data, h.Namespace) {
		return invalid("invalid namespace name")
	}
	return h, nil
}

func (v *validator) validateDirectory() error {
	if !fits(v.data, v.hdr.Directory, uint64(v.hdr.NEntries)*DirEntrySize) {
		return tooShort(v.hdr.Directory, "directory")
	}

	for i := uint16(0); i < v.hdr.NEntries; i++ {
		index := i + 1
		at := dirEntryOffset(&v.hdr, index)
		entry, err := parseDirEntry(v.data, at)
		if err != nil {
			return err
		}
		invalid := func(format string, args ...any) error {
			return fail(KindInvalidDirectory, at, "entry %d: "+format, append([]any{index}, args...)...)
		}

		if !isName(v.data, entry.Name) {
			return invalid("invalid entry name")
		}
		if (entry.Local() && entry.BlobType == BlobInvalid) || entry.BlobType > BlobUnion {
			return invalid("invalid entry type %d", entry.BlobType)
		}

		if i < v.hdr.NLocalEntries {
			if !entry.Local() {
				return invalid("too few local directory entries")
			}
			if !isAligned(entry.Offset) {
				return invalid("misaligned entry offset %d", entry.Offset)
			}
			if err := v.validateBlob(entry.Offset); err != nil {
				return err
			}
			continue
		}

		if entry.Local() {
			return invalid("too many local directory entries")
		}
		if !isName(v.data, entry.Offset) {
			return invalid("invalid namespace name")
		}
	}
	return nil
}

// validateAnnotations only checks that the table fits; annotation contents
// are opaque to validation.
func (v *validator) validateAnnotations() error {
	need := uint64(v.hdr.Annotations) + uint64(v.hdr.NAnnotations)*AnnotationSize
	if uint64(v.hdr.Size) < need {
		return tooShort(v.hdr.Annotations, "annotations")
	}
	return nil
}

func (v *validator) validateBlob(offset uint32) error {
	common, err := parseCommon(v.data, offset)
	if err != nil {
		return err
	}

	switch common.BlobType {
	case BlobFunction:
		return v.validateFunction(offset, BlobInvalid)
	case BlobCallback:
		return v.validateCallback(offset)
	case BlobStruct, BlobBoxed:
		return v.validateStruct(offset, common.BlobType)
	case BlobEnum, BlobFlags:
		return v.validateEnum(offset, common.BlobType)
	case BlobObject:
		return v.validateObject(offset)
	case BlobInterface:
		return v.validateInterface(offset)
	case BlobConstant:
		return v.validateConstant(offset)
	case BlobErrorDomain:
		return v.validateErrorDomain(offset)
	case BlobUnion:
		return v.validateUnion(offset)
	default:
		return fail(KindInvalidEntryType, offset, "invalid blob type %d", common.BlobType)
	}
}
