package typelib

// Entry counts and directory lookups are needed all the way down the
// descent, so validation carries the decoded header with the buffer.
type validator struct {
	data []byte
	hdr  Header

	// checked holds complex type blobs already accepted outside any
	// signature context. Shared subtrees are then walked once, so work
	// stays linear in the buffer size.
	checked map[uint32]struct{}
}

// entry resolves a 1-based directory index that has already been range
// checked against the header.
func (v *validator) entry(index uint16) (DirEntry, error) {
	return parseDirEntry(v.data, dirEntryOffset(&v.hdr, index))
}

func (v *validator) inRange(index uint16) bool {
	return index != 0 && index <= v.hdr.NEntries
}

// validateType checks the type descriptor stored at offset. signatureOffset
// and isReturn describe the enclosing signature, if any.
func (v *validator) validateType(offset, signatureOffset uint32, isReturn bool) error {
	return v.validateTypeAt(offset, signatureOffset, isReturn, 0)
}

// Complex types may point back at themselves; nesting is capped so a
// cyclic descriptor is rejected instead of recursing forever.
const maxTypeDepth = 32

const arrayElementOffset = 4

func (v *validator) validateNested(offset uint32, depth int) error {
	if depth >= maxTypeDepth {
		return badBlob(offset, "type nesting deeper than %d", maxTypeDepth)
	}
	return v.validateTypeAt(offset, 0, false, depth+1)
}

func (v *validator) validateTypeAt(offset, signatureOffset uint32, isReturn bool, depth int) error {
	b, ok := region(v.data, offset, SimpleTypeSize)
	if !ok {
		return tooShort(offset, "type")
	}
	simple := SimpleType(le.Uint32(b))

	if simple.IsSimple() {
		if simple.Tag() >= TagArray {
			return badBlob(offset, "wrong tag %d in simple type", simple.Tag())
		}
		if simple.Tag() >= TagUTF8 && !simple.Pointer() {
			return badBlob(offset, "pointer type expected for tag %d", simple.Tag())
		}
		return nil
	}

	target := simple.Offset()
	head, ok := region(v.data, target, 1)
	if !ok {
		return tooShort(target, "complex type")
	}
	if signatureOffset != 0 || isReturn {
		return v.validateComplex(target, TypeHead(head[0]).Tag(), signatureOffset, isReturn, depth)
	}
	if _, ok := v.checked[target]; ok {
		return nil
	}
	if err := v.validateComplex(target, TypeHead(head[0]).Tag(), 0, false, depth); err != nil {
		return err
	}
	if v.checked == nil {
		v.checked = make(map[uint32]struct{})
	}
	v.checked[target] = struct{}{}
	return nil
}

func (v *validator) validateComplex(target uint32, tag TypeTag, signatureOffset uint32, isReturn bool, depth int) error {
	switch tag {
	case TagArray:
		return v.validateArrayType(target, signatureOffset, isReturn, depth)
	case TagInterface:
		return v.validateInterfaceType(target)
	case TagList, TagSList:
		return v.validateParamType(target, 1, depth)
	case TagHash:
		return v.validateParamType(target, 2, depth)
	case TagError:
		return v.validateErrorType(target)
	default:
		return badBlob(target, "wrong tag %d in complex type", tag)
	}
}

func (v *validator) validateArrayType(offset, signatureOffset uint32, isReturn bool, depth int) error {
	blob, err := parseArrayType(v.data, offset)
	if err != nil {
		return err
	}
	if !blob.Head.Pointer() {
		return badBlob(offset, "pointer type expected for tag %d", blob.Head.Tag())
	}

	// TODO: check that a declared length argument exists in the enclosing
	// signature (signatureOffset) and has an integer type.

	return v.validateNested(offset+arrayElementOffset, depth)
}

func (v *validator) validateInterfaceType(offset uint32) error {
	blob, err := parseInterfaceType(v.data, offset)
	if err != nil {
		return err
	}
	if !v.inRange(blob.Interface) {
		return badBlob(offset, "invalid directory index %d", blob.Interface)
	}
	return nil
}

func (v *validator) validateParamType(offset uint32, nParams uint16, depth int) error {
	blob, err := parseParamType(v.data, offset)
	if err != nil {
		return err
	}
	if !blob.Head.Pointer() {
		return badBlob(offset, "pointer type expected for tag %d", blob.Head.Tag())
	}
	if blob.NTypes != nParams {
		return badBlob(offset, "parameter type number mismatch: got %d want %d", blob.NTypes, nParams)
	}
	for i := uint16(0); i < nParams; i++ {
		if err := v.validateNested(advance(offset, ParamTypeSize+uint64(i)*SimpleTypeSize), depth); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateErrorType(offset uint32) error {
	blob, err := parseErrorType(v.data, offset)
	if err != nil {
		return err
	}
	if !blob.Head.Pointer() {
		return badBlob(offset, "pointer type expected for tag %d", blob.Head.Tag())
	}

	domains, ok := region(v.data, offset+ErrorTypeSize, uint64(blob.NDomains)*2)
	if !ok {
		return tooShort(offset, "error domain list")
	}
	for i := 0; i < int(blob.NDomains); i++ {
		index := le.Uint16(domains[2*i:])
		if !v.inRange(index) {
			return badBlob(offset, "invalid directory index %d", index)
		}
		entry, err := v.entry(index)
		if err != nil {
			return err
		}
		if entry.BlobType != BlobErrorDomain && entry.Resolved() {
			return badBlob(offset, "error domain %d has wrong blob type %s", index, entry.BlobType)
		}
	}
	return nil
}
