package typelib

import "strconv"

// Offsets of the embedded type descriptor inside fixed records.
const (
	constantTypeOffset = 8
	fieldTypeOffset    = 8
	propertyTypeOffset = 8
)

// constantSizes is the expected value size for every primitive tag below
// TagArray. Zero disables the check for that tag.
var constantSizes = [TagArray]uint32{
	TagVoid:     0,
	TagBoolean:  4,
	TagInt8:     1,
	TagUInt8:    1,
	TagInt16:    2,
	TagUInt16:   2,
	TagInt32:    4,
	TagUInt32:   4,
	TagInt64:    8,
	TagUInt64:   8,
	TagInt:      4,
	TagUInt:     4,
	TagLong:     strconv.IntSize / 8,
	TagULong:    strconv.IntSize / 8,
	TagSSize:    strconv.IntSize / 8,
	TagSize:     strconv.IntSize / 8,
	TagFloat:    4,
	TagDouble:   8,
	TagUTF8:     0,
	TagFilename: 0,
}

// validateFunction checks a function record. container is the kind of the
// blob that lists the function, or BlobInvalid for a top-level function.
func (v *validator) validateFunction(offset uint32, container BlobType) error {
	fn, err := parseFunction(v.data, offset)
	if err != nil {
		return err
	}
	if fn.BlobType != BlobFunction {
		return badBlob(offset, "wrong blob type %s, want function", fn.BlobType)
	}
	if !isName(v.data, fn.Name) {
		return badBlob(offset, "invalid function name")
	}
	if !isName(v.data, fn.Symbol) {
		return badBlob(offset, "invalid function symbol")
	}

	if fn.Constructor() {
		switch container {
		case BlobBoxed, BlobObject, BlobInterface:
		default:
			return badBlob(offset, "constructor not allowed in %s", container)
		}
	}

	if fn.Setter() || fn.Getter() || fn.WrapsVFunc() {
		switch container {
		case BlobObject, BlobInterface:
		default:
			return badBlob(offset, "setter, getter or wrapper not allowed in %s", container)
		}
	}

	if fn.Index() != 0 && !(fn.Setter() || fn.Getter() || fn.WrapsVFunc()) {
		return badBlob(offset, "index %d set on a function that is not a setter, getter or wrapper", fn.Index())
	}

	// The index range, the "this" argument of methods and constructor
	// return types are not checked.

	return v.validateSignature(fn.Signature)
}

func (v *validator) validateCallback(offset uint32) error {
	cb, err := parseCallback(v.data, offset)
	if err != nil {
		return err
	}
	if cb.BlobType != BlobCallback {
		return badBlob(offset, "wrong blob type %s, want callback", cb.BlobType)
	}
	if !isName(v.data, cb.Name) {
		return badBlob(offset, "invalid callback name")
	}
	return v.validateSignature(cb.Signature)
}

func (v *validator) validateConstant(offset uint32) error {
	c, err := parseConstant(v.data, offset)
	if err != nil {
		return err
	}
	if c.BlobType != BlobConstant {
		return badBlob(offset, "wrong blob type %s, want constant", c.BlobType)
	}
	if !isName(v.data, c.Name) {
		return badBlob(offset, "invalid constant name")
	}
	if err := v.validateType(offset+constantTypeOffset, 0, false); err != nil {
		return err
	}
	if !isAligned(c.Offset) {
		return badBlob(offset, "misaligned constant value at %d", c.Offset)
	}

	if c.Type.IsSimple() {
		tag := c.Type.Tag()
		if tag == TagVoid {
			return badBlob(offset, "constant value type void")
		}
		if want := constantSizes[tag]; want != 0 && c.Size != want {
			return badBlob(offset, "constant value size mismatch for %s: got %d want %d", tag, c.Size, want)
		}
		// String values are not inspected.
	}
	return nil
}

func (v *validator) validateValue(offset uint32) error {
	val, err := parseValue(v.data, offset)
	if err != nil {
		return err
	}
	if !isName(v.data, val.Name) {
		return badBlob(offset, "invalid value name")
	}
	return nil
}

func (v *validator) validateField(offset uint32) error {
	f, err := parseField(v.data, offset)
	if err != nil {
		return err
	}
	if !isName(v.data, f.Name) {
		return badBlob(offset, "invalid field name")
	}
	return v.validateType(offset+fieldTypeOffset, 0, false)
}

func (v *validator) validateProperty(offset uint32) error {
	p, err := parseProperty(v.data, offset)
	if err != nil {
		return err
	}
	if !isName(v.data, p.Name) {
		return badBlob(offset, "invalid property name")
	}
	return v.validateType(offset+propertyTypeOffset, 0, false)
}

// containerCounts returns the signal and vfunc counts of the object or
// interface blob at offset. Anything that is not an object is read as an
// interface.
func (v *validator) containerCounts(offset uint32) (nSignals, nVFuncs uint16, err error) {
	common, err := parseCommon(v.data, offset)
	if err != nil {
		return 0, 0, err
	}
	if common.BlobType == BlobObject {
		obj, err := parseObject(v.data, offset)
		if err != nil {
			return 0, 0, err
		}
		return obj.NSignals, obj.NVFuncs, nil
	}
	iface, err := parseInterface(v.data, offset)
	if err != nil {
		return 0, 0, err
	}
	return iface.NSignals, iface.NVFuncs, nil
}

func (v *validator) validateSignal(offset, container uint32) error {
	sig, err := parseSignal(v.data, offset)
	if err != nil {
		return err
	}
	if !isName(v.data, sig.Name) {
		return badBlob(offset, "invalid signal name")
	}
	if sig.runPhases() != 1 {
		return badBlob(offset, "invalid signal run flags %#x", sig.Flags)
	}

	if sig.HasClassClosure() {
		nSignals, _, err := v.containerCounts(container)
		if err != nil {
			return err
		}
		if sig.ClassClosure >= nSignals {
			return badBlob(offset, "invalid class closure index %d of %d signals", sig.ClassClosure, nSignals)
		}
	}

	return v.validateSignature(sig.Signature)
}

func (v *validator) validateVFunc(offset, container uint32) error {
	vf, err := parseVFunc(v.data, offset)
	if err != nil {
		return err
	}
	if !isName(v.data, vf.Name) {
		return badBlob(offset, "invalid vfunc name")
	}

	if closure := vf.ClassClosure(); closure != 0 {
		_, nVFuncs, err := v.containerCounts(container)
		if err != nil {
			return err
		}
		if closure >= nVFuncs {
			return badBlob(offset, "invalid class closure index %d of %d vfuncs", closure, nVFuncs)
		}
	}

	return v.validateSignature(vf.Signature)
}
