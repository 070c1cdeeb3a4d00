package typelib

func (v *validator) validateStruct(offset uint32, blobType BlobType) error {
	s, err := parseStruct(v.data, offset)
	if err != nil {
		return err
	}
	if s.BlobType != blobType {
		return badBlob(offset, "wrong blob type %s, want %s", s.BlobType, blobType)
	}
	if (s.BlobType == BlobBoxed && s.Unregistered()) || (s.BlobType == BlobStruct && !s.Unregistered()) {
		return badBlob(offset, "registration does not match blob type %s", s.BlobType)
	}
	if !isName(v.data, s.Name) {
		return badBlob(offset, "invalid struct name")
	}

	if blobType == BlobBoxed {
		if !isName(v.data, s.GTypeName) {
			return badBlob(offset, "invalid boxed type name")
		}
		if !isName(v.data, s.GTypeInit) {
			return badBlob(offset, "invalid boxed type init")
		}
	} else if s.GTypeName != 0 || s.GTypeInit != 0 {
		return badBlob(offset, "type name or init set on unregistered struct")
	}

	need := uint64(StructSize) +
		uint64(s.NFields)*FieldSize +
		uint64(s.NMethods)*FunctionSize
	if !fits(v.data, offset, need) {
		return tooShort(offset, "struct members")
	}

	next := offset + StructSize
	for i := uint16(0); i < s.NFields; i++ {
		if err := v.validateField(next); err != nil {
			return err
		}
		next += FieldSize
	}
	// Methods of boxed types are checked as struct members too.
	for i := uint16(0); i < s.NMethods; i++ {
		if err := v.validateFunction(next, BlobStruct); err != nil {
			return err
		}
		next += FunctionSize
	}
	return nil
}

const valueValueOffset = 8

// validateEnum also rejects two members with the same numeric value.
// Aliased values are legal in C enums, but the format has always refused
// them and readers may rely on values being unique.
func (v *validator) validateEnum(offset uint32, blobType BlobType) error {
	e, err := parseEnum(v.data, offset)
	if err != nil {
		return err
	}
	if e.BlobType != blobType {
		return badBlob(offset, "wrong blob type %s, want %s", e.BlobType, blobType)
	}

	if !e.Unregistered() {
		if !isName(v.data, e.GTypeName) {
			return badBlob(offset, "invalid enum type name")
		}
		if !isName(v.data, e.GTypeInit) {
			return badBlob(offset, "invalid enum type init")
		}
	} else if e.GTypeName != 0 || e.GTypeInit != 0 {
		return badBlob(offset, "type name or init set on unregistered enum")
	}

	if !isName(v.data, e.Name) {
		return badBlob(offset, "invalid enum name")
	}

	if !fits(v.data, offset, uint64(EnumSize)+uint64(e.NValues)*ValueSize) {
		return tooShort(offset, "enum values")
	}

	base := offset + EnumSize
	for i := uint32(0); i < uint32(e.NValues); i++ {
		at := base + i*ValueSize
		if err := v.validateValue(at); err != nil {
			return err
		}
		cur := le.Uint32(v.data[at+valueValueOffset:])
		for j := uint32(0); j < i; j++ {
			if le.Uint32(v.data[base+j*ValueSize+valueValueOffset:]) == cur {
				return badBlob(at, "duplicate enum value %d", cur)
			}
		}
	}
	return nil
}

// resolve looks up a cross-reference. ok is false when the index is out
// of range.
func (v *validator) resolve(index uint16) (DirEntry, bool, error) {
	if !v.inRange(index) {
		return DirEntry{}, false, nil
	}
	entry, err := v.entry(index)
	if err != nil {
		return DirEntry{}, false, err
	}
	return entry, true, nil
}

// entryIs reports whether entry is one of kinds. A non-local entry with an
// unset type is defined elsewhere and always accepted.
func entryIs(entry DirEntry, kinds ...BlobType) bool {
	if !entry.Resolved() {
		return true
	}
	for _, k := range kinds {
		if entry.BlobType == k {
			return true
		}
	}
	return false
}

func (v *validator) validateObject(offset uint32) error {
	obj, err := parseObject(v.data, offset)
	if err != nil {
		return err
	}
	if obj.BlobType != BlobObject {
		return badBlob(offset, "wrong blob type %s, want object", obj.BlobType)
	}
	if !isName(v.data, obj.GTypeName) {
		return badBlob(offset, "invalid object type name")
	}
	if !isName(v.data, obj.GTypeInit) {
		return badBlob(offset, "invalid object type init")
	}
	if !isName(v.data, obj.Name) {
		return badBlob(offset, "invalid object name")
	}

	if obj.Parent > v.hdr.NEntries {
		return badBlob(offset, "invalid parent index %d", obj.Parent)
	}
	if obj.Parent != 0 {
		entry, _, err := v.resolve(obj.Parent)
		if err != nil {
			return err
		}
		if !entryIs(entry, BlobObject) {
			return badBlob(offset, "parent %d is a %s, not an object", obj.Parent, entry.BlobType)
		}
	}

	nIfaces := uint64(obj.NInterfaces)
	need := uint64(ObjectSize) +
		(nIfaces+nIfaces%2)*2 +
		uint64(obj.NFields)*FieldSize +
		uint64(obj.NProperties)*PropertySize +
		uint64(obj.NMethods)*FunctionSize +
		uint64(obj.NSignals)*SignalSize +
		uint64(obj.NVFuncs)*VFuncSize +
		uint64(obj.NConstants)*ConstantSize
	if !fits(v.data, offset, need) {
		return tooShort(offset, "object members")
	}

	next := offset + ObjectSize
	for i := uint16(0); i < obj.NInterfaces; i++ {
		index := le.Uint16(v.data[next:])
		entry, ok, err := v.resolve(index)
		if err != nil {
			return err
		}
		if !ok {
			return badBlob(offset, "invalid interface index %d", index)
		}
		if !entryIs(entry, BlobInterface) {
			return badBlob(offset, "interface %d is a %s, not an interface", index, entry.BlobType)
		}
		next += 2
	}
	next += 2 * uint32(obj.NInterfaces%2)

	return v.validateMembers(offset, next, BlobObject, memberCounts{
		fields:     obj.NFields,
		properties: obj.NProperties,
		methods:    obj.NMethods,
		signals:    obj.NSignals,
		vfuncs:     obj.NVFuncs,
		constants:  obj.NConstants,
	})
}

func (v *validator) validateInterface(offset uint32) error {
	iface, err := parseInterface(v.data, offset)
	if err != nil {
		return err
	}
	if iface.BlobType != BlobInterface {
		return badBlob(offset, "wrong blob type %s, want interface", iface.BlobType)
	}
	if !isName(v.data, iface.GTypeName) {
		return badBlob(offset, "invalid interface type name")
	}
	if !isName(v.data, iface.GTypeInit) {
		return badBlob(offset, "invalid interface type init")
	}
	if !isName(v.data, iface.Name) {
		return badBlob(offset, "invalid interface name")
	}

	nPrereq := uint64(iface.NPrerequisites)
	need := uint64(InterfaceSize) +
		(nPrereq+nPrereq%2)*2 +
		uint64(iface.NProperties)*PropertySize +
		uint64(iface.NMethods)*FunctionSize +
		uint64(iface.NSignals)*SignalSize +
		uint64(iface.NVFuncs)*VFuncSize +
		uint64(iface.NConstants)*ConstantSize
	if !fits(v.data, offset, need) {
		return tooShort(offset, "interface members")
	}

	next := offset + InterfaceSize
	for i := uint16(0); i < iface.NPrerequisites; i++ {
		index := le.Uint16(v.data[next:])
		entry, ok, err := v.resolve(index)
		if err != nil {
			return err
		}
		if !ok {
			return badBlob(offset, "invalid prerequisite index %d", index)
		}
		if !entryIs(entry, BlobInterface, BlobObject) {
			return badBlob(offset, "prerequisite %d is a %s, not an interface or object", index, entry.BlobType)
		}
		next += 2
	}
	next += 2 * uint32(iface.NPrerequisites%2)

	return v.validateMembers(offset, next, BlobInterface, memberCounts{
		properties: iface.NProperties,
		methods:    iface.NMethods,
		signals:    iface.NSignals,
		vfuncs:     iface.NVFuncs,
		constants:  iface.NConstants,
	})
}

type memberCounts struct {
	fields, properties, methods, signals, vfuncs, constants uint16
}

// validateMembers walks the trailing sections shared by objects and
// interfaces, in their fixed on-disk order, starting at next. The caller
// has already checked that every section fits.
func (v *validator) validateMembers(container, next uint32, kind BlobType, n memberCounts) error {
	for i := uint16(0); i < n.fields; i++ {
		if err := v.validateField(next); err != nil {
			return err
		}
		next += FieldSize
	}
	for i := uint16(0); i < n.properties; i++ {
		if err := v.validateProperty(next); err != nil {
			return err
		}
		next += PropertySize
	}
	for i := uint16(0); i < n.methods; i++ {
		if err := v.validateFunction(next, kind); err != nil {
			return err
		}
		next += FunctionSize
	}
	for i := uint16(0); i < n.signals; i++ {
		if err := v.validateSignal(next, container); err != nil {
			return err
		}
		next += SignalSize
	}
	for i := uint16(0); i < n.vfuncs; i++ {
		if err := v.validateVFunc(next, container); err != nil {
			return err
		}
		next += VFuncSize
	}
	for i := uint16(0); i < n.constants; i++ {
		if err := v.validateConstant(next); err != nil {
			return err
		}
		next += ConstantSize
	}
	return nil
}

// Error domains and unions carry no checks beyond dispatch.
func (v *validator) validateErrorDomain(uint32) error { return nil }

func (v *validator) validateUnion(uint32) error { return nil }
