package typelib

import (
	"encoding/binary"
	"math"
)

var le = binary.LittleEndian

// region returns data[off:off+size] or false when the record does not fit.
// Arithmetic is done in 64 bits so hostile offsets cannot wrap.
func region(data []byte, off uint32, size uint64) ([]byte, bool) {
	end := uint64(off) + size
	if end > uint64(len(data)) {
		return nil, false
	}
	return data[off:end], true
}

func fits(data []byte, off uint32, size uint64) bool {
	return uint64(off)+size <= uint64(len(data))
}

// advance returns base+delta, saturating at the top of the offset space so
// a wrapped offset can never land back inside the buffer.
func advance(base uint32, delta uint64) uint32 {
	sum := uint64(base) + delta
	if sum > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(sum)
}

// SimpleType is the 4-byte type descriptor embedded in arguments, fields,
// properties, constants and complex types. When both reserved fields are
// zero it carries a primitive tag inline; otherwise the whole word is the
// offset of a complex type blob.
type SimpleType uint32

// NewSimpleType packs an inline primitive type descriptor.
func NewSimpleType(tag TypeTag, pointer bool) SimpleType {
	t := SimpleType(tag) << 27
	if pointer {
		t |= 1 << 24
	}
	return t
}

func (t SimpleType) IsSimple() bool { return t&0x00ffffff == 0 }
func (t SimpleType) Pointer() bool  { return t>>24&1 != 0 }
func (t SimpleType) Tag() TypeTag   { return TypeTag(t >> 27) }
func (t SimpleType) Offset() uint32 { return uint32(t) }

// TypeHead is the leading byte of every complex type blob:
// bit 0 is the pointer flag, bits 3-7 the tag.
type TypeHead uint8

func NewTypeHead(tag TypeTag, pointer bool) TypeHead {
	h := TypeHead(tag) << 3
	if pointer {
		h |= 1
	}
	return h
}

func (h TypeHead) Pointer() bool { return h&1 != 0 }
func (h TypeHead) Tag() TypeTag  { return TypeTag(h >> 3) }

type DirEntry struct {
	BlobType BlobType
	Flags    uint16
	Name     uint32
	Offset   uint32
}

func (e DirEntry) Local() bool { return e.Flags&1 != 0 }

// Resolved reports whether the entry names a concrete kind. Non-local
// entries may leave the type unset when it is only known to the
// namespace that defines them.
func (e DirEntry) Resolved() bool { return e.Local() || e.BlobType != BlobInvalid }

func parseDirEntry(data []byte, off uint32) (DirEntry, error) {
	b, ok := region(data, off, DirEntrySize)
	if !ok {
		return DirEntry{}, tooShort(off, "directory entry")
	}
	return DirEntry{
		BlobType: BlobType(le.Uint16(b[0:2])),
		Flags:    le.Uint16(b[2:4]),
		Name:     le.Uint32(b[4:8]),
		Offset:   le.Uint32(b[8:12]),
	}, nil
}

type Common struct {
	BlobType BlobType
	Flags    uint16
	Name     uint32
}

func parseCommon(data []byte, off uint32) (Common, error) {
	b, ok := region(data, off, CommonSize)
	if !ok {
		return Common{}, tooShort(off, "blob")
	}
	return Common{
		BlobType: BlobType(le.Uint16(b[0:2])),
		Flags:    le.Uint16(b[2:4]),
		Name:     le.Uint32(b[4:8]),
	}, nil
}

type InterfaceType struct {
	Head      TypeHead
	Reserved  uint8
	Interface uint16
}

func parseInterfaceType(data []byte, off uint32) (InterfaceType, error) {
	b, ok := region(data, off, InterfaceTypeSize)
	if !ok {
		return InterfaceType{}, tooShort(off, "interface type")
	}
	return InterfaceType{
		Head:      TypeHead(b[0]),
		Reserved:  b[1],
		Interface: le.Uint16(b[2:4]),
	}, nil
}

type ArrayType struct {
	Head   TypeHead
	Flags  uint8
	Length uint16
	Type   SimpleType
}

func (a ArrayType) ZeroTerminated() bool { return a.Flags&1 != 0 }
func (a ArrayType) HasLength() bool      { return a.Flags&2 != 0 }

func parseArrayType(data []byte, off uint32) (ArrayType, error) {
	b, ok := region(data, off, ArrayTypeSize)
	if !ok {
		return ArrayType{}, tooShort(off, "array type")
	}
	return ArrayType{
		Head:   TypeHead(b[0]),
		Flags:  b[1],
		Length: le.Uint16(b[2:4]),
		Type:   SimpleType(le.Uint32(b[4:8])),
	}, nil
}

// ParamType heads a list, slist or hash type and is followed by NTypes
// nested type descriptors.
type ParamType struct {
	Head     TypeHead
	Reserved uint8
	NTypes   uint16
}

func parseParamType(data []byte, off uint32) (ParamType, error) {
	b, ok := region(data, off, ParamTypeSize)
	if !ok {
		return ParamType{}, tooShort(off, "parameter type")
	}
	return ParamType{
		Head:     TypeHead(b[0]),
		Reserved: b[1],
		NTypes:   le.Uint16(b[2:4]),
	}, nil
}

// ErrorType is followed by NDomains 16-bit directory indices.
type ErrorType struct {
	Head     TypeHead
	Reserved uint8
	NDomains uint16
}

func parseErrorType(data []byte, off uint32) (ErrorType, error) {
	b, ok := region(data, off, ErrorTypeSize)
	if !ok {
		return ErrorType{}, tooShort(off, "error type")
	}
	return ErrorType{
		Head:     TypeHead(b[0]),
		Reserved: b[1],
		NDomains: le.Uint16(b[2:4]),
	}, nil
}

type Signature struct {
	ReturnType SimpleType
	Flags      uint16
	NArguments uint16
}

func (s Signature) MayReturnNull() bool { return s.Flags&1 != 0 }

func parseSignature(data []byte, off uint32) (Signature, error) {
	b, ok := region(data, off, SignatureSize)
	if !ok {
		return Signature{}, tooShort(off, "signature")
	}
	return Signature{
		ReturnType: SimpleType(le.Uint32(b[0:4])),
		Flags:      le.Uint16(b[4:6]),
		NArguments: le.Uint16(b[6:8]),
	}, nil
}

type Arg struct {
	Name  uint32
	Flags uint32
	Type  SimpleType
}

func parseArg(data []byte, off uint32) (Arg, error) {
	b, ok := region(data, off, ArgSize)
	if !ok {
		return Arg{}, tooShort(off, "argument")
	}
	return Arg{
		Name:  le.Uint32(b[0:4]),
		Flags: le.Uint32(b[4:8]),
		Type:  SimpleType(le.Uint32(b[8:12])),
	}, nil
}

// Function flag bits. Index occupies the top ten bits.
const (
	FunctionDeprecated  uint16 = 1 << 0
	FunctionSetter      uint16 = 1 << 1
	FunctionGetter      uint16 = 1 << 2
	FunctionConstructor uint16 = 1 << 3
	FunctionWrapsVFunc  uint16 = 1 << 4
	functionIndexShift         = 6
)

type Function struct {
	BlobType  BlobType
	Flags     uint16
	Name      uint32
	Symbol    uint32
	Signature uint32
}

func (f Function) Setter() bool      { return f.Flags&FunctionSetter != 0 }
func (f Function) Getter() bool      { return f.Flags&FunctionGetter != 0 }
func (f Function) Constructor() bool { return f.Flags&FunctionConstructor != 0 }
func (f Function) WrapsVFunc() bool  { return f.Flags&FunctionWrapsVFunc != 0 }
func (f Function) Index() uint16     { return f.Flags >> functionIndexShift }

func parseFunction(data []byte, off uint32) (Function, error) {
	b, ok := region(data, off, FunctionSize)
	if !ok {
		return Function{}, tooShort(off, "function")
	}
	return Function{
		BlobType:  BlobType(le.Uint16(b[0:2])),
		Flags:     le.Uint16(b[2:4]),
		Name:      le.Uint32(b[4:8]),
		Symbol:    le.Uint32(b[8:12]),
		Signature: le.Uint32(b[12:16]),
	}, nil
}

type Callback struct {
	BlobType  BlobType
	Flags     uint16
	Name      uint32
	Signature uint32
}

func parseCallback(data []byte, off uint32) (Callback, error) {
	b, ok := region(data, off, CallbackSize)
	if !ok {
		return Callback{}, tooShort(off, "callback")
	}
	return Callback{
		BlobType:  BlobType(le.Uint16(b[0:2])),
		Flags:     le.Uint16(b[2:4]),
		Name:      le.Uint32(b[4:8]),
		Signature: le.Uint32(b[8:12]),
	}, nil
}

type Constant struct {
	BlobType BlobType
	Flags    uint16
	Name     uint32
	Type     SimpleType
	Size     uint32
	Offset   uint32
}

func parseConstant(data []byte, off uint32) (Constant, error) {
	b, ok := region(data, off, ConstantSize)
	if !ok {
		return Constant{}, tooShort(off, "constant")
	}
	return Constant{
		BlobType: BlobType(le.Uint16(b[0:2])),
		Flags:    le.Uint16(b[2:4]),
		Name:     le.Uint32(b[4:8]),
		Type:     SimpleType(le.Uint32(b[8:12])),
		Size:     le.Uint32(b[12:16]),
		Offset:   le.Uint32(b[16:20]),
	}, nil
}

type ErrorDomain struct {
	BlobType   BlobType
	Flags      uint16
	Name       uint32
	GetQuark   uint32
	ErrorCodes uint16
	Reserved   uint16
}

type Value struct {
	Flags uint32
	Name  uint32
	Value uint32
}

func parseValue(data []byte, off uint32) (Value, error) {
	b, ok := region(data, off, ValueSize)
	if !ok {
		return Value{}, tooShort(off, "value")
	}
	return Value{
		Flags: le.Uint32(b[0:4]),
		Name:  le.Uint32(b[4:8]),
		Value: le.Uint32(b[8:12]),
	}, nil
}

type Field struct {
	Name         uint32
	Flags        uint8
	Bits         uint8
	StructOffset uint16
	Type         SimpleType
}

func parseField(data []byte, off uint32) (Field, error) {
	b, ok := region(data, off, FieldSize)
	if !ok {
		return Field{}, tooShort(off, "field")
	}
	return Field{
		Name:         le.Uint32(b[0:4]),
		Flags:        b[4],
		Bits:         b[5],
		StructOffset: le.Uint16(b[6:8]),
		Type:         SimpleType(le.Uint32(b[8:12])),
	}, nil
}

// Registration flag shared by struct, boxed, enum, flags and union blobs.
const FlagUnregistered uint16 = 1 << 1

// RegisteredType is the common head of every blob that may carry a
// runtime type name and type-init symbol.
type RegisteredType struct {
	BlobType  BlobType
	Flags     uint16
	Name      uint32
	GTypeName uint32
	GTypeInit uint32
}

func (r RegisteredType) Unregistered() bool { return r.Flags&FlagUnregistered != 0 }

func decodeRegistered(b []byte) RegisteredType {
	return RegisteredType{
		BlobType:  BlobType(le.Uint16(b[0:2])),
		Flags:     le.Uint16(b[2:4]),
		Name:      le.Uint32(b[4:8]),
		GTypeName: le.Uint32(b[8:12]),
		GTypeInit: le.Uint32(b[12:16]),
	}
}

type Struct struct {
	RegisteredType
	NFields  uint16
	NMethods uint16
}

func parseStruct(data []byte, off uint32) (Struct, error) {
	b, ok := region(data, off, StructSize)
	if !ok {
		return Struct{}, tooShort(off, "struct")
	}
	return Struct{
		RegisteredType: decodeRegistered(b),
		NFields:        le.Uint16(b[16:18]),
		NMethods:       le.Uint16(b[18:20]),
	}, nil
}

type Enum struct {
	RegisteredType
	NValues  uint16
	Reserved uint16
}

func parseEnum(data []byte, off uint32) (Enum, error) {
	b, ok := region(data, off, EnumSize)
	if !ok {
		return Enum{}, tooShort(off, "enum")
	}
	return Enum{
		RegisteredType: decodeRegistered(b),
		NValues:        le.Uint16(b[16:18]),
		Reserved:       le.Uint16(b[18:20]),
	}, nil
}

type Property struct {
	Name  uint32
	Flags uint32
	Type  SimpleType
}

func parseProperty(data []byte, off uint32) (Property, error) {
	b, ok := region(data, off, PropertySize)
	if !ok {
		return Property{}, tooShort(off, "property")
	}
	return Property{
		Name:  le.Uint32(b[0:4]),
		Flags: le.Uint32(b[4:8]),
		Type:  SimpleType(le.Uint32(b[8:12])),
	}, nil
}

// Signal flag bits.
const (
	SignalDeprecated      uint16 = 1 << 0
	SignalRunFirst        uint16 = 1 << 1
	SignalRunLast         uint16 = 1 << 2
	SignalRunCleanup      uint16 = 1 << 3
	SignalNoRecurse       uint16 = 1 << 4
	SignalDetailed        uint16 = 1 << 5
	SignalAction          uint16 = 1 << 6
	SignalNoHooks         uint16 = 1 << 7
	SignalHasClassClosure uint16 = 1 << 8
	SignalTrueStopsEmit   uint16 = 1 << 9
)

type Signal struct {
	Flags        uint16
	ClassClosure uint16
	Name         uint32
	Signature    uint32
}

func (s Signal) HasClassClosure() bool { return s.Flags&SignalHasClassClosure != 0 }

func (s Signal) runPhases() int {
	n := 0
	for _, bit := range [...]uint16{SignalRunFirst, SignalRunLast, SignalRunCleanup} {
		if s.Flags&bit != 0 {
			n++
		}
	}
	return n
}

func parseSignal(data []byte, off uint32) (Signal, error) {
	b, ok := region(data, off, SignalSize)
	if !ok {
		return Signal{}, tooShort(off, "signal")
	}
	return Signal{
		Flags:        le.Uint16(b[0:2]),
		ClassClosure: le.Uint16(b[2:4]),
		Name:         le.Uint32(b[4:8]),
		Signature:    le.Uint32(b[8:12]),
	}, nil
}

// VFunc flag bits.
const (
	VFuncMustChainUp          uint16 = 1 << 0
	VFuncMustBeImplemented    uint16 = 1 << 1
	VFuncMustNotBeImplemented uint16 = 1 << 2
	VFuncClassClosure         uint16 = 1 << 3
)

type VFunc struct {
	Name         uint32
	Flags        uint16
	Signal       uint16
	StructOffset uint16
	Reserved     uint16
	Signature    uint32
}

// ClassClosure is the one-bit class-closure field. The format has no
// separate closure index for vfuncs, so the bit value itself is what gets
// range-checked against the container's vfunc count.
func (v VFunc) ClassClosure() uint16 { return (v.Flags & VFuncClassClosure) >> 3 }

func parseVFunc(data []byte, off uint32) (VFunc, error) {
	b, ok := region(data, off, VFuncSize)
	if !ok {
		return VFunc{}, tooShort(off, "vfunc")
	}
	return VFunc{
		Name:         le.Uint32(b[0:4]),
		Flags:        le.Uint16(b[4:6]),
		Signal:       le.Uint16(b[6:8]),
		StructOffset: le.Uint16(b[8:10]),
		Reserved:     le.Uint16(b[10:12]),
		Signature:    le.Uint32(b[12:16]),
	}, nil
}

type Object struct {
	RegisteredType
	Parent      uint16
	NInterfaces uint16
	NFields     uint16
	NProperties uint16
	NMethods    uint16
	NSignals    uint16
	NVFuncs     uint16
	NConstants  uint16
}

func parseObject(data []byte, off uint32) (Object, error) {
	b, ok := region(data, off, ObjectSize)
	if !ok {
		return Object{}, tooShort(off, "object")
	}
	return Object{
		RegisteredType: decodeRegistered(b),
		Parent:         le.Uint16(b[16:18]),
		NInterfaces:    le.Uint16(b[18:20]),
		NFields:        le.Uint16(b[20:22]),
		NProperties:    le.Uint16(b[22:24]),
		NMethods:       le.Uint16(b[24:26]),
		NSignals:       le.Uint16(b[26:28]),
		NVFuncs:        le.Uint16(b[28:30]),
		NConstants:     le.Uint16(b[30:32]),
	}, nil
}

type Interface struct {
	RegisteredType
	NPrerequisites uint16
	NProperties    uint16
	NMethods       uint16
	NSignals       uint16
	NVFuncs        uint16
	NConstants     uint16
}

func parseInterface(data []byte, off uint32) (Interface, error) {
	b, ok := region(data, off, InterfaceSize)
	if !ok {
		return Interface{}, tooShort(off, "interface")
	}
	return Interface{
		RegisteredType: decodeRegistered(b),
		NPrerequisites: le.Uint16(b[16:18]),
		NProperties:    le.Uint16(b[18:20]),
		NMethods:       le.Uint16(b[20:22]),
		NSignals:       le.Uint16(b[22:24]),
		NVFuncs:        le.Uint16(b[24:26]),
		NConstants:     le.Uint16(b[26:28]),
	}, nil
}

type Union struct {
	RegisteredType
	NFields             uint16
	NFunctions          uint16
	DiscriminatorOffset int32
	DiscriminatorType   SimpleType
}

type Annotation struct {
	Offset uint32
	Name   uint32
	Value  uint32
}
