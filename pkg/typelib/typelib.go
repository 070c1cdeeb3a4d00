// Package typelib validates GObject-style binary type libraries.
//
// A typelib is a single, memory-mappable buffer describing the types and
// callables of one namespace. Validate proves that every offset, count,
// alignment, name and directory cross-reference in the buffer is internally
// consistent, so that a reflection layer can dereference them afterwards
// without further bounds checks. The package never interprets what the
// buffer describes.
package typelib

// Format constants must never change.
const (
	// Magic is the 16-byte file magic every typelib starts with.
	Magic = "GOBJ\nMETADATA\r\n\x1a"

	// Only one format version is understood.
	CurrentMajor uint8 = 1
	CurrentMinor uint8 = 0

	// MaxNameLen bounds the scan for a name terminator.
	MaxNameLen = 200

	// Sub-structures start on this boundary.
	Alignment = 4
)

// Fixed record sizes in bytes.
const (
	HeaderSize         = 84
	DirEntrySize       = 12
	SimpleTypeSize     = 4
	ArgSize            = 12
	SignatureSize      = 8
	CommonSize         = 8
	FunctionSize       = 16
	CallbackSize       = 12
	InterfaceTypeSize  = 4
	ArrayTypeSize      = 8
	ParamTypeSize      = 4
	ErrorTypeSize      = 4
	ErrorDomainSize    = 16
	ValueSize          = 12
	FieldSize          = 12
	RegisteredTypeSize = 16
	StructSize         = 20
	EnumSize           = 20
	PropertySize       = 12
	SignalSize         = 12
	VFuncSize          = 16
	ObjectSize         = 32
	InterfaceSize      = 28
	ConstantSize       = 20
	AnnotationSize     = 12
	UnionSize          = 28
)

// BlobType tags every directory entry and every top-level blob.
type BlobType uint16

const (
	BlobInvalid BlobType = iota
	BlobFunction
	BlobCallback
	BlobStruct
	BlobBoxed
	BlobEnum
	BlobFlags
	BlobObject
	BlobInterface
	BlobConstant
	BlobErrorDomain
	BlobUnion
)

var blobTypeNames = [...]string{
	BlobInvalid:     "invalid",
	BlobFunction:    "function",
	BlobCallback:    "callback",
	BlobStruct:      "struct",
	BlobBoxed:       "boxed",
	BlobEnum:        "enum",
	BlobFlags:       "flags",
	BlobObject:      "object",
	BlobInterface:   "interface",
	BlobConstant:    "constant",
	BlobErrorDomain: "error-domain",
	BlobUnion:       "union",
}

func (t BlobType) String() string {
	if int(t) < len(blobTypeNames) {
		return blobTypeNames[t]
	}
	return "unknown"
}

// TypeTag identifies a primitive or complex type in a type descriptor.
type TypeTag uint8

const (
	TagVoid TypeTag = iota
	TagBoolean
	TagInt8
	TagUInt8
	TagInt16
	TagUInt16
	TagInt32
	TagUInt32
	TagInt64
	TagUInt64
	TagInt
	TagUInt
	TagLong
	TagULong
	TagSSize
	TagSize
	TagFloat
	TagDouble
	TagUTF8
	TagFilename
	TagArray
	TagInterface
	TagList
	TagSList
	TagHash
	TagError
)

var typeTagNames = [...]string{
	"void", "boolean", "int8", "uint8", "int16", "uint16", "int32", "uint32",
	"int64", "uint64", "int", "uint", "long", "ulong", "ssize", "size",
	"float", "double", "utf8", "filename", "array", "interface", "list",
	"slist", "hash", "error",
}

func (t TypeTag) String() string {
	if int(t) < len(typeTagNames) {
		return typeTagNames[t]
	}
	return "unknown"
}
