package typelib

import (
	"encoding/binary"
	"fmt"
)

// CheckSanity verifies that the in-memory record types have exactly the
// on-disk sizes the validator assumes. A mismatch is a programming error.
func CheckSanity() error {
	checks := []struct {
		name string
		v    any
		want int
	}{
		{"header", Header{}, HeaderSize},
		{"directory entry", DirEntry{}, DirEntrySize},
		{"simple type", SimpleType(0), SimpleTypeSize},
		{"argument", Arg{}, ArgSize},
		{"signature", Signature{}, SignatureSize},
		{"common", Common{}, CommonSize},
		{"function", Function{}, FunctionSize},
		{"callback", Callback{}, CallbackSize},
		{"interface type", InterfaceType{}, InterfaceTypeSize},
		{"array type", ArrayType{}, ArrayTypeSize},
		{"parameter type", ParamType{}, ParamTypeSize},
		{"error type", ErrorType{}, ErrorTypeSize},
		{"error domain", ErrorDomain{}, ErrorDomainSize},
		{"value", Value{}, ValueSize},
		{"field", Field{}, FieldSize},
		{"registered type", RegisteredType{}, RegisteredTypeSize},
		{"struct", Struct{}, StructSize},
		{"enum", Enum{}, EnumSize},
		{"property", Property{}, PropertySize},
		{"signal", Signal{}, SignalSize},
		{"vfunc", VFunc{}, VFuncSize},
		{"object", Object{}, ObjectSize},
		{"interface", Interface{}, InterfaceSize},
		{"constant", Constant{}, ConstantSize},
		{"annotation", Annotation{}, AnnotationSize},
		{"union", Union{}, UnionSize},
	}
	for _, c := range checks {
		if got := binary.Size(c.v); got != c.want {
			return fmt.Errorf("typelib: %s record is %d bytes, want %d", c.name, got, c.want)
		}
	}
	return nil
}

func init() {
	if err := CheckSanity(); err != nil {
		panic(err)
	}
}
