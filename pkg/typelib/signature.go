package typelib

const argTypeOffset = 8

func (v *validator) validateArg(offset, signatureOffset uint32) error {
	arg, err := parseArg(v.data, offset)
	if err != nil {
		return err
	}
	if !isName(v.data, arg.Name) {
		return badBlob(offset, "invalid argument name")
	}
	return v.validateType(offset+argTypeOffset, signatureOffset, false)
}

// validateSignature checks the return type and every argument. Array
// length pairing and return-value constraints are not checked.
func (v *validator) validateSignature(offset uint32) error {
	sig, err := parseSignature(v.data, offset)
	if err != nil {
		return err
	}

	if sig.ReturnType.Offset() != 0 {
		if err := v.validateType(offset, offset, true); err != nil {
			return err
		}
	}

	for i := uint16(0); i < sig.NArguments; i++ {
		if err := v.validateArg(advance(offset, SignatureSize+uint64(i)*ArgSize), offset); err != nil {
			return err
		}
	}
	return nil
}
