package typelib

func isAligned(offset uint32) bool {
	return offset%Alignment == 0
}

// isName reports whether a zero-terminated identifier made only of
// [A-Za-z0-9_-] starts at offset. The scan stops after MaxNameLen bytes or
// at the end of the buffer, whichever comes first.
func isName(data []byte, offset uint32) bool {
	if uint64(offset) >= uint64(len(data)) {
		return false
	}
	limit := len(data) - int(offset)
	if limit > MaxNameLen {
		limit = MaxNameLen
	}
	for _, c := range data[offset : int(offset)+limit] {
		switch {
		case c == 0:
			return true
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return false
}

// NameAt returns the zero-terminated string at offset. It performs the
// same bounded scan as validation and returns false for anything that
// would not validate as a name.
func NameAt(data []byte, offset uint32) (string, bool) {
	if !isName(data, offset) {
		return "", false
	}
	end := int(offset)
	for data[end] != 0 {
		end++
	}
	return string(data[offset:end]), true
}
