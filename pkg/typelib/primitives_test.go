package typelib

import (
	"bytes"
	"math"
	"testing"
)

func TestIsName(t *testing.T) {
	t.Parallel()

	long := bytes.Repeat([]byte("a"), MaxNameLen+1)

	tests := []struct {
		name   string
		data   []byte
		offset uint32
		want   bool
	}{
		{"identifier", []byte("abc-def_1\x00"), 0, true},
		{"empty", []byte("\x00"), 0, true},
		{"offset into buffer", []byte("xx\x00ok\x00"), 3, true},
		{"space", []byte("abc def\x00"), 0, false},
		{"slash", []byte("abc/def\x00"), 0, false},
		{"no terminator within bound", append(long, 0), 0, false},
		{"longest accepted", append(bytes.Repeat([]byte("a"), MaxNameLen-1), 0), 0, true},
		{"runs off the buffer", []byte("abc"), 0, false},
		{"offset at end", []byte("abc\x00"), 4, false},
		{"offset past end", []byte("abc\x00"), 1 << 20, false},
	}
	for _, tt := range tests {
		if got := isName(tt.data, tt.offset); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsAligned(t *testing.T) {
	t.Parallel()

	for _, off := range []uint32{0, 4, 84, 1 << 20} {
		if !isAligned(off) {
			t.Fatalf("offset %d: expected aligned", off)
		}
	}
	for _, off := range []uint32{1, 2, 3, 85} {
		if isAligned(off) {
			t.Fatalf("offset %d: expected misaligned", off)
		}
	}
}

func TestNameAt(t *testing.T) {
	t.Parallel()

	data := []byte("pad\x00Gtk\x00bad name\x00")
	if got, ok := NameAt(data, 4); !ok || got != "Gtk" {
		t.Fatalf("got %q,%v want %q,true", got, ok, "Gtk")
	}
	if _, ok := NameAt(data, 8); ok {
		t.Fatalf("expected invalid name to be rejected")
	}
}

func TestAdvanceSaturates(t *testing.T) {
	t.Parallel()

	if got := advance(8, 4); got != 12 {
		t.Fatalf("got %d want 12", got)
	}
	if got := advance(math.MaxUint32-2, 12); got != math.MaxUint32 {
		t.Fatalf("got %d want %d", got, uint32(math.MaxUint32))
	}
	if _, ok := region(make([]byte, 16), math.MaxUint32, 12); ok {
		t.Fatalf("expected saturated offset to fall outside the buffer")
	}
}

func TestTypeDescriptorBits(t *testing.T) {
	t.Parallel()

	st := NewSimpleType(TagUTF8, true)
	if !st.IsSimple() || !st.Pointer() || st.Tag() != TagUTF8 {
		t.Fatalf("simple type round trip: simple=%v pointer=%v tag=%s", st.IsSimple(), st.Pointer(), st.Tag())
	}
	if SimpleType(0x1234).IsSimple() {
		t.Fatalf("expected a word with reserved bits set to be an offset")
	}

	head := NewTypeHead(TagHash, true)
	if !head.Pointer() || head.Tag() != TagHash {
		t.Fatalf("type head round trip: pointer=%v tag=%s", head.Pointer(), head.Tag())
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := DefaultHeader()
	h.NEntries = 3
	h.NLocalEntries = 2
	h.Directory = 128
	h.Size = 512
	h.Namespace = HeaderSize

	buf := make([]byte, HeaderSize)
	if !EncodeHeader(buf, h) {
		t.Fatalf("EncodeHeader rejected a full-size buffer")
	}
	got, ok := decodeHeader(buf)
	if !ok {
		t.Fatalf("decodeHeader failed")
	}
	if got != h {
		t.Fatalf("got %+v want %+v", got, h)
	}
	if EncodeHeader(buf[:HeaderSize-1], h) {
		t.Fatalf("expected short buffer to be refused")
	}
}
