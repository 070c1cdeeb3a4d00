package typelib_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/samcharles93/typelib/pkg/typelib"
	"github.com/samcharles93/typelib/pkg/typelib/typelibtest"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func checkMyObj(t *testing.T, f *typelib.File) {
	t.Helper()
	if got := f.Namespace(); got != "Test" {
		t.Fatalf("namespace: got %q want %q", got, "Test")
	}
	entries := f.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries: got %d want 2", len(entries))
	}
	obj, ok := f.Lookup("MyObj")
	if !ok {
		t.Fatalf("MyObj not found")
	}
	if obj.Index != 1 || !obj.Local || obj.BlobType != typelib.BlobObject {
		t.Fatalf("got %+v want local object at index 1", obj)
	}
	parent, ok := f.Lookup("Object")
	if !ok || parent.Local || parent.Namespace != "GObject" {
		t.Fatalf("got %+v,%v want Object imported from GObject", parent, ok)
	}
	if _, ok := f.Lookup("Missing"); ok {
		t.Fatalf("expected lookup of unknown name to fail")
	}
	counts := f.KindCounts()
	if counts[typelib.BlobObject] != 1 || len(counts) != 1 {
		t.Fatalf("kind counts: got %v", counts)
	}
}

func withParent() []byte {
	data, _ := myObj(func(b *typelibtest.Builder, obj *typelib.Object) {
		obj.Parent = b.Import("Object", "GObject", typelib.BlobObject)
	}, nil)
	return data
}

func TestOpenMapsFile(t *testing.T) {
	t.Parallel()

	data := withParent()
	f, err := typelib.Open(writeFile(t, "Test-1.0.typelib", data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	if !bytes.Equal(f.Data, data) {
		t.Fatalf("mapped data differs from file contents")
	}
	checkMyObj(t, f)

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenXZ(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := w.Write(withParent()); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	f, err := typelib.Open(writeFile(t, "Test-1.0.typelib.xz", buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	checkMyObj(t, f)

	if _, err := typelib.OpenLimit(writeFile(t, "big.typelib.xz", buf.Bytes()), 16); !errors.Is(err, typelib.ErrFileTooLarge) {
		t.Fatalf("got %v want ErrFileTooLarge", err)
	}
}

func TestOpenRejectsInvalid(t *testing.T) {
	t.Parallel()

	data := withParent()
	data[0] = 'X'
	_, err := typelib.Open(writeFile(t, "bad.typelib", data))
	if !errors.Is(err, typelib.ErrInvalidHeader) {
		t.Fatalf("got %v want ErrInvalidHeader", err)
	}

	_, err = typelib.Open(writeFile(t, "short.typelib", data[:10]))
	if !errors.Is(err, typelib.ErrTooShort) {
		t.Fatalf("got %v want ErrTooShort", err)
	}

	if _, err := typelib.Open(filepath.Join(t.TempDir(), "missing.typelib")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v want not-exist", err)
	}
}

func TestOpenLimit(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "Test-1.0.typelib", withParent())
	if _, err := typelib.OpenLimit(path, 64); !errors.Is(err, typelib.ErrFileTooLarge) {
		t.Fatalf("got %v want ErrFileTooLarge", err)
	}
}

func TestOpenReaderAt(t *testing.T) {
	t.Parallel()

	data := withParent()
	f, err := typelib.OpenReaderAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	checkMyObj(t, f)
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := typelib.OpenReaderAt(bytes.NewReader(data), int64(len(data))+8); err == nil {
		t.Fatalf("expected short reader to fail")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	f, err := typelib.Load(withParent())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkMyObj(t, f)

	e, err := f.Entry(2)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if e.Name != "Object" || e.BlobType != typelib.BlobObject {
		t.Fatalf("got %+v", e)
	}
	if _, err := f.Entry(3); err == nil {
		t.Fatalf("expected out of range entry to fail")
	}
}
