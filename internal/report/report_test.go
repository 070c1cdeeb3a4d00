package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/typelib/pkg/typelib"
	"github.com/samcharles93/typelib/pkg/typelib/typelibtest"
)

func sample() []byte {
	b := typelibtest.New("Demo")
	fn := b.Local("frob", typelib.BlobFunction)
	cb := b.Local("Notify", typelib.BlobCallback)
	b.Import("Object", "GObject", typelib.BlobObject)

	sig := b.Signature(typelib.NewSimpleType(typelib.TagVoid, false))
	b.Bind(fn, b.Function(b.Name("frob"), b.Name("demo_frob"), 0, sig))
	b.Bind(cb, b.Record(typelib.Callback{BlobType: typelib.BlobCallback, Name: b.Name("Notify"), Signature: sig}))
	return b.Finish()
}

func TestBuildValid(t *testing.T) {
	t.Parallel()

	data := sample()
	r := Build("Demo-1.0.typelib", data)

	if !r.Valid() || r.Failure != nil {
		t.Fatalf("got verdict %q failure %+v want valid", r.Verdict, r.Failure)
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", r.ID, err)
	}
	if r.Namespace != "Demo" || r.Version != "1.0" {
		t.Fatalf("got namespace %q version %q", r.Namespace, r.Version)
	}
	if r.Entries != 3 || r.LocalEntries != 2 {
		t.Fatalf("got %d entries (%d local) want 3 (2 local)", r.Entries, r.LocalEntries)
	}
	if r.Kinds["function"] != 1 || r.Kinds["callback"] != 1 || len(r.Kinds) != 2 {
		t.Fatalf("kinds: got %v", r.Kinds)
	}
	if r.Size != len(data) || r.Digest != Digest(data) {
		t.Fatalf("size/digest mismatch: %d %s", r.Size, r.Digest)
	}
	if !strings.HasPrefix(r.Digest, "blake3:") || len(r.Digest) != len("blake3:")+64 {
		t.Fatalf("unexpected digest %q", r.Digest)
	}
}

func TestBuildInvalid(t *testing.T) {
	t.Parallel()

	data := sample()
	data[len(data)-1] ^= 0xff // last directory entry's namespace offset

	r := Build("broken.typelib", data)
	if r.Valid() {
		t.Fatal("expected invalid verdict")
	}
	if r.Failure == nil || r.Failure.Kind != typelib.KindInvalidDirectory.String() {
		t.Fatalf("got failure %+v want invalid-directory", r.Failure)
	}
	if r.Version != "1.0" || r.Namespace != "" {
		t.Fatalf("got version %q namespace %q", r.Version, r.Namespace)
	}

	short := Build("short", []byte("GOBJ"))
	if short.Failure.Kind != "too-short" || short.Version != "" {
		t.Fatalf("got %+v", short)
	}
}

func TestDigestIsStable(t *testing.T) {
	t.Parallel()

	a, b := Digest([]byte("abc")), Digest([]byte("abc"))
	if a != b {
		t.Fatalf("digest not deterministic: %s vs %s", a, b)
	}
	if a == Digest([]byte("abd")) {
		t.Fatal("distinct inputs share a digest")
	}
}

func TestFailed(t *testing.T) {
	t.Parallel()

	r := Failed("gone.typelib", errors.New("open gone.typelib: no such file"))
	if r.Valid() || r.Failure.Kind != "io" {
		t.Fatalf("got %+v", r.Failure)
	}
	if !strings.Contains(r.Text(), "gone.typelib: invalid: io: open gone.typelib") {
		t.Fatalf("unexpected text %q", r.Text())
	}

	r = Failed("huge.typelib", typelib.ErrFileTooLarge)
	if r.Failure.Kind != "too-large" {
		t.Fatalf("got kind %q want too-large", r.Failure.Kind)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q): got %q, %v want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected xml to be rejected")
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	valid := Build("Demo-1.0.typelib", sample())
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, valid); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.ID != valid.ID || got.Verdict != VerdictValid || got.Kinds["function"] != 1 {
		t.Fatalf("got %+v", got)
	}

	buf.Reset()
	invalid := Build("short", nil)
	if err := Write(&buf, FormatJSON, valid, invalid); err != nil {
		t.Fatalf("write: %v", err)
	}
	var list []Report
	if err := json.Unmarshal(buf.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[1].Failure == nil || list[1].Failure.Kind != "too-short" {
		t.Fatalf("got %+v", list)
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, Build("a", sample()), Build("b", nil)); err != nil {
		t.Fatalf("write: %v", err)
	}

	dec := yaml.NewDecoder(&buf)
	var verdicts []string
	for {
		var r Report
		if err := dec.Decode(&r); err != nil {
			break
		}
		verdicts = append(verdicts, r.Verdict)
	}
	if strings.Join(verdicts, ",") != "valid,invalid" {
		t.Fatalf("got verdicts %v", verdicts)
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatText, Build("Demo-1.0.typelib", sample())); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Demo-1.0.typelib: valid",
		"namespace Demo 1.0",
		"entries   3 (2 local)",
		"kinds     callback=1 function=1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := Write(&buf, FormatText, Build("x", []byte("tiny"))); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "x: invalid: too-short at offset 0: ") {
		t.Fatalf("unexpected text %q", buf.String())
	}

	if err := Write(&buf, "xml"); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := sample()
	good := filepath.Join(dir, "Demo-1.0.typelib")
	if err := os.WriteFile(good, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := FromFile(good, 1<<20)
	if !r.Valid() || r.Namespace != "Demo" || r.Digest != Digest(data) || r.Size != len(data) {
		t.Fatalf("unexpected report: %+v", r)
	}

	bad := filepath.Join(dir, "bad.typelib")
	broken := append([]byte(nil), data...)
	broken[0] = 'X'
	if err := os.WriteFile(bad, broken, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r = FromFile(bad, 1<<20)
	if r.Valid() || r.Failure.Kind != typelib.KindInvalidHeader.String() || r.Size != len(data) {
		t.Fatalf("unexpected report: %+v failure %+v", r, r.Failure)
	}

	if r := FromFile(good, 16); r.Failure == nil || r.Failure.Kind != "too-large" {
		t.Fatalf("got %+v want too-large", r.Failure)
	}
	if r := FromFile(filepath.Join(dir, "missing"), 1<<20); r.Failure == nil || r.Failure.Kind != "io" {
		t.Fatalf("got %+v want io", r.Failure)
	}
}
