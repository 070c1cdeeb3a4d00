package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/typelib/internal/config"
	"github.com/samcharles93/typelib/internal/logger"
	"github.com/samcharles93/typelib/internal/report"
	"github.com/samcharles93/typelib/pkg/typelib"
	"github.com/samcharles93/typelib/pkg/typelib/typelibtest"
)

// These tests share the package-level flag destinations and cannot run
// in parallel.

func sample() []byte {
	b := typelibtest.New("Demo")
	fn := b.Local("frob", typelib.BlobFunction)
	b.Import("Object", "GObject", typelib.BlobObject)
	sig := b.Signature(typelib.NewSimpleType(typelib.TagVoid, false))
	b.Bind(fn, b.Function(b.Name("frob"), b.Name("demo_frob"), 0, sig))
	return b.Finish()
}

func writeTypelib(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	argv := append([]string{"typelib", "--config", cfgPath, "--log-level", "error"}, args...)
	err := app.Run(context.Background(), argv)
	return out.String(), err
}

func noConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeTypelib(t, dir, "Demo-1.0.typelib", sample())
	broken := sample()
	broken[0] = 'X'
	bad := writeTypelib(t, dir, "Bad-1.0.typelib", broken)

	t.Run("valid files succeed", func(t *testing.T) {
		out, err := run(t, noConfig(t), "validate", good)
		if err != nil {
			t.Fatalf("validate returned error: %v", err)
		}
		if !strings.Contains(out, good+": valid") || !strings.Contains(out, "namespace Demo 1.0") {
			t.Fatalf("unexpected output: %s", out)
		}
	})

	t.Run("invalid file exits 2 and keeps argument order", func(t *testing.T) {
		out, err := run(t, noConfig(t), "validate", "--format", "json", bad, good, bad)
		code, ok := exitCode(err)
		if !ok || code != 2 {
			t.Fatalf("got err %v want exit code 2", err)
		}
		var reports []report.Report
		if err := json.Unmarshal([]byte(out), &reports); err != nil {
			t.Fatalf("decode output: %v\n%s", err, out)
		}
		if len(reports) != 3 {
			t.Fatalf("got %d reports want 3", len(reports))
		}
		for i, want := range []string{bad, good, bad} {
			if reports[i].Source != want {
				t.Fatalf("report %d: got source %q want %q", i, reports[i].Source, want)
			}
		}
		if reports[0].Failure == nil || reports[0].Failure.Kind != typelib.KindInvalidHeader.String() {
			t.Fatalf("got failure %+v want invalid-header", reports[0].Failure)
		}
		if !reports[1].Valid() {
			t.Fatalf("expected %s to be valid", good)
		}
	})

	t.Run("missing file is reported", func(t *testing.T) {
		out, err := run(t, noConfig(t), "validate", filepath.Join(dir, "nope.typelib"))
		if code, ok := exitCode(err); !ok || code != 2 {
			t.Fatalf("got err %v want exit code 2", err)
		}
		if !strings.Contains(out, "invalid: io") {
			t.Fatalf("unexpected output: %s", out)
		}
	})

	t.Run("usage errors exit 1", func(t *testing.T) {
		if _, err := run(t, noConfig(t), "validate"); err == nil {
			t.Fatal("expected error without files")
		} else if code, _ := exitCode(err); code != 1 {
			t.Fatalf("got exit code %d want 1", code)
		}
		if _, err := run(t, noConfig(t), "validate", "--format", "xml", good); err == nil {
			t.Fatal("expected unknown format to fail")
		}
	})

	t.Run("max size from config", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(cfgPath, []byte("max_file_size: 16\n"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		out, err := run(t, cfgPath, "validate", good)
		if code, ok := exitCode(err); !ok || code != 2 {
			t.Fatalf("got err %v want exit code 2", err)
		}
		if !strings.Contains(out, "too-large") {
			t.Fatalf("unexpected output: %s", out)
		}

		if _, err := run(t, cfgPath, "validate", "--max-size", "1048576", good); err != nil {
			t.Fatalf("flag should override config: %v", err)
		}
	})
}

func TestValidateFilesOrder(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 16)
	for i := range paths {
		data := sample()
		if i%3 == 0 {
			data = data[:40]
		}
		paths[i] = writeTypelib(t, dir, "f"+strings.Repeat("x", i)+".typelib", data)
	}
	reports := validateFiles(paths, 1<<20, 3)
	for i, r := range reports {
		if r.Source != paths[i] {
			t.Fatalf("report %d: got %q want %q", i, r.Source, paths[i])
		}
		if r.Valid() == (i%3 == 0) {
			t.Fatalf("report %d: unexpected verdict %q", i, r.Verdict)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	path := writeTypelib(t, t.TempDir(), "Demo-1.0.typelib", sample())

	out, err := run(t, noConfig(t), "inspect", path)
	if err != nil {
		t.Fatalf("inspect returned error: %v", err)
	}
	for _, want := range []string{"Namespace: Demo", "Version: 1.0", "Entries: 2 (1 local)", "frob", "function", "GObject"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	broken := sample()
	broken[0] = 'X'
	bad := writeTypelib(t, t.TempDir(), "Bad.typelib", broken)
	if _, err := run(t, noConfig(t), "inspect", bad); err == nil {
		t.Fatal("expected inspect of an invalid file to fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, noConfig(t), "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.Contains(out, "version:") || !strings.Contains(out, "format:     1.0") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestBadConfigFails(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_format: xml\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := run(t, cfgPath, "version"); err == nil {
		t.Fatal("expected invalid config to fail")
	}
}

func TestServeEcho(t *testing.T) {
	e := newEcho(config.Default().Server, logger.Discard())

	req := httptest.NewRequest(http.MethodPost, "/v1/validate?source=demo", bytes.NewReader(sample()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("validate status: got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status: got %d", rec.Code)
	}
}
