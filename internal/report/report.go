// Package report turns a validation run over one buffer into a Report and
// renders reports as text, JSON or YAML.
package report

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/samcharles93/typelib/pkg/typelib"
)

const (
	VerdictValid   = "valid"
	VerdictInvalid = "invalid"
)

// Failure describes why a buffer was rejected.
type Failure struct {
	Kind    string `json:"kind" yaml:"kind"`
	Offset  uint32 `json:"offset" yaml:"offset"`
	Message string `json:"message" yaml:"message"`
}

// Report is the outcome of validating one buffer.
type Report struct {
	ID           string         `json:"id" yaml:"id"`
	Source       string         `json:"source" yaml:"source"`
	Size         int            `json:"size" yaml:"size"`
	Digest       string         `json:"digest" yaml:"digest"`
	Verdict      string         `json:"verdict" yaml:"verdict"`
	Failure      *Failure       `json:"error,omitempty" yaml:"error,omitempty"`
	Namespace    string         `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Version      string         `json:"version,omitempty" yaml:"version,omitempty"`
	Entries      int            `json:"entries" yaml:"entries"`
	LocalEntries int            `json:"local_entries" yaml:"local_entries"`
	Kinds        map[string]int `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	CheckedAt    time.Time      `json:"checked_at" yaml:"checked_at"`
	ElapsedUS    int64          `json:"elapsed_us" yaml:"elapsed_us"`
}

// Valid reports whether the buffer passed validation.
func (r *Report) Valid() bool { return r.Verdict == VerdictValid }

// Digest returns the content digest used to identify a buffer.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(sum[:])
}

// Build validates data and describes the outcome. source is a free-form
// label, usually a path.
func Build(source string, data []byte) *Report {
	start := time.Now()
	r := &Report{
		ID:        uuid.NewString(),
		Source:    source,
		Size:      len(data),
		Digest:    Digest(data),
		CheckedAt: start.UTC(),
	}

	f, err := typelib.Load(data)
	if err != nil {
		r.fail(err)
		if h, herr := typelib.ReadHeader(data); herr == nil {
			r.Version = fmt.Sprintf("%d.%d", h.Major, h.Minor)
		}
	} else {
		r.describe(f)
	}

	r.ElapsedUS = time.Since(start).Microseconds()
	return r
}

// FromFile opens path with the typelib loader, mapping it or decompressing
// .xz input, and describes the outcome. Inputs over limit are rejected
// before validation.
func FromFile(path string, limit int64) *Report {
	start := time.Now()
	f, err := typelib.OpenLimit(path, limit)
	if err != nil {
		r := Failed(path, err)
		if st, serr := os.Stat(path); serr == nil && !strings.HasSuffix(path, ".xz") {
			r.Size = int(st.Size())
		}
		r.ElapsedUS = time.Since(start).Microseconds()
		return r
	}
	defer func() { _ = f.Close() }()

	r := &Report{
		ID:        uuid.NewString(),
		Source:    path,
		Size:      len(f.Data),
		Digest:    Digest(f.Data),
		CheckedAt: start.UTC(),
	}
	r.describe(f)
	r.ElapsedUS = time.Since(start).Microseconds()
	return r
}

func (r *Report) describe(f *typelib.File) {
	r.Verdict = VerdictValid
	r.Namespace = f.Namespace()
	r.Version = fmt.Sprintf("%d.%d", f.Header.Major, f.Header.Minor)
	r.Entries = int(f.Header.NEntries)
	r.LocalEntries = int(f.Header.NLocalEntries)
	counts := f.KindCounts()
	if len(counts) > 0 {
		r.Kinds = make(map[string]int, len(counts))
		for kind, n := range counts {
			r.Kinds[kind.String()] = n
		}
	}
}

// Failed builds a report for an input that could not be read at all.
func Failed(source string, err error) *Report {
	r := &Report{
		ID:        uuid.NewString(),
		Source:    source,
		CheckedAt: time.Now().UTC(),
	}
	r.fail(err)
	return r
}

func (r *Report) fail(err error) {
	r.Verdict = VerdictInvalid
	r.Failure = &Failure{Kind: "io", Message: err.Error()}

	var verr *typelib.Error
	if errors.As(err, &verr) {
		r.Failure.Kind = verr.Kind.String()
		r.Failure.Offset = verr.Offset
		r.Failure.Message = verr.Msg
	} else if errors.Is(err, typelib.ErrFileTooLarge) {
		r.Failure.Kind = "too-large"
	}
}
