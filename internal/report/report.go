// Package report renders analyses and comparisons for operators.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/xab-mack/optistats/internal/model"
)

// Document is what an emitter renders. Comparison is nil for a single-corpus
// analysis; when it is set, Analysis is the native side of the comparison.
type Document struct {
	Analysis   *model.Analysis
	Comparison *model.ComparisonReport
	Labels     Labels
}

func ForAnalysis(a *model.Analysis, labels Labels) Document {
	return Document{Analysis: a, Labels: labels}
}

func ForComparison(c *model.ComparisonReport, labels Labels) Document {
	return Document{Analysis: c.Native, Comparison: c, Labels: labels}
}

func (d Document) runID() string {
	if d.Comparison != nil {
		return d.Comparison.RunID
	}
	if d.Analysis != nil {
		return d.Analysis.RunID
	}
	return ""
}

// StreamEmitter writes a report to a stream.
type StreamEmitter interface {
	Format() string
	Emit(w io.Writer, doc Document) error
}

// FileEmitter writes a report to a path it owns, such as a database file.
type FileEmitter interface {
	Format() string
	EmitFile(ctx context.Context, path string, doc Document) error
}

type Registry struct{ emitters map[string]any }

func NewRegistry() *Registry { return &Registry{emitters: map[string]any{}} }

// Register adds a StreamEmitter or FileEmitter. Later registrations replace
// earlier ones with the same format.
func (r *Registry) Register(e any) {
	switch em := e.(type) {
	case StreamEmitter:
		r.emitters[em.Format()] = em
	case FileEmitter:
		r.emitters[em.Format()] = em
	default:
		panic(fmt.Sprintf("report: %T is not an emitter", e))
	}
}

func (r *Registry) RegisterBuiltin() {
	r.Register(tableEmitter{})
	r.Register(jsonEmitter{})
	r.Register(markdownEmitter{})
	r.Register(htmlEmitter{})
	r.Register(sarifEmitter{})
	r.Register(sqliteEmitter{})
}

// Default returns a registry holding every built-in format.
func Default() *Registry {
	r := NewRegistry()
	r.RegisterBuiltin()
	return r
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.emitters))
	for k := range r.emitters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NeedsPath reports whether format writes to a file rather than a stream.
func (r *Registry) NeedsPath(format string) bool {
	_, ok := r.emitters[format].(FileEmitter)
	return ok
}

// Write renders doc in format. Stream formats write to w; file formats require
// path.
func (r *Registry) Write(ctx context.Context, format string, w io.Writer, path string, doc Document) error {
	e, ok := r.emitters[format]
	if !ok {
		return fmt.Errorf("unknown format %q (available: %v)", format, r.Formats())
	}
	switch em := e.(type) {
	case StreamEmitter:
		return em.Emit(w, doc)
	case FileEmitter:
		if path == "" {
			return fmt.Errorf("format %q writes a file: --out is required", format)
		}
		return em.EmitFile(ctx, path, doc)
	}
	return nil
}
