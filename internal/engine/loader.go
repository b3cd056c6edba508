package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/optistats/internal/tools"
	"github.com/xab-mack/optistats/internal/util"
)

// loadedFile pairs a parsed record with the file and id it came from.
type loadedFile struct {
	path   string
	id     string
	schema tools.Schema
	rec    tools.Record
	err    *MalformedRecordError
}

// discoverFiles returns every regular file under root whose base name matches
// include, sorted by path, and the number of regular files that did not
// match. include must be compiled from a lower-cased pattern; names are
// matched case-insensitively.
func discoverFiles(root string, include glob.Glob) ([]string, int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorpusUnreadable, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is not a directory", ErrCorpusUnreadable, root)
	}
	var (
		out      []string
		excluded int
	)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorpusUnreadable, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if include != nil && !include.Match(strings.ToLower(d.Name())) {
			excluded++
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Strings(out)
	return out, excluded, nil
}

// readRecord returns the decompressed contents of a result file.
func readRecord(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer zr.Close() //nolint:errcheck
		return io.ReadAll(zr)
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(b, nil)
	default:
		return b, nil
	}
}

// load parses every file under root in parallel. An empty schema selects
// per-file detection and is only used for validation. With skip set, schema
// violations are returned on the file instead of failing the run. The second
// result counts files left out by the include pattern.
func (e *Engine) load(ctx context.Context, root string, schema tools.Schema, skip bool) ([]loadedFile, int, error) {
	paths, excluded, err := discoverFiles(root, e.include)
	if err != nil {
		return nil, 0, err
	}
	e.logger.Debug("discovered result files", "root", root, "files", len(paths))
	if excluded > 0 {
		e.logger.Info("ignoring files outside the include pattern", "root", root, "include", e.cfg.Include, "excluded", excluded)
	}

	results := make([]loadedFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lf := loadedFile{path: p, id: util.ContractID(p), schema: schema}
			raw, err := readRecord(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			if lf.schema == "" {
				s, ok := tools.DetectSchema(raw)
				if !ok {
					lf.err = &MalformedRecordError{Path: p, Schema: "unknown", Err: errors.New("cannot detect schema")}
					results[i] = lf
					return nil
				}
				lf.schema = s
			}
			rec, err := tools.Normalize(lf.schema, lf.id, raw)
			if err != nil {
				merr := &MalformedRecordError{Path: p, Schema: lf.schema, Err: err}
				if !skip {
					return merr
				}
				lf.err = merr
			} else {
				lf.rec = rec
			}
			results[i] = lf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return results, excluded, nil
}
