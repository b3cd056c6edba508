package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/xab-mack/optistats/internal/config"
	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/rank"
	"github.com/xab-mack/optistats/internal/tools"
)

type Engine struct {
	cfg     config.Config
	include glob.Glob
	noise   model.VulnType
	ranks   *rank.Table
	logger  *slog.Logger
}

// New builds an engine from cfg. ranks may be nil, in which case every
// contract gets the sentinel rank.
func New(cfg config.Config, ranks *rank.Table) (*Engine, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = config.Default().Workers
	}
	if cfg.Include == "" {
		cfg.Include = config.DefaultInclude
	}
	if cfg.NoiseType == "" {
		cfg.NoiseType = string(model.NoiseType)
	}
	g, err := glob.Compile(strings.ToLower(cfg.Include))
	if err != nil {
		return nil, fmt.Errorf("include pattern %q: %w", cfg.Include, err)
	}
	return &Engine{
		cfg:     cfg,
		include: g,
		noise:   model.ParseVulnType(cfg.NoiseType),
		ranks:   ranks,
		logger:  slog.Default(),
	}, nil
}

// LoadNative loads a native-schema corpus and applies the noise filter.
// Records left without detections are dropped. When two files share an id the
// one with the later path wins.
func (e *Engine) LoadNative(ctx context.Context, root string) (model.NativeCorpus, model.LoadStats, error) {
	files, excluded, err := e.load(ctx, root, tools.SchemaNative, e.cfg.SkipMalformed)
	if err != nil {
		return nil, model.LoadStats{}, err
	}
	stats := model.LoadStats{Files: len(files), Excluded: excluded}
	corpus := make(model.NativeCorpus, len(files))
	for _, f := range files {
		if f.err != nil {
			e.logger.Warn("skipping malformed record", "path", f.path, "error", f.err.Err)
			stats.Skipped++
			continue
		}
		stats.Parsed++
		c, ok := FilterNoise(*f.rec.(*model.ContractAnalysis), e.noise)
		if !ok {
			stats.Dropped++
			continue
		}
		if _, dup := corpus[f.id]; dup {
			e.logger.Warn("duplicate contract id, keeping later file", "id", f.id, "path", f.path)
			stats.Duplicates++
		}
		corpus[f.id] = c
	}
	stats.Kept = len(corpus)
	if unknown := unknownTypes(corpus); len(unknown) > 0 {
		e.logger.Info("unrecognized vulnerability types", "root", root, "types", unknown)
	}
	e.logger.Info("loaded native corpus", "root", root, "files", stats.Files, "kept", stats.Kept, "dropped", stats.Dropped,
		"skipped", stats.Skipped, "excluded", stats.Excluded, "detections", corpus.TotalDetections())
	return corpus, stats, nil
}

// LoadBaseline loads a baseline-schema corpus. Baseline records are never
// dropped: a record with all-zero counts still carries an execution time.
func (e *Engine) LoadBaseline(ctx context.Context, root string) (model.BaselineCorpus, model.LoadStats, error) {
	files, excluded, err := e.load(ctx, root, tools.SchemaBaseline, e.cfg.SkipMalformed)
	if err != nil {
		return nil, model.LoadStats{}, err
	}
	stats := model.LoadStats{Files: len(files), Excluded: excluded}
	corpus := make(model.BaselineCorpus, len(files))
	for _, f := range files {
		if f.err != nil {
			e.logger.Warn("skipping malformed record", "path", f.path, "error", f.err.Err)
			stats.Skipped++
			continue
		}
		stats.Parsed++
		if _, dup := corpus[f.id]; dup {
			e.logger.Warn("duplicate contract id, keeping later file", "id", f.id, "path", f.path)
			stats.Duplicates++
		}
		corpus[f.id] = *f.rec.(*model.BaselineRecord)
	}
	stats.Kept = len(corpus)
	e.logger.Info("loaded baseline corpus", "root", root, "files", stats.Files, "kept", stats.Kept,
		"skipped", stats.Skipped, "excluded", stats.Excluded)
	return corpus, stats, nil
}

// unknownTypes lists the type codes in corpus outside the known set.
func unknownTypes(corpus model.NativeCorpus) []model.VulnType {
	seen := map[model.VulnType]bool{}
	var out []model.VulnType
	for _, c := range corpus {
		for _, d := range c.Detections {
			if !d.Type.Known() && !seen[d.Type] {
				seen[d.Type] = true
				out = append(out, d.Type)
			}
		}
	}
	model.SortTypes(out)
	return out
}

// Analyze loads and aggregates one native corpus.
func (e *Engine) Analyze(ctx context.Context, root string) (*model.Analysis, error) {
	corpus, stats, err := e.LoadNative(ctx, root)
	if err != nil {
		return nil, err
	}
	return e.analysis(root, corpus, stats), nil
}

func (e *Engine) analysis(root string, corpus model.NativeCorpus, stats model.LoadStats) *model.Analysis {
	agg := Aggregate(corpus, e.ranks)
	return &model.Analysis{
		RunID:       uuid.NewString(),
		Dataset:     filepath.Base(filepath.Clean(root)),
		Stats:       stats,
		Aggregate:   agg,
		TimeSummary: Summarize(agg.ExecutionTimes),
		Corpus:      corpus,
	}
}

// Compare loads a native and a baseline corpus and reconciles them.
func (e *Engine) Compare(ctx context.Context, nativeRoot, baselineRoot string) (*model.ComparisonReport, error) {
	corpus, stats, err := e.LoadNative(ctx, nativeRoot)
	if err != nil {
		return nil, fmt.Errorf("native corpus: %w", err)
	}
	bCorpus, bStats, err := e.LoadBaseline(ctx, baselineRoot)
	if err != nil {
		return nil, fmt.Errorf("baseline corpus: %w", err)
	}
	native := e.analysis(nativeRoot, corpus, stats)
	bAgg := AggregateBaseline(bCorpus)
	return &model.ComparisonReport{
		RunID:         native.RunID,
		Native:        native,
		BaselineStats: bStats,
		Baseline:      bAgg,
		Comparison:    Compare(native.Aggregate, corpus, bAgg, bCorpus, e.noise),
	}, nil
}

// FileProblem lists the schema violations found in one file.
type FileProblem struct {
	Path     string       `json:"path"`
	Schema   tools.Schema `json:"schema"`
	Problems []string     `json:"problems"`
}

// Validate checks every file under root without aggregating. An empty schema
// detects the schema of each file.
func (e *Engine) Validate(ctx context.Context, root string, schema tools.Schema) ([]FileProblem, int, error) {
	files, _, err := e.load(ctx, root, schema, true)
	if err != nil {
		return nil, 0, err
	}
	var out []FileProblem
	for _, f := range files {
		if f.err == nil {
			continue
		}
		out = append(out, FileProblem{Path: f.path, Schema: f.err.Schema, Problems: f.err.Problems()})
	}
	return out, len(files), nil
}
