package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xab-mack/optistats/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	dataset TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	files INTEGER NOT NULL,
	kept INTEGER NOT NULL,
	dropped INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	duplicates INTEGER NOT NULL,
	excluded INTEGER NOT NULL,
	time_mean REAL,
	time_median REAL,
	time_p90 REAL
);

CREATE TABLE IF NOT EXISTS contracts (
	run_id TEXT NOT NULL,
	id TEXT NOT NULL,
	execution_time_ms REAL NOT NULL,
	detections INTEGER NOT NULL,
	rank INTEGER NOT NULL,
	PRIMARY KEY (run_id, id),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS type_counts (
	run_id TEXT NOT NULL,
	type TEXT NOT NULL,
	label TEXT NOT NULL,
	occurrences INTEGER NOT NULL,
	contracts INTEGER NOT NULL,
	PRIMARY KEY (run_id, type),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS affected_contracts (
	run_id TEXT NOT NULL,
	type TEXT NOT NULL,
	position INTEGER NOT NULL,
	contract_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	PRIMARY KEY (run_id, type, position),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS comparison (
	run_id TEXT NOT NULL,
	type TEXT NOT NULL,
	label TEXT NOT NULL,
	native_vulnerabilities INTEGER NOT NULL,
	baseline_vulnerabilities INTEGER NOT NULL,
	native_contracts INTEGER NOT NULL,
	baseline_contracts INTEGER NOT NULL,
	PRIMARY KEY (run_id, type),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS time_pairs (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	contract_id TEXT NOT NULL,
	native_ms REAL NOT NULL,
	baseline_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, position),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);
`

// sqliteEmitter appends a run to a SQLite database. Several runs can share
// one file; rows are keyed by run id.
type sqliteEmitter struct{}

func (sqliteEmitter) Format() string { return "sqlite" }

func (sqliteEmitter) EmitFile(ctx context.Context, path string, doc Document) error {
	if doc.Analysis == nil {
		return fmt.Errorf("sqlite: nothing to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("sqlite: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlite: initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := writeRun(ctx, tx, doc); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("sqlite: %w", err)
	}
	return tx.Commit()
}

func writeRun(ctx context.Context, tx *sql.Tx, doc Document) error {
	a := doc.Analysis
	runID := doc.runID()
	kind := "analysis"
	if doc.Comparison != nil {
		kind = "comparison"
	}
	s, ts := a.Stats, a.TimeSummary
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, dataset, created_at, files, kept, dropped, skipped, duplicates, excluded, time_mean, time_median, time_p90)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, kind, a.Dataset, time.Now().UTC(), s.Files, s.Kept, s.Dropped, s.Skipped, s.Duplicates, s.Excluded, ts.Mean, ts.Median, ts.P90,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	ranks := map[string]int{}
	for _, list := range a.Aggregate.PerTypeAffectedContracts {
		for _, c := range list {
			ranks[c.ID] = c.Rank
		}
	}
	for _, id := range a.Corpus.IDs() {
		c := a.Corpus[id]
		r, ok := ranks[id]
		if !ok {
			r = model.SentinelRank
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contracts (run_id, id, execution_time_ms, detections, rank) VALUES (?, ?, ?, ?, ?)`,
			runID, id, c.ExecutionTimeMs, len(c.Detections), r,
		); err != nil {
			return fmt.Errorf("insert contract %s: %w", id, err)
		}
	}

	for _, t := range a.Aggregate.Types() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO type_counts (run_id, type, label, occurrences, contracts) VALUES (?, ?, ?, ?, ?)`,
			runID, string(t), doc.Labels.Label(t), a.Aggregate.PerTypeOccurrenceCount[t], a.Aggregate.AffectedContractCount(t),
		); err != nil {
			return fmt.Errorf("insert type count %s: %w", t, err)
		}
		for i, c := range a.Aggregate.PerTypeAffectedContracts[t] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO affected_contracts (run_id, type, position, contract_id, rank) VALUES (?, ?, ?, ?, ?)`,
				runID, string(t), i, c.ID, c.Rank,
			); err != nil {
				return fmt.Errorf("insert affected contract: %w", err)
			}
		}
	}

	if doc.Comparison == nil {
		return nil
	}
	cmp := doc.Comparison.Comparison
	for _, t := range cmp.Types {
		v, k := cmp.VulnerabilitiesByType[t], cmp.ContractsByType[t]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO comparison (run_id, type, label, native_vulnerabilities, baseline_vulnerabilities, native_contracts, baseline_contracts)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, string(t), doc.Labels.Label(t), v.Native, v.Baseline, len(k.Native), len(k.Baseline),
		); err != nil {
			return fmt.Errorf("insert comparison %s: %w", t, err)
		}
	}
	for i, id := range cmp.Time.IDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO time_pairs (run_id, position, contract_id, native_ms, baseline_ms) VALUES (?, ?, ?, ?, ?)`,
			runID, i, id, cmp.Time.NativeMs[i], cmp.Time.BaselineMs[i],
		); err != nil {
			return fmt.Errorf("insert time pair %s: %w", id, err)
		}
	}
	return nil
}
