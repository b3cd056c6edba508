// Package rank maps contract addresses to an external popularity rank.
package rank

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/util"
	"github.com/xab-mack/optistats/internal/validation"
)

// Table is an immutable lookup from lower-cased address to rank. The zero
// value is usable and resolves every id to the sentinel.
type Table struct {
	ranks map[string]int
}

// Entry is one row of a rank export.
type Entry struct {
	To   string
	Rank int
}

func New(entries []Entry) *Table {
	m := make(map[string]int, len(entries))
	for _, e := range entries {
		// later rows win
		m[util.NormalizeAddress(e.To)] = e.Rank
	}
	return &Table{ranks: m}
}

// Lookup returns the rank for id, or model.SentinelRank when unknown.
func (t *Table) Lookup(id string) int {
	if t == nil {
		return model.SentinelRank
	}
	if r, ok := t.ranks[util.NormalizeAddress(id)]; ok {
		return r
	}
	return model.SentinelRank
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ranks)
}

// Load reads a rank table from a JSON export (flat {to, rank} records or the
// {data: {to, rank}} wrapper) or from a CSV file with "to" and "rank" columns.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rank: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var entries []Entry
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		entries, err = ReadCSV(f)
	} else {
		entries, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("rank: %s: %w", path, err)
	}
	return New(entries), nil
}

// rankRecord accepts both export shapes.
type rankRecord struct {
	To   string `json:"to"`
	Rank *int   `json:"rank"`
	Data *struct {
		To   string `json:"to"`
		Rank *int   `json:"rank"`
	} `json:"data"`
}

func ReadJSON(r io.Reader) ([]Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if problems := validation.RankTable(raw); len(problems) > 0 {
		return nil, fmt.Errorf("invalid rank table: %s", strings.Join(problems, "; "))
	}
	var recs []rankRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(recs))
	for i, rec := range recs {
		to, rk := rec.To, rec.Rank
		if rec.Data != nil && rec.Data.Rank != nil {
			to, rk = rec.Data.To, rec.Data.Rank
		}
		if rk == nil {
			return nil, fmt.Errorf("record %d: missing rank", i)
		}
		out = append(out, Entry{To: to, Rank: *rk})
	}
	return out, nil
}

func ReadCSV(r io.Reader) ([]Entry, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty (no header row)")
	}
	toCol, rankCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "to":
			toCol = i
		case "rank":
			rankCol = i
		}
	}
	if toCol < 0 || rankCol < 0 {
		return nil, fmt.Errorf("header must contain to and rank columns")
	}
	out := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(rec[rankCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: rank %q: %w", i+2, rec[rankCol], err)
		}
		out = append(out, Entry{To: rec[toCol], Rank: n})
	}
	return out, nil
}

// ExportCSV flattens a Dune-style JSON export ([{data: {...}}, ...]) into CSV:
// a 1-based Id column followed by the union of all data keys. The first
// record's keys come first, sorted; keys first seen in later records follow
// in record order. Missing cells are left empty.
func ExportCSV(r io.Reader, w io.Writer) (int, error) {
	var recs []struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return 0, fmt.Errorf("rank: decode export: %w", err)
	}
	if len(recs) == 0 {
		return 0, fmt.Errorf("rank: export is empty")
	}
	var keys []string
	seen := map[string]bool{}
	for _, rec := range recs {
		var fresh []string
		for k := range rec.Data {
			if !seen[k] {
				seen[k] = true
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		keys = append(keys, fresh...)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Id"}, keys...)); err != nil {
		return 0, err
	}
	for i, rec := range recs {
		row := make([]string, 0, len(keys)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, k := range keys {
			row = append(row, formatCell(rec.Data[k]))
		}
		if err := cw.Write(row); err != nil {
			return i, err
		}
	}
	cw.Flush()
	return len(recs), cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
