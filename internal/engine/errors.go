package engine

import (
	"errors"
	"fmt"

	"github.com/xab-mack/optistats/internal/tools"
)

// ErrCorpusUnreadable is returned when the corpus root cannot be walked.
var ErrCorpusUnreadable = errors.New("corpus unreadable")

// MalformedRecordError reports a result file that does not match the schema
// the corpus was loaded with.
type MalformedRecordError struct {
	Path   string
	Schema tools.Schema
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %s: %v", e.Schema, e.Path, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Problems returns the schema violations behind the error, if any.
func (e *MalformedRecordError) Problems() []string {
	var se *tools.SchemaError
	if errors.As(e.Err, &se) {
		return se.Problems
	}
	return []string{e.Err.Error()}
}
