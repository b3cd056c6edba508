package report

import (
	"encoding/json"
	"io"

	"github.com/xab-mack/optistats/internal/model"
)

type jsonDoc struct {
	Labels     map[model.VulnType]string `json:"labels"`
	Analysis   *model.Analysis           `json:"analysis,omitempty"`
	Comparison *model.ComparisonReport   `json:"comparison,omitempty"`
}

type jsonEmitter struct{}

func (jsonEmitter) Format() string { return "json" }

func (jsonEmitter) Emit(w io.Writer, doc Document) error {
	out := jsonDoc{Labels: doc.Labels.Map()}
	if doc.Comparison != nil {
		out.Comparison = doc.Comparison
	} else {
		out.Analysis = doc.Analysis
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
