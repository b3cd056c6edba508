package report

import "github.com/xab-mack/optistats/internal/model"

// Labels maps type codes to the short labels used in chart axes and table
// columns. A Labels value is never modified after construction.
type Labels struct {
	m map[model.VulnType]string
}

var defaultLabels = map[model.VulnType]string{
	model.TypeLoopCalculation:       "RCL",
	model.TypeStateDataArrangement:  "STADA",
	model.TypeDeMorganCondition:     "ORE",
	model.TypeExternalFunction:      "DLFV",
	model.TypeImmutableRestrict:     "ISV",
	model.TypeConstantRestrict:      "CSV",
	model.TypeLoopDuplication:       "LC",
	model.TypeStructDataArrangement: "MAS",
}

func DefaultLabels() Labels {
	return NewLabels(defaultLabels)
}

// NewLabels copies m. Keys are canonicalized like any other type code.
func NewLabels(m map[model.VulnType]string) Labels {
	out := make(map[model.VulnType]string, len(m))
	for k, v := range m {
		out[model.ParseVulnType(string(k))] = v
	}
	return Labels{m: out}
}

// WithOverrides returns a copy with the entries of overrides replacing the
// existing labels. Overrides are keyed by raw type code, as in the config file.
func (l Labels) WithOverrides(overrides map[string]string) Labels {
	out := make(map[model.VulnType]string, len(l.m)+len(overrides))
	for k, v := range l.m {
		out[k] = v
	}
	for k, v := range overrides {
		out[model.ParseVulnType(k)] = v
	}
	return Labels{m: out}
}

// Label returns the short label for t, or the code itself when none is set.
func (l Labels) Label(t model.VulnType) string {
	if s, ok := l.m[t]; ok && s != "" {
		return s
	}
	return string(t)
}

// Map returns a copy of the underlying table.
func (l Labels) Map() map[model.VulnType]string {
	out := make(map[model.VulnType]string, len(l.m))
	for k, v := range l.m {
		out[k] = v
	}
	return out
}

func (l Labels) Types() []model.VulnType {
	out := make([]model.VulnType, 0, len(l.m))
	for k := range l.m {
		out = append(out, k)
	}
	model.SortTypes(out)
	return out
}
