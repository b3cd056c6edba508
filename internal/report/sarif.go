package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/util"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool         `json:"tool"`
	AutomationDetails sarifAutomation   `json:"automationDetails"`
	Results           []sarifResult     `json:"results"`
	Properties        map[string]string `json:"properties,omitempty"`
}

type sarifAutomation struct {
	ID string `json:"id"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}

// detectionRegion reads a line range from the tool-specific fields of a
// detection when the producer recorded one.
func detectionRegion(d model.Detection) *sarifRegion {
	line := func(keys ...string) int {
		for _, k := range keys {
			var n int
			if raw, ok := d.Extra[k]; ok && json.Unmarshal(raw, &n) == nil && n > 0 {
				return n
			}
		}
		return 0
	}
	start := line("line", "startLine", "start_line")
	if start == 0 {
		return nil
	}
	return &sarifRegion{StartLine: start, EndLine: line("endLine", "end_line")}
}

// sarifEmitter reports every native detection as a note; the detections
// are gas optimization opportunities, not defects.
type sarifEmitter struct{}

func (sarifEmitter) Format() string { return "sarif" }

func (sarifEmitter) Emit(w io.Writer, doc Document) error {
	b, err := ToSARIF(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func ToSARIF(doc Document) ([]byte, error) {
	results := []sarifResult{}
	ruleSet := map[model.VulnType]struct{}{}
	if a := doc.Analysis; a != nil {
		for _, id := range a.Corpus.IDs() {
			occurrence := map[model.VulnType]int{}
			for _, d := range a.Corpus[id].Detections {
				ruleSet[d.Type] = struct{}{}
				n := occurrence[d.Type]
				occurrence[d.Type]++
				results = append(results, sarifResult{
					RuleID:  string(d.Type),
					Level:   "note",
					Message: sarifMessage{Text: fmt.Sprintf("%s (%s) in contract %s", doc.Labels.Label(d.Type), d.Type, id)},
					Locations: []sarifLoc{{Physical: sarifPhys{
						ArtifactLocation: sarifArt{URI: id + ".sol"},
						Region:           detectionRegion(d),
					}}},
					PartialFingerprints: map[string]string{"optistats/v1": util.Fingerprint(string(d.Type), id, n)},
				})
			}
		}
	}
	types := make([]model.VulnType, 0, len(ruleSet))
	for t := range ruleSet {
		types = append(types, t)
	}
	model.SortTypes(types)
	rules := make([]sarifRule, 0, len(types))
	for _, t := range types {
		rules = append(rules, sarifRule{ID: string(t), Name: doc.Labels.Label(t), ShortDescription: sarifMessage{Text: string(t)}})
	}
	run := sarifRun{
		Tool:              sarifTool{Driver: sarifDriver{Name: "optistats", Rules: rules}},
		AutomationDetails: sarifAutomation{ID: doc.runID()},
		Results:           results,
	}
	if doc.Analysis != nil {
		run.Properties = map[string]string{"dataset": doc.Analysis.Dataset}
	}
	s := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	return json.MarshalIndent(s, "", "  ")
}
