// Package validation checks raw result documents against the JSON schemas of
// the formats optistats reads.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var defaultPrinter = message.NewPrinter(language.English)

var (
	nativeSchema   *jsonschema.Schema
	baselineSchema *jsonschema.Schema
	rankSchema     *jsonschema.Schema
)

func init() {
	nativeSchema = mustCompileSchema("native.schema.json")
	baselineSchema = mustCompileSchema("baseline.schema.json")
	rankSchema = mustCompileSchema("rank.schema.json")
}

func mustCompileSchema(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded %s: %v", name, err))
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Native validates a native-tool record ({time, results:[...]}).
func Native(raw []byte) []string { return validateBytes(nativeSchema, raw) }

// Baseline validates a baseline-tool record (flat counts plus time).
func Baseline(raw []byte) []string { return validateBytes(baselineSchema, raw) }

// RankTable validates a JSON rank table export.
func RankTable(raw []byte) []string { return validateBytes(rankSchema, raw) }

func validateBytes(schema *jsonschema.Schema, raw []byte) []string {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	sort.Strings(errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
