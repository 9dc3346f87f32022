// Package filter evaluates JavaScript predicates against stage execution
// summaries using goja. Listings accept a ?where= expression such as
// "state == 'FAILED' && stats.totalTasks > 100".
package filter

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"

	"github.com/abhibongale/presto/pkg/model"
)

// Filter is a compiled boolean predicate over a summary.
type Filter struct {
	expr string
	prog *goja.Program
}

// Compile parses the predicate once so repeated evaluation skips the parse.
func Compile(expr string) (*Filter, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	prog, err := goja.Compile("filter", expr, true)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, err)
	}
	return &Filter{expr: expr, prog: prog}, nil
}

// Matches evaluates the predicate with these variables in scope:
//
//	id    — the stage execution id, e.g. "3.0"
//	state — the summary state string
//	stats — the aggregated stats object (camelCase JSON field names)
//	tasks — the retained task reports
//
// The expression must produce a boolean.
func (f *Filter) Matches(id string, summary *model.StageExecutionSummary) (bool, error) {
	vm := goja.New()

	// Round-trip through JSON so the VM sees the wire shape, not Go structs.
	doc, err := toDocument(summary)
	if err != nil {
		return false, err
	}

	if err := vm.Set("id", id); err != nil {
		return false, fmt.Errorf("set id: %w", err)
	}
	if err := vm.Set("state", doc["state"]); err != nil {
		return false, fmt.Errorf("set state: %w", err)
	}
	if err := vm.Set("stats", doc["stats"]); err != nil {
		return false, fmt.Errorf("set stats: %w", err)
	}
	if err := vm.Set("tasks", doc["tasks"]); err != nil {
		return false, fmt.Errorf("set tasks: %w", err)
	}

	val, err := vm.RunProgram(f.prog)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.expr, err)
	}

	switch v := val.Export().(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("filter %q did not return boolean: %T", f.expr, val.Export())
	}
}

func toDocument(summary *model.StageExecutionSummary) (map[string]any, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return doc, nil
}
