// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and every metric it selects must be known.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/ticket-watcher/tools/dashgen/rules"
)

// ownPrefixes mark metric names this project exports or records. Unknown
// names with these prefixes are errors; other unknown names only warn.
var ownPrefixes = []string{"tw_", "tw:"}

// Result collects validation findings.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

// Merge appends the findings of other to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Expr validates a single PromQL expression.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parsing %q: %v", where, expr, err))
		return res
	}

	//nolint:errcheck // the inspector never returns an error
	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok || vs.Name == "" || known[vs.Name] {
			return nil
		}
		msg := fmt.Sprintf("%s: unknown metric %q", where, vs.Name)
		if isOwn(vs.Name) {
			res.Errors = append(res.Errors, msg)
		} else {
			res.Warnings = append(res.Warnings, msg)
		}
		return nil
	})

	return res
}

func isOwn(name string) bool {
	for _, p := range ownPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// panelTargets is the subset of the dashboard JSON model holding queries.
type panelTargets struct {
	Title   string `json:"title"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
	Panels []panelTargets `json:"panels"`
}

// Dashboard validates every query of a built dashboard.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return res
	}
	var model panelTargets
	if err := json.Unmarshal(data, &model); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("reading dashboard model: %v", err))
		return res
	}

	var walk func(p panelTargets)
	walk = func(p panelTargets) {
		for _, t := range p.Targets {
			if t.Expr == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("panel %q: empty query", p.Title))
				continue
			}
			res.Merge(Expr("panel "+p.Title, t.Expr, known))
		}
		for _, child := range p.Panels {
			walk(child)
		}
	}
	for _, p := range model.Panels {
		walk(p)
	}

	return res
}

// Rules validates every expression of a PrometheusRule.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			res.Merge(Expr(g.Name+"/"+name, r.Expr, known))
		}
	}
	return res
}
