// Package predicate compiles small expr-lang expressions used as the
// declarative form of the minifier's SortAttributes option
// (Options.SortAttributesExpr); the other callable options have no
// expression form. It mirrors the role
// github.com/expr-lang/expr plays for chtml's embedded ${...} expressions,
// scaled down to the tiny {tag, a, b} environments a minifier predicate
// needs.
package predicate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aurorahtml/minify/internal/htmltok"
)

var (
	mu    sync.Mutex
	cache = map[string]*vm.Program{}
)

// Compile compiles src once and memoises the program by source text, so
// repeated calls with the same expression share one compiled program.
// Concurrent callers share the cache.
func Compile(src string) (*vm.Program, error) {
	mu.Lock()
	if p, ok := cache[src]; ok {
		mu.Unlock()
		return p, nil
	}
	mu.Unlock()

	p, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}

	mu.Lock()
	cache[src] = p
	mu.Unlock()
	return p, nil
}

// Bool evaluates a boolean predicate against the given environment,
// treating any non-bool result as an evaluation error.
func Bool(p *vm.Program, env map[string]any) (bool, error) {
	out, err := expr.Run(p, env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("predicate did not evaluate to a bool (got %T)", out)
	}
	return b, nil
}

// SortAttrs reorders attrs in place using a compiled "less" expression
// evaluated pairwise with env {tag, a, b}; the expression should return
// true when a sorts before b. Evaluation errors are treated as "equal"
// (stable order kept) so a bad expression degrades to a no-op sort rather
// than corrupting attribute order.
func SortAttrs(p *vm.Program, tag string, attrs []htmltok.Attribute) {
	sort.SliceStable(attrs, func(i, j int) bool {
		out, err := expr.Run(p, map[string]any{
			"tag": tag, "a": attrs[i], "b": attrs[j],
		})
		if err != nil {
			return false
		}
		less, _ := out.(bool)
		return less
	})
}
