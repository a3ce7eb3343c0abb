package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lemonberrylabs/arith/pkg/expr"
)

// Options configures Run.
type Options struct {
	// Concurrency bounds the number of expressions evaluated at once.
	// Zero means GOMAXPROCS.
	Concurrency int
}

// Result is the outcome of one sheet entry.
type Result struct {
	Name       string
	Expression string
	Value      float64
	Err        error
}

// Run evaluates every entry of sheet and returns the results in sheet
// order. A failing entry does not stop the others. Entries not yet started
// when ctx is cancelled report ctx.Err().
func Run(ctx context.Context, sheet *Sheet, opts Options) []Result {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(sheet.Expressions))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, entry := range sheet.Expressions {
		results[i] = Result{Name: entry.Name, Expression: entry.Expr}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = expr.Evaluate(entry.Expr)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failures returns the number of results carrying an error.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
